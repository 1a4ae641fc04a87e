package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/config"
)

const defaultConnectTimeout = 10 * time.Second

// Client owns the MongoDB connection pool.
type Client struct {
	mongo  *mongo.Client
	logger *zap.Logger
}

// Connect dials MongoDB and pings it. A failed ping is logged but does not
// fail the call: the driver keeps reconnecting and calls made while the
// server is down surface as ErrStoreUnavailable.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.URL == "" {
		return nil, errors.New("database url is not configured")
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Warn("mongodb ping failed, continuing with lazy connection", zap.Error(err))
	} else {
		logger.Info("mongodb connection established", zap.String("database", cfg.Name))
	}

	return &Client{mongo: client, logger: logger}, nil
}

// Database returns a handle to the named database.
func (c *Client) Database(name string) *mongo.Database {
	return c.mongo.Database(name)
}

// Close disconnects the pool.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.mongo == nil {
		return nil
	}
	return c.mongo.Disconnect(ctx)
}
