package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/apperror"
	"github.com/muchtodo/taskapi/internal/metrics"
)

// Store is the document store adapter. A Store without a database handle
// answers every call with apperror.ErrStoreUnavailable.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Available reports whether the store holds a database handle.
func (s *Store) Available() bool {
	return s != nil && s.db != nil
}

// Name returns the database name, or "" when unavailable.
func (s *Store) Name() string {
	if !s.Available() {
		return ""
	}
	return s.db.Name()
}

// Insert stores record and returns the hex form of its new _id.
func (s *Store) Insert(ctx context.Context, collection string, record any) (id string, err error) {
	if !s.Available() {
		return "", apperror.ErrStoreUnavailable
	}
	defer s.observe("insert", collection, time.Now(), &err)

	res, err := s.db.Collection(collection).InsertOne(ctx, record)
	if err != nil {
		return "", classify("insert document", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Sprint(res.InsertedID), nil
	}
	return oid.Hex(), nil
}

// Find returns every document in collection matching filter. A nil filter
// matches everything; a nil projection returns whole documents.
func (s *Store) Find(ctx context.Context, collection string, filter, projection any) (docs []bson.M, err error) {
	if !s.Available() {
		return nil, apperror.ErrStoreUnavailable
	}
	defer s.observe("find", collection, time.Now(), &err)

	if filter == nil {
		filter = bson.D{}
	}
	opts := options.Find()
	if projection != nil {
		opts.SetProjection(projection)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("find documents", err)
	}
	docs = []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, classify("decode documents", err)
	}
	return docs, nil
}

// UpdateOne applies $set fields to the document with the given id.
func (s *Store) UpdateOne(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) (matched, modified int64, err error) {
	if !s.Available() {
		return 0, 0, apperror.ErrStoreUnavailable
	}
	defer s.observe("update_one", collection, time.Now(), &err)

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return 0, 0, classify("update document", err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

// DeleteOne removes the document with the given id.
func (s *Store) DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (deleted int64, err error) {
	if !s.Available() {
		return 0, apperror.ErrStoreUnavailable
	}
	defer s.observe("delete_one", collection, time.Now(), &err)

	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, classify("delete document", err)
	}
	return res.DeletedCount, nil
}

// Ping checks the connection to the primary.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Available() {
		return apperror.ErrStoreUnavailable
	}
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return classify("ping", err)
	}
	return nil
}

// CollectionNames lists at most limit collection names.
func (s *Store) CollectionNames(ctx context.Context, limit int) ([]string, error) {
	if !s.Available() {
		return nil, apperror.ErrStoreUnavailable
	}
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, classify("list collections", err)
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}

func (s *Store) observe(operation, collection string, start time.Time, errp *error) {
	metrics.ObserveStore(operation, collection, start, *errp)
	if *errp != nil {
		s.logger.Error("store operation failed",
			zap.String("operation", operation),
			zap.String("collection", collection),
			zap.Error(*errp),
		)
	}
}

// classify reports connectivity failures as ErrStoreUnavailable and wraps
// everything else.
func classify(op string, err error) error {
	if errors.Is(err, mongo.ErrClientDisconnected) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return apperror.Wrap(apperror.CodeStoreUnavailable, apperror.ErrStoreUnavailable.Message, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
