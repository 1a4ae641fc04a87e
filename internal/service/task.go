package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/apperror"
	"github.com/muchtodo/taskapi/internal/ids"
	"github.com/muchtodo/taskapi/internal/logger"
	"github.com/muchtodo/taskapi/internal/models"
)

// DocumentStore is the subset of the store adapter the task service needs.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, record any) (string, error)
	Find(ctx context.Context, collection string, filter, projection any) ([]bson.M, error)
	UpdateOne(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) (matched, modified int64, err error)
	DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (deleted int64, err error)
}

type TaskService struct {
	store  DocumentStore
	logger *zap.Logger
	now    func() time.Time
}

func NewTaskService(store DocumentStore, logger *zap.Logger) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns every stored task document with _id exposed as a string id.
// Documents are returned as stored, so fields the API never wrote are kept
// and absent fields stay absent. The result is never nil.
func (s *TaskService) List(ctx context.Context) ([]bson.M, error) {
	docs, err := s.store.Find(ctx, models.TaskCollection, bson.D{}, nil)
	if err != nil {
		return nil, err
	}

	tasks := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, models.TaskDocument(doc))
	}
	return tasks, nil
}

// Create inserts a new task and returns its id.
func (s *TaskService) Create(ctx context.Context, req models.CreateTaskRequest) (string, error) {
	if req.Title == "" {
		return "", apperror.New(apperror.CodeInvalidInput, "title is required")
	}

	task := models.NewTask(req, s.now())
	id, err := s.store.Insert(ctx, models.TaskCollection, task)
	if err != nil {
		return "", err
	}

	logger.WithRequestID(ctx, s.logger).Info("task created", zap.String("task_id", id))
	return id, nil
}

// Update applies the present fields of patch to the task with rawID and
// returns the number of modified documents. An empty patch touches nothing.
func (s *TaskService) Update(ctx context.Context, rawID string, patch models.TaskPatch) (int64, error) {
	id, err := ids.Parse(rawID)
	if err != nil {
		return 0, err
	}

	fields := patch.Fields()
	if len(fields) == 0 {
		return 0, nil
	}
	fields["updated_at"] = s.now()

	matched, modified, err := s.store.UpdateOne(ctx, models.TaskCollection, id, fields)
	if err != nil {
		return 0, err
	}
	if matched == 0 {
		return 0, apperror.ErrTaskNotFound
	}

	logger.WithRequestID(ctx, s.logger).Info("task updated",
		zap.String("task_id", rawID),
		zap.Int64("modified", modified),
	)
	return modified, nil
}

// Delete removes the task with rawID.
func (s *TaskService) Delete(ctx context.Context, rawID string) (int64, error) {
	id, err := ids.Parse(rawID)
	if err != nil {
		return 0, err
	}

	deleted, err := s.store.DeleteOne(ctx, models.TaskCollection, id)
	if err != nil {
		return 0, err
	}
	if deleted == 0 {
		return 0, apperror.ErrTaskNotFound
	}

	logger.WithRequestID(ctx, s.logger).Info("task deleted", zap.String("task_id", rawID))
	return deleted, nil
}
