package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muchtodo/taskapi/internal/apperror"
	"github.com/muchtodo/taskapi/internal/models"
	"github.com/muchtodo/taskapi/internal/store/storetest"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Insert(ctx context.Context, collection string, record any) (string, error) {
	args := m.Called(ctx, collection, record)
	return args.String(0), args.Error(1)
}

func (m *mockStore) Find(ctx context.Context, collection string, filter, projection any) ([]bson.M, error) {
	args := m.Called(ctx, collection, filter, projection)
	docs, _ := args.Get(0).([]bson.M)
	return docs, args.Error(1)
}

func (m *mockStore) UpdateOne(ctx context.Context, collection string, id primitive.ObjectID, fields bson.M) (int64, int64, error) {
	args := m.Called(ctx, collection, id, fields)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *mockStore) DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, collection, id)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func newService(store DocumentStore) *TaskService {
	svc := NewTaskService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateWithTitleOnly(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	svc := newService(mem)

	id, err := svc.Create(ctx, models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)
	assert.Len(t, id, 24)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0]["id"])
	assert.NotContains(t, tasks[0], "_id")
	assert.Equal(t, "Buy milk", tasks[0]["title"])
	assert.Equal(t, "medium", tasks[0]["priority"])
	assert.Equal(t, false, tasks[0]["completed"])
	assert.Nil(t, tasks[0]["description"])
	assert.Equal(t, fixedNow, tasks[0]["created_at"])
	assert.Equal(t, fixedNow, tasks[0]["updated_at"])
}

func TestCreateRejectsEmptyTitle(t *testing.T) {
	store := new(mockStore)
	_, err := newService(store).Create(context.Background(), models.CreateTaskRequest{})
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestListEmptyStore(t *testing.T) {
	tasks, err := newService(storetest.NewMemory()).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestListKeepsDocumentsWrittenOutsideTheAPI(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	svc := newService(mem)

	id, err := svc.Create(ctx, models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	due := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	otherID, err := mem.Insert(ctx, "task", bson.M{
		"title":    "Walk dog",
		"due_date": due,
		"tags":     bson.A{"home", "errand"},
	})
	require.NoError(t, err)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	byID := map[any]bson.M{}
	for _, task := range tasks {
		byID[task["id"]] = task
	}
	require.Contains(t, byID, id)
	require.Contains(t, byID, otherID)

	other := byID[otherID]
	assert.Equal(t, "Walk dog", other["title"])
	assert.Equal(t, due, other["due_date"])
	assert.Equal(t, bson.A{"home", "errand"}, other["tags"])
	assert.NotContains(t, other, "created_at")
	assert.NotContains(t, other, "completed")
	assert.NotContains(t, other, "_id")
}

func TestListPropagatesStoreUnavailable(t *testing.T) {
	store := new(mockStore)
	store.On("Find", mock.Anything, "task", bson.D{}, nil).Return(nil, apperror.ErrStoreUnavailable)

	_, err := newService(store).List(context.Background())
	assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
	store.AssertExpectations(t)
}

func TestUpdateAppliesPresentFieldsAndStampsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	svc := newService(mem)

	id, err := svc.Create(ctx, models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	later := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return later }

	updated, err := svc.Update(ctx, id, models.TaskPatch{Completed: models.Some(true)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated)

	tasks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, true, tasks[0]["completed"])
	assert.Equal(t, "Buy milk", tasks[0]["title"])
	assert.Equal(t, fixedNow, tasks[0]["created_at"])
	assert.Equal(t, later, tasks[0]["updated_at"])
}

func TestUpdateEmptyOrNullPatchTouchesNothing(t *testing.T) {
	ctx := context.Background()
	mem := storetest.NewMemory()
	svc := newService(mem)

	id, err := svc.Create(ctx, models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)
	oid, _ := primitive.ObjectIDFromHex(id)
	before, _ := mem.Get("task", oid)

	nullPatch := models.TaskPatch{
		Title:     models.Optional[string]{Set: true, Null: true},
		Completed: models.Optional[bool]{Set: true, Null: true},
	}
	for _, patch := range []models.TaskPatch{{}, nullPatch} {
		updated, err := svc.Update(ctx, id, patch)
		require.NoError(t, err)
		assert.Zero(t, updated)
	}

	after, _ := mem.Get("task", oid)
	assert.Equal(t, before, after)
}

func TestUpdateEmptyPatchSkipsStore(t *testing.T) {
	store := new(mockStore)
	updated, err := newService(store).Update(context.Background(), primitive.NewObjectID().Hex(), models.TaskPatch{})
	require.NoError(t, err)
	assert.Zero(t, updated)
	store.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	svc := newService(storetest.NewMemory())
	_, err := svc.Update(context.Background(), primitive.NewObjectID().Hex(), models.TaskPatch{Title: models.Some("x")})
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
}

func TestUpdateSameValuesReportsZeroModified(t *testing.T) {
	store := new(mockStore)
	id := primitive.NewObjectID()
	store.On("UpdateOne", mock.Anything, "task", id, mock.MatchedBy(func(f bson.M) bool {
		return f["priority"] == "medium" && f["updated_at"] == fixedNow
	})).Return(int64(1), int64(0), nil)

	updated, err := newService(store).Update(context.Background(), id.Hex(), models.TaskPatch{Priority: models.Some("medium")})
	require.NoError(t, err)
	assert.Zero(t, updated)
	store.AssertExpectations(t)
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc := newService(storetest.NewMemory())

	id, err := svc.Create(ctx, models.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = svc.Delete(ctx, id)
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
}

func TestInvalidIDRejectedBeforeStoreAccess(t *testing.T) {
	store := new(mockStore)
	svc := newService(store)

	_, err := svc.Update(context.Background(), "nope", models.TaskPatch{Title: models.Some("x")})
	assert.ErrorIs(t, err, apperror.ErrInvalidID)

	_, err = svc.Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, apperror.ErrInvalidID)

	store.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePropagatesStoreErrors(t *testing.T) {
	store := new(mockStore)
	boom := errors.New("boom")
	store.On("DeleteOne", mock.Anything, "task", mock.Anything).Return(int64(0), boom)

	_, err := newService(store).Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, boom)
}
