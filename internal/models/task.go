package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TaskCollection  = "task"
	DefaultPriority = "medium"
)

// Task is the persisted representation of one to-do item.
type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id" swaggertype:"string" example:"665f1f77bcf86cd799439011"`
	Title       string             `bson:"title" json:"title" example:"Buy milk"`
	Description *string            `bson:"description" json:"description"`
	Priority    string             `bson:"priority" json:"priority" example:"medium"`
	Completed   bool               `bson:"completed" json:"completed"`
	DueDate     *string            `bson:"due_date" json:"due_date" example:"2026-10-20T18:00:00Z"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CreateTaskRequest is the POST /api/tasks payload.
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required" example:"Buy milk"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" example:"medium"`
	DueDate     *string `json:"due_date" example:"2026-10-20T18:00:00Z"`
}

// NewTask builds the record to insert for req, stamped at now.
func NewTask(req CreateTaskRequest, now time.Time) Task {
	priority := DefaultPriority
	if req.Priority != nil && *req.Priority != "" {
		priority = *req.Priority
	}
	return Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Completed:   false,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaskPatch is the PATCH /api/tasks/{id} payload. Fields absent from the
// payload and fields sent as null are both left untouched.
type TaskPatch struct {
	Title       Optional[string] `json:"title" swaggertype:"string"`
	Description Optional[string] `json:"description" swaggertype:"string"`
	Completed   Optional[bool]   `json:"completed" swaggertype:"boolean"`
	Priority    Optional[string] `json:"priority" swaggertype:"string"`
	DueDate     Optional[string] `json:"due_date" swaggertype:"string"`
}

// Fields returns the store field set for the values present in the patch.
func (p TaskPatch) Fields() bson.M {
	fields := bson.M{}
	setString(fields, "title", p.Title)
	setString(fields, "description", p.Description)
	if p.Completed.Present() {
		fields["completed"] = p.Completed.Value
	}
	setString(fields, "priority", p.Priority)
	setString(fields, "due_date", p.DueDate)
	return fields
}

func setString(fields bson.M, key string, v Optional[string]) {
	if v.Present() {
		fields[key] = v.Value
	}
}

// TaskDocument shapes a stored task document for the API. The _id key
// becomes a hex string id and BSON datetimes become time.Time. Every other
// field passes through as stored, so documents written outside the API
// still list.
func TaskDocument(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		out[k] = jsonValue(v)
	}
	if id, ok := doc["_id"]; ok {
		if oid, ok := id.(primitive.ObjectID); ok {
			out["id"] = oid.Hex()
		} else {
			out["id"] = fmt.Sprint(id)
		}
	}
	return out
}

func jsonValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time().UTC()
	case primitive.ObjectID:
		return val.Hex()
	case bson.M:
		out := make(bson.M, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case bson.D:
		out := make(bson.M, len(val))
		for _, e := range val {
			out[e.Key] = jsonValue(e.Value)
		}
		return out
	case bson.A:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return v
	}
}
