package ids

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muchtodo/taskapi/internal/apperror"
)

// Parse converts a client-supplied task id into an ObjectID. Malformed input
// yields apperror.ErrInvalidID.
func Parse(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Wrap(apperror.CodeInvalidID, apperror.ErrInvalidID.Message, err)
	}
	return id, nil
}
