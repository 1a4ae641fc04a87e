package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/muchtodo/taskapi/internal/apperror"
)

func TestParse(t *testing.T) {
	want := primitive.NewObjectID()
	got, err := Parse(want.Hex())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "123", "not-an-object-id-at-all!", "zzzzzzzzzzzzzzzzzzzzzzzz", "665f1f77bcf86cd79943901"} {
		id, err := Parse(raw)
		assert.ErrorIs(t, err, apperror.ErrInvalidID, raw)
		assert.True(t, id.IsZero())
	}
}
