package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchWithErrorsIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", Validation("text is required"), ErrValidation},
		{"not found", NotFound("post %s not found", "p1"), ErrNotFound},
		{"authorization", Authorization("not the author"), ErrAuthorization},
		{"self reference", SelfReference("cannot follow yourself"), ErrSelfReference},
		{"conflict", Conflict("username taken"), ErrConflict},
		{"media", MediaStore(errors.New("boom"), "upload failed"), ErrMediaStore},
		{"store", Store(errors.New("conn reset"), "get user"), ErrStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
		})
	}
}

func TestStorePassesThroughTypedErrors(t *testing.T) {
	nf := NotFound("user u1 not found")
	err := Store(nf, "lookup")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrStore)
	assert.Nil(t, Store(nil, "noop"))
}

func TestMessage(t *testing.T) {
	cause := errors.New("dial tcp refused")
	err := Store(cause, "list posts")
	assert.Equal(t, "list posts", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "", Message(errors.New("plain")))
}
