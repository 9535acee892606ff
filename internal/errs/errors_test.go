package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	assert.Equal(t, "[not_found] object missing", New(ErrKindNotFound, "object missing").Error())

	cause := errors.New("dial tcp: refused")
	err := Wrap(ErrKindConnectionFailed, "list objects", cause)
	assert.Equal(t, "[connection_failed] list objects: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestPredicates_ThroughWrapping(t *testing.T) {
	base := New(ErrKindNotFound, "no such key")
	wrapped := fmt.Errorf("delete item: %w", base)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsInvalidInput(wrapped))
	assert.Equal(t, ErrKindNotFound, KindOf(wrapped))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrKindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, ErrKindUnknown, KindOf(nil))
}

func TestErrKind_String(t *testing.T) {
	tests := map[ErrKind]string{
		ErrKindUnknown:          "unknown",
		ErrKindNotFound:         "not_found",
		ErrKindConnectionFailed: "connection_failed",
		ErrKindTimeout:          "timeout",
		ErrKindOperationFailed:  "operation_failed",
		ErrKindInvalidInput:     "invalid_input",
		ErrKindPermissionDenied: "permission_denied",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}
