package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorUnwrap(t *testing.T) {
	e := NewAppError("DB_ERROR", "insert failed", ErrConflict)
	assert.True(t, errors.Is(e, ErrConflict))
	assert.Contains(t, e.Error(), "DB_ERROR")
	assert.Contains(t, e.Error(), "insert failed")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, HTTPStatus(ErrInvalidInput))
	assert.Equal(t, 401, HTTPStatus(ErrUnauthorized))
	assert.Equal(t, 404, HTTPStatus(NewAppError("X", "missing", ErrNotFound)))
	assert.Equal(t, 409, HTTPStatus(ErrConflict))
	assert.Equal(t, 503, HTTPStatus(ErrUnavailable))
	assert.Equal(t, 500, HTTPStatus(errors.New("boom")))
}
