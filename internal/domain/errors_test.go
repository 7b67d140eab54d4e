package domain

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStorageError_MatchesKindAndCause(t *testing.T) {
	err := NewStorageError("commit", sql.ErrConnDone)

	assert.True(t, errors.Is(err, ErrStorage))
	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.False(t, errors.Is(err, ErrInsufficientFunds))
	assert.Equal(t, "storage failure: commit: sql: connection is already closed", err.Error())

	var storageErr *StorageError
	assert.True(t, errors.As(fmt.Errorf("buy AAPL: %w", err), &storageErr))
	assert.Equal(t, "commit", storageErr.Op)
}

func TestNewStorageError_Nil(t *testing.T) {
	assert.NoError(t, NewStorageError("query", nil))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(fmt.Errorf("buy: %w", ErrInsufficientFunds)))
	assert.True(t, IsClientError(ErrPositionNotFound))
	assert.True(t, IsClientError(ErrInsufficientQuantity))
	assert.True(t, IsClientError(ErrInvalidTrade))

	assert.False(t, IsClientError(ErrAccountNotFound))
	assert.False(t, IsClientError(NewStorageError("exec", errors.New("disk I/O error"))))
	assert.False(t, IsClientError(errors.New("boom")))
}
