package common

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionErrorKeepsMessage(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:1: connect: connection refused")
	err := NewConnectionError(cause)

	require.Error(t, err)
	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, ErrConnection)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestConnectionErrorWrapping(t *testing.T) {
	assert.NoError(t, NewConnectionError(nil))

	// wrapping twice keeps a single layer
	once := NewConnectionError(errors.New("i/o timeout"))
	twice := NewConnectionError(once)
	assert.Same(t, once, twice)

	// context added on top still matches
	wrapped := errors.Wrap(once, "open session a")
	assert.ErrorIs(t, wrapped, ErrConnection)
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrConnection, ErrSessionNotFound, ErrUnsupportedKeyType,
		ErrInvalidTTL, ErrTopologyParse, ErrValueParse, ErrKeyExists,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}
