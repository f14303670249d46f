package common

import (
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// Error taxonomy
// --------------------------------------------------------------------------

// Sentinel errors returned by the session engine. Callers match them with errors.Is,
// the concrete error usually carries more context (session id, key, node address).
var (
	// ErrConnection reports a transport failure (refused, timeout, reset)
	ErrConnection = errors.New("connection error")
	// ErrSessionNotFound reports that no session is registered under the given id
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnsupportedKeyType reports a type tag outside string, list, set, zset, hash and stream
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	// ErrInvalidTTL reports a ttl below -1
	ErrInvalidTTL = errors.New("invalid ttl")
	// ErrTopologyParse reports a malformed CLUSTER NODES reply
	ErrTopologyParse = errors.New("topology parse error")
	// ErrValueParse reports a caller supplied value that could not be decoded
	ErrValueParse = errors.New("value parse error")
	// ErrKeyExists reports that a rename target is already present
	ErrKeyExists = errors.New("key already exists")
)

// ConnectionError wraps a transport failure. The message of the underlying
// error is kept as is, errors.Is(err, ErrConnection) reports true.
type ConnectionError struct {
	Err error
}

// NewConnectionError wraps err, nil stays nil
func NewConnectionError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConnectionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConnectionError{Err: err}
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
