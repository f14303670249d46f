package conn

import (
	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// wrapErr classifies an error returned by go-redis. Server error replies and
// nil replies pass through, everything else is a transport failure.
func wrapErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return err
	}
	return common.NewConnectionError(err)
}
