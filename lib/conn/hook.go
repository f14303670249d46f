package conn

import (
	"context"
	"net"
	"time"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/redis/go-redis/v9"
)

// auditHook forwards every outgoing command to a Recorder and updates the
// command metrics. Commands are recorded before they are sent, failed commands
// show up in the audit log as well.
type auditHook struct {
	label    string
	recorder Recorder
}

var _ redis.Hook = (*auditHook)(nil)

func newAuditHook(label string, recorder Recorder) *auditHook {
	return &auditHook{label: label, recorder: recorder}
}

func (h *auditHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		Logger.Debugf("[%s] dialing %s", h.label, addr)
		return next(ctx, network, addr)
	}
}

func (h *auditHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.record(cmd)
		start := time.Now()
		err := next(ctx, cmd)
		common.ObserveCommand(start, 1, ignoreNil(err))
		return err
	}
}

func (h *auditHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			h.record(cmd)
		}
		start := time.Now()
		err := next(ctx, cmds)
		common.ObserveCommand(start, len(cmds), ignoreNil(err))
		return err
	}
}

// handshake commands carry credentials and are never recorded
var handshake = map[string]bool{
	"hello": true,
	"auth":  true,
}

func (h *auditHook) record(cmd redis.Cmder) {
	if h.recorder == nil || handshake[cmd.Name()] {
		return
	}
	h.recorder.Record(h.label, cmd.Args())
}

func ignoreNil(err error) error {
	if err == redis.Nil {
		return nil
	}
	return err
}
