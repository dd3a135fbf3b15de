package multilang

import (
	"context"

	"github.com/joelanford/multilang/errors"
)

// SpoutProcessor is implemented by source components. The parent paces the
// spout: Next is called only when the parent asks for more tuples, and may
// emit any number of tuples through the OperatorContext given to Setup.
type SpoutProcessor interface {
	Setup(context.Context, *OperatorContext) error
	Next(context.Context) error
}

// Acker is implemented by spouts that track the tuples they emitted. Without
// it, the runtime answers an ack command by acking the id back to the parent.
type Acker interface {
	Ack(ctx context.Context, id string) error
}

// Failer is implemented by spouts that replay failed tuples. Without it, the
// runtime answers a fail command by failing the id back to the parent.
type Failer interface {
	Fail(ctx context.Context, id string) error
}

// RunSpout runs s until the parent closes the stream. Every command,
// including unknown ones, is answered with a sync once it is handled. If s
// implements io.Closer it is closed when the runtime stops.
func RunSpout(ctx context.Context, s SpoutProcessor, opts ...Option) error {
	r := newRuntime(ModeSpout, opts)
	err := r.runSpout(ctx, s)
	r.teardown(s)
	return r.finish(err)
}

func (r *runtime) runSpout(ctx context.Context, s SpoutProcessor) error {
	if _, err := r.start(ctx, s.Setup); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cmd, err := r.proto.inbox.NextCommand()
		if err != nil {
			if !errors.IsInvalid(err) {
				return err
			}
			r.report(err)
			cmd = &Command{}
		}
		r.metrics.command(commandLabel(cmd.Command))

		var cbErr error
		switch cmd.Command {
		case CommandNext:
			cbErr = call(func() error { return s.Next(ctx) })
		case CommandAck:
			cbErr = call(func() error { return r.spoutAck(ctx, s, string(cmd.ID)) })
		case CommandFail:
			cbErr = call(func() error { return r.spoutFail(ctx, s, string(cmd.ID)) })
		default:
			r.logger.Debug("ignoring command", "command", cmd.Command)
		}
		if cbErr != nil {
			r.report(cbErr)
		}

		if err := r.proto.Sync(); err != nil {
			return err
		}
		if errors.IsFatal(cbErr) {
			return cbErr
		}
	}
}

func (r *runtime) spoutAck(ctx context.Context, s SpoutProcessor, id string) error {
	if a, ok := s.(Acker); ok {
		return a.Ack(ctx, id)
	}
	return r.proto.Ack(id)
}

func (r *runtime) spoutFail(ctx context.Context, s SpoutProcessor, id string) error {
	if f, ok := s.(Failer); ok {
		return f.Fail(ctx, id)
	}
	return r.proto.Fail(id)
}
