package multilang

import (
	"context"
	stderrors "errors"

	"github.com/joelanford/multilang/errors"
)

// BoltProcessor is implemented by processing components. Process is called
// once per input tuple; the runtime acks the tuple when Process returns nil
// and fails it when Process returns an error.
//
// By default every tuple emitted during Process is anchored to the input
// tuple, whatever anchors the emit asks for. With WithManualAnchoring the
// component passes anchors explicitly with WithAnchors.
type BoltProcessor interface {
	Setup(context.Context, *OperatorContext) error
	Process(context.Context, *Tuple) error
}

// RunBolt runs b until the parent closes the stream. If b implements
// io.Closer it is closed when the runtime stops.
func RunBolt(ctx context.Context, b BoltProcessor, opts ...Option) error {
	r := newRuntime(ModeBolt, opts)
	err := r.runBolt(ctx, b)
	r.teardown(b)
	return r.finish(err)
}

func (r *runtime) runBolt(ctx context.Context, b BoltProcessor) error {
	if _, err := r.start(ctx, b.Setup); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t, err := r.proto.ReadTuple()
		if err != nil {
			switch {
			case stderrors.Is(err, errors.ErrMalformedFrame):
				// already reported to the parent by the codec
				r.logger.Debug("skipping empty frame")
				continue
			case errors.IsInvalid(err):
				r.report(err)
				continue
			default:
				return err
			}
		}
		r.metrics.command("tuple")

		if !r.opts.manualAnchoring {
			r.proto.anchor = t
		}
		cbErr := call(func() error { return b.Process(ctx, t) })
		r.proto.anchor = nil

		if cbErr != nil {
			r.report(cbErr)
			if err := r.proto.Fail(t.ID()); err != nil {
				return err
			}
			if errors.IsFatal(cbErr) {
				return cbErr
			}
			continue
		}
		if err := r.proto.Ack(t.ID()); err != nil {
			return err
		}
	}
}
