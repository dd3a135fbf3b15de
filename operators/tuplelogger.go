package operators

import (
	"context"

	"github.com/joelanford/multilang"
)

// TupleLogger logs every tuple it receives to the parent's log.
type TupleLogger struct {
	oc *multilang.OperatorContext
}

func NewTupleLogger() *TupleLogger {
	return &TupleLogger{}
}

func (b *TupleLogger) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *TupleLogger) Process(ctx context.Context, t *multilang.Tuple) error {
	b.oc.Log().Infof("%s/%s[%d] %s %v", t.Component(), t.Stream(), t.Task(), t.ID(), t.Values())
	return nil
}
