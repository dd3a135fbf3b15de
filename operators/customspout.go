package operators

import (
	"context"

	"github.com/joelanford/multilang"
)

// CustomSpoutFunc is called each time the parent asks the spout for tuples.
type CustomSpoutFunc func(context.Context, *multilang.OperatorContext) error

// CustomSpout is a spout that hands every next request to a function.
type CustomSpout struct {
	process CustomSpoutFunc
	oc      *multilang.OperatorContext
}

func NewCustomSpout(customSpout CustomSpoutFunc) *CustomSpout {
	return &CustomSpout{
		process: customSpout,
	}
}

func (s *CustomSpout) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	s.oc = oc
	return nil
}

func (s *CustomSpout) Next(ctx context.Context) error {
	return s.process(ctx, s.oc)
}
