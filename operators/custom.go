package operators

import (
	"context"

	"github.com/joelanford/multilang"
)

// CustomFunc processes one input tuple.
type CustomFunc func(context.Context, *multilang.OperatorContext, *multilang.Tuple) error

// Custom is a bolt that hands every tuple to a function.
type Custom struct {
	oc     *multilang.OperatorContext
	custom CustomFunc
}

func NewCustom(custom CustomFunc) *Custom {
	return &Custom{
		custom: custom,
	}
}

func (b *Custom) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *Custom) Process(ctx context.Context, t *multilang.Tuple) error {
	return b.custom(ctx, b.oc, t)
}
