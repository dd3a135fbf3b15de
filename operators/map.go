package operators

import (
	"context"

	"github.com/joelanford/multilang"
)

// MapFunc turns an input tuple into an output tuple. Returning nil drops the
// input.
type MapFunc func(*multilang.Tuple) *multilang.Tuple

type Map struct {
	oc     *multilang.OperatorContext
	mapper MapFunc
}

func NewMap(mapper MapFunc) *Map {
	return &Map{
		mapper: mapper,
	}
}

func (b *Map) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *Map) Process(ctx context.Context, t *multilang.Tuple) error {
	out := b.mapper(t)
	if out == nil {
		return nil
	}
	_, err := b.oc.Emit(out)
	return err
}
