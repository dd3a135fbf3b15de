package operators

import (
	"context"

	"github.com/joelanford/multilang"
)

type FilterFunc func(*multilang.Tuple) bool

// Filter re-emits the tuples accepted by a FilterFunc on the default stream.
// Rejected tuples go to the reject stream when one is set and are dropped
// otherwise.
type Filter struct {
	oc           *multilang.OperatorContext
	filter       FilterFunc
	rejectStream string
}

func NewFilter(filter FilterFunc) *Filter {
	return &Filter{
		filter: filter,
	}
}

// RejectTo sends rejected tuples to stream.
func (b *Filter) RejectTo(stream string) *Filter {
	b.rejectStream = stream
	return b
}

func (b *Filter) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *Filter) Process(ctx context.Context, t *multilang.Tuple) error {
	if b.filter(t) {
		_, err := b.oc.Emit(multilang.NewValues(t.Values()...))
		return err
	}
	if b.rejectStream != "" {
		_, err := b.oc.Emit(multilang.NewValues(t.Values()...), multilang.WithStream(b.rejectStream))
		return err
	}
	return nil
}
