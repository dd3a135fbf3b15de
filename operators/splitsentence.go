package operators

import (
	"context"
	"strings"

	"github.com/joelanford/multilang"
)

const (
	// ConfSplitDelimiter overrides the delimiter from the topology config.
	ConfSplitDelimiter = "split.delimiter"
)

// SplitSentence emits one single-value tuple per substring of the string at
// index, split on delimiter.
type SplitSentence struct {
	index     int
	delimiter string

	oc *multilang.OperatorContext
}

func NewSplitSentence(index int, delimiter string) *SplitSentence {
	return &SplitSentence{
		index:     index,
		delimiter: delimiter,
	}
}

func (b *SplitSentence) Setup(ctx context.Context, oc *multilang.OperatorContext) error {
	b.oc = oc
	b.delimiter = oc.ConfString(ConfSplitDelimiter, b.delimiter)
	return nil
}

func (b *SplitSentence) Process(ctx context.Context, t *multilang.Tuple) error {
	sentence, ok := t.StringAt(b.index)
	if !ok {
		b.oc.Log().Debugf("%s: no string at index %d in %v", b.oc.Name(), b.index, t.Values())
		return nil
	}
	for _, word := range strings.Split(sentence, b.delimiter) {
		if _, err := b.oc.Emit(multilang.NewValues(word)); err != nil {
			return err
		}
	}
	return nil
}
