package multilang

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/joelanford/multilang/errors"
)

// TaskUnknown is the task of a tuple built by the component itself rather
// than received from the parent.
const TaskUnknown = -1

// Tuple is one unit of data flowing through the topology: an id, the
// provenance of the tuple and an ordered list of values. A Tuple is not
// modified after it is built.
type Tuple struct {
	id        string
	component string
	stream    string
	task      int
	values    []any
}

// NewTuple builds a tuple with full provenance. values must be array shaped:
// a slice, an array, or a json.RawMessage holding a JSON array. Anything else
// is reported as errors.ErrInvalidTuple.
func NewTuple(id, component, stream string, task int, values any) (*Tuple, error) {
	vs, err := toValues(values)
	if err != nil {
		return nil, err
	}
	return &Tuple{
		id:        id,
		component: component,
		stream:    stream,
		task:      task,
		values:    vs,
	}, nil
}

// NewValues builds a tuple meant to be emitted. It has no id, no provenance
// and its task is TaskUnknown.
func NewValues(values ...any) *Tuple {
	vs := make([]any, len(values))
	copy(vs, values)
	return &Tuple{task: TaskUnknown, values: vs}
}

// ID returns the tuple id, empty for tuples built with NewValues.
func (t *Tuple) ID() string { return t.id }

// Component returns the id of the component that emitted the tuple.
func (t *Tuple) Component() string { return t.component }

// Stream returns the stream the tuple arrived on.
func (t *Tuple) Stream() string { return t.stream }

// Task returns the id of the task that emitted the tuple.
func (t *Tuple) Task() int { return t.task }

// Len returns the number of values in the tuple.
func (t *Tuple) Len() int { return len(t.values) }

// Value returns the value at index i, or nil when i is out of range.
func (t *Tuple) Value(i int) any {
	if i < 0 || i >= len(t.values) {
		return nil
	}
	return t.values[i]
}

// StringAt returns the value at index i if it is a string.
func (t *Tuple) StringAt(i int) (string, bool) {
	s, ok := t.Value(i).(string)
	return s, ok
}

// Values returns a copy of the tuple values.
func (t *Tuple) Values() []any {
	vs := make([]any, len(t.values))
	copy(vs, t.values)
	return vs
}

// MarshalJSON encodes the tuple as its value array, which is the payload
// form used in emit messages.
func (t *Tuple) MarshalJSON() ([]byte, error) {
	if t.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.values)
}

func toValues(values any) ([]any, error) {
	switch v := values.(type) {
	case []any:
		vs := make([]any, len(v))
		copy(vs, v)
		return vs, nil
	case json.RawMessage:
		return decodeValues(v)
	case []byte:
		return nil, errors.ErrInvalidTuple
	case nil:
		return nil, errors.ErrInvalidTuple
	}

	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: got %T", errors.ErrInvalidTuple, values)
	}
	vs := make([]any, rv.Len())
	for i := range vs {
		vs[i] = rv.Index(i).Interface()
	}
	return vs, nil
}

func decodeValues(raw json.RawMessage) ([]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.ErrInvalidTuple
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var vs []any
	if err := dec.Decode(&vs); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidTuple, err)
	}
	if vs == nil {
		vs = []any{}
	}
	return vs, nil
}
