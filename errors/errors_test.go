package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"invalid tuple", ErrInvalidTuple, ErrorFatal},
		{"wrapped invalid tuple", fmt.Errorf("reading: %w", ErrInvalidTuple), ErrorFatal},
		{"callback panic", ErrCallbackPanic, ErrorFatal},
		{"malformed frame", ErrMalformedFrame, ErrorInvalid},
		{"wrong mode", ErrWrongMode, ErrorInvalid},
		{"task ids", ErrInvalidTaskIDs, ErrorInvalid},
		{"classified fatal", WrapFatal(io.ErrUnexpectedEOF, "Codec", "ReadFrame", "read line"), ErrorFatal},
		{"classified invalid", WrapInvalid(io.ErrUnexpectedEOF, "Codec", "ReadFrame", "read line"), ErrorInvalid},
		{"plain error", errors.New("boom"), ErrorTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestWrapKeepsChain(t *testing.T) {
	err := WrapFatal(ErrInvalidTuple, "Protocol", "ReadTuple", "build tuple")
	assert.EqualError(t, err, "Protocol.ReadTuple: build tuple failed: tuple values are not an array")
	assert.ErrorIs(t, err, ErrInvalidTuple)

	var ce *ClassifiedError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "Protocol", ce.Component)
	assert.Equal(t, "ReadTuple", ce.Operation)
	assert.Equal(t, "fatal", ce.Class.String())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "a", "b", "c"))
	assert.NoError(t, WrapFatal(nil, "a", "b", "c"))
	assert.NoError(t, WrapInvalid(nil, "a", "b", "c"))
	assert.False(t, IsFatal(nil))
	assert.False(t, IsInvalid(nil))
}
