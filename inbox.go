package multilang

import (
	"bytes"
	"encoding/json"

	"github.com/eapache/queue"

	"github.com/joelanford/multilang/errors"
)

// FrameReader is the read half of a Codec.
type FrameReader interface {
	ReadFrame() (json.RawMessage, error)
}

type frameKind int

const (
	kindCommand frameKind = iota
	kindTaskIDs
)

func (k frameKind) String() string {
	if k == kindTaskIDs {
		return "task_ids"
	}
	return "commands"
}

// classify sorts a frame by shape: arrays are task id lists, everything
// else, including frames that carried no data, is a command.
func classify(raw json.RawMessage) frameKind {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return kindTaskIDs
	}
	return kindCommand
}

// Inbox demultiplexes the single inbound frame stream into task id lists and
// commands. Reading one kind buffers frames of the other kind, so each kind
// is returned in arrival order no matter how the two are interleaved.
type Inbox struct {
	frames  FrameReader
	queues  [2]*queue.Queue
	metrics *Metrics
}

// NewInbox creates an inbox reading from frames.
func NewInbox(frames FrameReader) *Inbox {
	return &Inbox{
		frames: frames,
		queues: [2]*queue.Queue{queue.New(), queue.New()},
	}
}

// Pending returns the number of buffered task id lists and commands.
func (in *Inbox) Pending() (taskIDs, commands int) {
	return in.queues[kindTaskIDs].Length(), in.queues[kindCommand].Length()
}

// NextTaskIDs returns the next task id list, buffering any commands read
// while looking for it.
func (in *Inbox) NextTaskIDs() ([]int, error) {
	raw, err := in.next(kindTaskIDs)
	if err != nil {
		return nil, err
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidTaskIDs, "Inbox", "NextTaskIDs", "decode "+string(raw))
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

// NextCommand returns the next object-shaped frame, buffering any task id
// lists read while looking for it. A frame that could not be parsed yields
// an empty Command.
func (in *Inbox) NextCommand() (*Command, error) {
	raw, err := in.next(kindCommand)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return &Command{}, nil
	}
	cmd := &Command{}
	if err := json.Unmarshal(raw, cmd); err != nil {
		return &Command{Raw: raw}, errors.WrapInvalid(err, "Inbox", "NextCommand", "decode command")
	}
	cmd.Raw = raw
	return cmd, nil
}

func (in *Inbox) next(want frameKind) (json.RawMessage, error) {
	if q := in.queues[want]; q.Length() > 0 {
		raw := q.Remove().(json.RawMessage)
		in.metrics.pendingDepth(want.String(), q.Length())
		return raw, nil
	}
	for {
		raw, err := in.frames.ReadFrame()
		if err != nil {
			return nil, err
		}
		kind := classify(raw)
		if kind == want {
			return raw, nil
		}
		in.queues[kind].Add(raw)
		in.metrics.pendingDepth(kind.String(), in.queues[kind].Length())
	}
}
