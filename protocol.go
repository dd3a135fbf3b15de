package multilang

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joelanford/multilang/errors"
)

// Mode is the kind of component a Protocol speaks for. Emit options differ
// between the two kinds.
type Mode int

const (
	ModeNone Mode = iota
	ModeSpout
	ModeBolt
)

func (m Mode) String() string {
	switch m {
	case ModeSpout:
		return "spout"
	case ModeBolt:
		return "bolt"
	default:
		return "none"
	}
}

// PIDRecorder reports the process id during the handshake.
type PIDRecorder interface {
	PID() int
	// Record leaves the marker the parent uses to find the process.
	Record(dir string, pid int) error
}

type pidFile struct{}

func (pidFile) PID() int { return os.Getpid() }

func (pidFile) Record(dir string, pid int) error {
	if dir == "" {
		return nil
	}
	return os.WriteFile(filepath.Join(dir, strconv.Itoa(pid)), nil, 0644)
}

// Protocol holds all state of one conversation with the parent: the frame
// codec, the inbox with its pending queues, the component kind and the
// anchor tuple. It is not safe for concurrent reads; emits from several
// goroutines must be serialized by the caller because task id replies are
// matched to emits by order.
type Protocol struct {
	codec   *Codec
	inbox   *Inbox
	mode    Mode
	anchor  *Tuple
	metrics *Metrics
}

// NewProtocol creates a protocol reading frames from r and writing to w.
func NewProtocol(r io.Reader, w io.Writer, mode Mode) *Protocol {
	codec := NewCodec(r, w)
	return &Protocol{
		codec: codec,
		inbox: NewInbox(codec),
		mode:  mode,
	}
}

func (p *Protocol) setMetrics(m *Metrics) {
	p.metrics = m
	p.codec.metrics = m
	p.inbox.metrics = m
}

// Mode returns the component kind.
func (p *Protocol) Mode() Mode { return p.mode }

// Inbox returns the demultiplexer the protocol reads from.
func (p *Protocol) Inbox() *Inbox { return p.inbox }

// Handshake reads the setup message, reports the process id to the parent
// and records the pid marker. The pid report is the first message written.
func (p *Protocol) Handshake(rec PIDRecorder) (*Setup, error) {
	raw, err := p.codec.ReadFrame()
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.WrapFatal(errors.ErrMissingSetup, "Protocol", "Handshake", "read setup")
	}
	setup := &Setup{}
	if err := json.Unmarshal(raw, setup); err != nil {
		return nil, errors.WrapFatal(err, "Protocol", "Handshake", "decode setup")
	}
	if setup.Conf == nil {
		setup.Conf = map[string]any{}
	}

	pid := rec.PID()
	if err := p.codec.WriteFrame(pidMessage{PID: pid}); err != nil {
		return nil, err
	}
	if err := rec.Record(setup.PIDDir, pid); err != nil {
		if err := p.Log(fmt.Sprintf("could not write pid marker in %q: %v", setup.PIDDir, err)); err != nil {
			return nil, err
		}
	}
	return setup, nil
}

// ReadTuple reads the next command and builds a tuple from it. A frame that
// carried no data is reported as errors.ErrMalformedFrame; values that are
// not an array are fatal.
func (p *Protocol) ReadTuple() (*Tuple, error) {
	cmd, err := p.inbox.NextCommand()
	if err != nil {
		return nil, err
	}
	if cmd.Empty() {
		return nil, errors.WrapInvalid(errors.ErrMalformedFrame, "Protocol", "ReadTuple", "read tuple")
	}
	t, err := NewTuple(string(cmd.ID), cmd.Comp, cmd.Stream, cmd.Task, cmd.Tuple)
	if err != nil {
		return nil, errors.WrapFatal(err, "Protocol", "ReadTuple", "build tuple "+string(cmd.ID))
	}
	return t, nil
}

// EmitOption configures a single emit.
type EmitOption func(*emitOptions)

type emitOptions struct {
	stream  string
	id      MessageID
	anchors []*Tuple
}

// WithStream emits on the named stream instead of the default stream.
func WithStream(stream string) EmitOption {
	return func(o *emitOptions) {
		o.stream = stream
	}
}

// WithAnchors anchors the emitted tuple to the given input tuples. Bolts
// only. When the runtime anchors automatically, the current input tuple
// replaces these anchors.
func WithAnchors(anchors ...*Tuple) EmitOption {
	return func(o *emitOptions) {
		o.anchors = append(o.anchors, anchors...)
	}
}

// WithMessageID sets the id the parent uses to ack or fail a spout tuple.
// Spouts only.
func WithMessageID(id string) EmitOption {
	return func(o *emitOptions) {
		o.id = MessageID(id)
	}
}

// Emit sends t to the parent and waits for the list of tasks it was routed to.
func (p *Protocol) Emit(t *Tuple, opts ...EmitOption) ([]int, error) {
	return p.emit(t, TaskUnknown, opts)
}

// EmitDirect sends t to one task and waits for the task id reply.
func (p *Protocol) EmitDirect(task int, t *Tuple, opts ...EmitOption) ([]int, error) {
	return p.emit(t, task, opts)
}

func (p *Protocol) emit(t *Tuple, task int, opts []EmitOption) ([]int, error) {
	if t == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidTuple, "Protocol", "Emit", "emit nil tuple")
	}
	var o emitOptions
	for _, opt := range opts {
		opt(&o)
	}

	msg := emitMessage{
		Command: CommandEmit,
		Stream:  o.stream,
		Tuple:   t,
	}
	if task != TaskUnknown {
		msg.Task = &task
	}

	switch p.mode {
	case ModeSpout:
		if len(o.anchors) > 0 {
			return nil, errors.WrapInvalid(errors.ErrWrongMode, "Protocol", "Emit", "anchor spout tuple")
		}
		msg.ID = o.id
	case ModeBolt:
		if o.id != "" {
			return nil, errors.WrapInvalid(errors.ErrWrongMode, "Protocol", "Emit", "set bolt message id")
		}
		anchors := o.anchors
		if p.anchor != nil {
			anchors = []*Tuple{p.anchor}
		}
		for _, a := range anchors {
			msg.Anchors = append(msg.Anchors, a.ID())
		}
	default:
		return nil, errors.WrapInvalid(errors.ErrWrongMode, "Protocol", "Emit", "emit without component kind")
	}

	if err := p.codec.WriteFrame(msg); err != nil {
		return nil, err
	}
	p.metrics.emit(o.stream)
	return p.inbox.NextTaskIDs()
}

// Ack tells the parent the tuple with the given id was fully processed.
func (p *Protocol) Ack(id string) error {
	if err := p.codec.WriteFrame(idMessage{Command: CommandAck, ID: MessageID(id)}); err != nil {
		return err
	}
	p.metrics.ack()
	return nil
}

// Fail tells the parent the tuple with the given id failed.
func (p *Protocol) Fail(id string) error {
	if err := p.codec.WriteFrame(idMessage{Command: CommandFail, ID: MessageID(id)}); err != nil {
		return err
	}
	p.metrics.fail()
	return nil
}

// Sync tells the parent the spout finished the current command.
func (p *Protocol) Sync() error {
	if err := p.codec.WriteFrame(syncMessage{Command: CommandSync}); err != nil {
		return err
	}
	p.metrics.sync()
	return nil
}

// Log sends a message to the parent's log.
func (p *Protocol) Log(msg string) error {
	return p.codec.WriteFrame(logMessage{Command: CommandLog, Msg: msg})
}
