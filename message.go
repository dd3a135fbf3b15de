package multilang

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// Commands understood by the source runtime and sent by both runtimes.
const (
	CommandNext = "next"
	CommandAck  = "ack"
	CommandFail = "fail"
	CommandEmit = "emit"
	CommandSync = "sync"
	CommandLog  = "log"
)

// MessageID is a tuple or message id. Parents send ids as JSON strings or
// numbers; both decode to their text form.
type MessageID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *MessageID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = MessageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = MessageID(n.String())
	return nil
}

// Command is a decoded object-shaped frame. Tuple deliveries are commands
// without a command field.
type Command struct {
	Command string          `json:"command"`
	ID      MessageID       `json:"id"`
	Comp    string          `json:"comp"`
	Stream  string          `json:"stream"`
	Task    int             `json:"task"`
	Tuple   json.RawMessage `json:"tuple"`

	// Raw is the undecoded frame, nil when the frame could not be parsed.
	Raw json.RawMessage `json:"-"`
}

// Empty reports whether the command came from a frame that carried no data.
func (c *Command) Empty() bool {
	return len(c.Raw) == 0
}

// Setup is the handshake message the parent sends once at start.
type Setup struct {
	Conf    map[string]any  `json:"conf"`
	Context TopologyContext `json:"context"`
	PIDDir  string          `json:"pidDir"`
}

// TopologyContext is the part of the topology the parent describes to the
// component during the handshake.
type TopologyContext struct {
	TaskID          int               `json:"taskid"`
	ComponentID     string            `json:"componentid"`
	TaskToComponent map[string]string `json:"task->component"`

	// Raw is the full context object as sent by the parent.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw context alongside the decoded fields.
func (tc *TopologyContext) UnmarshalJSON(b []byte) error {
	type plain TopologyContext
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*tc = TopologyContext(p)
	tc.Raw = append(json.RawMessage(nil), b...)
	return nil
}

// ComponentTasks returns the sorted task ids running the named component.
func (tc TopologyContext) ComponentTasks(component string) []int {
	var tasks []int
	for task, comp := range tc.TaskToComponent {
		if comp != component {
			continue
		}
		id, err := strconv.Atoi(task)
		if err != nil {
			continue
		}
		tasks = append(tasks, id)
	}
	sort.Ints(tasks)
	return tasks
}

type pidMessage struct {
	PID int `json:"pid"`
}

type emitMessage struct {
	Command string    `json:"command"`
	Stream  string    `json:"stream,omitempty"`
	ID      MessageID `json:"id,omitempty"`
	Task    *int      `json:"task,omitempty"`
	Anchors []string  `json:"anchors,omitempty"`
	Tuple   *Tuple    `json:"tuple"`
}

type idMessage struct {
	Command string    `json:"command"`
	ID      MessageID `json:"id"`
}

type syncMessage struct {
	Command string `json:"command"`
}

type logMessage struct {
	Command string `json:"command"`
	Msg     string `json:"msg"`
}
