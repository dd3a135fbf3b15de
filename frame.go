package multilang

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/joelanford/multilang/errors"
)

// FrameSentinel is the line that terminates every frame on the wire.
const FrameSentinel = "end"

// Codec reads and writes sentinel-terminated JSON frames. Writes are
// serialized so a Codec can be shared by goroutines that emit, but the
// protocol itself has no correlation ids: replies are matched by order only.
type Codec struct {
	r *bufio.Reader

	mu sync.Mutex
	w  *bufio.Writer

	metrics    *Metrics
	onBadFrame func(body string)
}

// NewCodec creates a codec reading frames from r and writing frames to w.
func NewCodec(r io.Reader, w io.Writer) *Codec {
	return &Codec{
		r: bufio.NewReader(r),
		w: bufio.NewWriter(w),
	}
}

// ReadFrame reads lines until the sentinel line and returns the lines before
// it, newline joined, as raw JSON.
//
// A body that is not valid JSON is reported to the parent with a log message
// and ReadFrame returns a nil frame and no error. io.EOF is returned when the
// stream ends before a sentinel is seen.
func (c *Codec) ReadFrame() (json.RawMessage, error) {
	var body strings.Builder
	for {
		line, err := c.r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return nil, err
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if line == FrameSentinel {
			break
		}
		if err == io.EOF {
			return nil, io.EOF
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}

	c.metrics.frameRead()

	raw := []byte(body.String())
	if !json.Valid(raw) {
		c.metrics.malformedFrame()
		if c.onBadFrame != nil {
			c.onBadFrame(body.String())
		}
		if err := c.WriteFrame(logMessage{
			Command: CommandLog,
			Msg:     "Failed to parse JSON " + body.String(),
		}); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return json.RawMessage(bytes.TrimSpace(raw)), nil
}

// WriteFrame encodes v as compact JSON followed by the sentinel line and
// flushes immediately. The peer blocks until it sees the sentinel.
func (c *Codec) WriteFrame(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.WrapInvalid(err, "Codec", "WriteFrame", "encode frame")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.w.Write(b); err != nil {
		return err
	}
	if _, err := c.w.WriteString("\n" + FrameSentinel + "\n"); err != nil {
		return err
	}
	if err := c.w.Flush(); err != nil {
		return err
	}
	c.metrics.frameWritten()
	return nil
}
