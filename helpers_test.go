package multilang

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// frames joins raw JSON bodies into wire frames.
func frames(bodies ...string) string {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(body)
		b.WriteString("\nend\n")
	}
	return b.String()
}

// outFrames splits written wire output into frame bodies.
func outFrames(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	s := out.String()
	if s == "" {
		return nil
	}
	require.True(t, strings.HasSuffix(s, "\nend\n"), "output must end with a sentinel: %q", s)
	return strings.Split(strings.TrimSuffix(s, "\nend\n"), "\nend\n")
}

const setupFrame = `{"conf":{},"context":{},"pidDir":"/tmp"}`

type fixedPID struct {
	pid      int
	recorded []string
}

func (f *fixedPID) PID() int { return f.pid }

func (f *fixedPID) Record(dir string, pid int) error {
	f.recorded = append(f.recorded, dir)
	return nil
}

type testSpout struct {
	oc    *OperatorContext
	next  func(ctx context.Context, oc *OperatorContext) error
	calls int
}

func (s *testSpout) Setup(ctx context.Context, oc *OperatorContext) error {
	s.oc = oc
	return nil
}

func (s *testSpout) Next(ctx context.Context) error {
	s.calls++
	if s.next == nil {
		return nil
	}
	return s.next(ctx, s.oc)
}

type testBolt struct {
	oc      *OperatorContext
	process func(ctx context.Context, oc *OperatorContext, t *Tuple) error
	seen    []*Tuple
}

func (b *testBolt) Setup(ctx context.Context, oc *OperatorContext) error {
	b.oc = oc
	return nil
}

func (b *testBolt) Process(ctx context.Context, t *Tuple) error {
	b.seen = append(b.seen, t)
	if b.process == nil {
		return nil
	}
	return b.process(ctx, b.oc, t)
}

func runSpout(t *testing.T, s SpoutProcessor, input string, opts ...Option) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out), WithPIDRecorder(&fixedPID{pid: 1234})}, opts...)
	err := RunSpout(context.Background(), s, opts...)
	return outFrames(t, &out), err
}

func runBolt(t *testing.T, b BoltProcessor, input string, opts ...Option) ([]string, error) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out), WithPIDRecorder(&fixedPID{pid: 1234})}, opts...)
	err := RunBolt(context.Background(), b, opts...)
	return outFrames(t, &out), err
}
