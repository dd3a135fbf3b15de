package operators

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joelanford/multilang"
)

const setupFrame = `{"conf":{},"context":{"taskid":1,"componentid":"test"},"pidDir":""}`

func frames(bodies ...string) string {
	var b strings.Builder
	for _, body := range bodies {
		b.WriteString(body)
		b.WriteString("\nend\n")
	}
	return b.String()
}

func outFrames(t *testing.T, out *bytes.Buffer) []string {
	t.Helper()
	s := out.String()
	if s == "" {
		return nil
	}
	require.True(t, strings.HasSuffix(s, "\nend\n"), "output must end with a sentinel: %q", s)
	return strings.Split(strings.TrimSuffix(s, "\nend\n"), "\nend\n")
}

type nopPID struct{}

func (nopPID) PID() int                          { return 7 }
func (nopPID) Record(dir string, pid int) error { return nil }

func options(input string, out *bytes.Buffer) []multilang.Option {
	return []multilang.Option{
		multilang.WithIO(strings.NewReader(input), out),
		multilang.WithPIDRecorder(nopPID{}),
		multilang.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func runBolt(t *testing.T, b multilang.BoltProcessor, input string) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, multilang.RunBolt(context.Background(), b, options(input, &out)...))
	return outFrames(t, &out)
}

func runSpout(t *testing.T, s multilang.SpoutProcessor, input string) []string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, multilang.RunSpout(context.Background(), s, options(input, &out)...))
	return outFrames(t, &out)
}
