package multilang

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joelanford/multilang/errors"
)

type sliceFrames struct {
	frames []json.RawMessage
}

func (s *sliceFrames) ReadFrame() (json.RawMessage, error) {
	if len(s.frames) == 0 {
		return nil, io.EOF
	}
	raw := s.frames[0]
	s.frames = s.frames[1:]
	return raw, nil
}

func TestClassify(t *testing.T) {
	assert.Equal(t, kindTaskIDs, classify(json.RawMessage(`[1,2]`)))
	assert.Equal(t, kindTaskIDs, classify(json.RawMessage(" \n[]")))
	assert.Equal(t, kindCommand, classify(json.RawMessage(`{"command":"next"}`)))
	assert.Equal(t, kindCommand, classify(json.RawMessage(`"text"`)))
	assert.Equal(t, kindCommand, classify(nil))
}

func TestInboxSeesThroughOtherKind(t *testing.T) {
	in := NewInbox(&sliceFrames{frames: []json.RawMessage{
		json.RawMessage(`{"command":"next"}`),
		json.RawMessage(`{"command":"ack","id":"1"}`),
		json.RawMessage(`[4]`),
		json.RawMessage(`[5,6]`),
		json.RawMessage(`{"command":"fail","id":"2"}`),
	}})

	ids, err := in.NextTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{4}, ids)

	taskIDs, commands := in.Pending()
	assert.Equal(t, 0, taskIDs)
	assert.Equal(t, 2, commands)

	cmd, err := in.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "next", cmd.Command)

	cmd, err = in.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "ack", cmd.Command)
	assert.Equal(t, MessageID("1"), cmd.ID)

	cmd, err = in.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, "fail", cmd.Command)

	taskIDs, _ = in.Pending()
	assert.Equal(t, 1, taskIDs)

	ids, err = in.NextTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, ids)

	_, err = in.NextCommand()
	assert.ErrorIs(t, err, io.EOF)
}

func TestInboxOrderingUnderRandomInterleaving(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		r := rand.New(rand.NewPCG(seed, seed))

		var (
			stream   []json.RawMessage
			commands []string
			taskIDs  [][]int
		)
		n := 1 + r.IntN(40)
		for i := 0; i < n; i++ {
			if r.IntN(2) == 0 {
				id := fmt.Sprintf("c%d", i)
				commands = append(commands, id)
				stream = append(stream, json.RawMessage(fmt.Sprintf(`{"command":"next","id":%q}`, id)))
			} else {
				ids := []int{i, i + 1}
				taskIDs = append(taskIDs, ids)
				b, _ := json.Marshal(ids)
				stream = append(stream, b)
			}
		}

		in := NewInbox(&sliceFrames{frames: stream})
		var gotCommands []string
		var gotTaskIDs [][]int
		for len(gotCommands) < len(commands) || len(gotTaskIDs) < len(taskIDs) {
			wantCommand := len(gotTaskIDs) == len(taskIDs) ||
				(len(gotCommands) < len(commands) && r.IntN(2) == 0)
			if wantCommand {
				cmd, err := in.NextCommand()
				require.NoError(t, err)
				gotCommands = append(gotCommands, string(cmd.ID))
			} else {
				ids, err := in.NextTaskIDs()
				require.NoError(t, err)
				gotTaskIDs = append(gotTaskIDs, ids)
			}
		}

		assert.Equal(t, commands, gotCommands, "seed %d", seed)
		assert.Equal(t, taskIDs, gotTaskIDs, "seed %d", seed)
	}
}

func TestInboxEmptyFrameIsCommand(t *testing.T) {
	in := NewInbox(&sliceFrames{frames: []json.RawMessage{nil, json.RawMessage(`[1]`)}})

	ids, err := in.NextTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	cmd, err := in.NextCommand()
	require.NoError(t, err)
	assert.True(t, cmd.Empty())
	assert.Equal(t, "", cmd.Command)
}

func TestInboxInvalidTaskIDs(t *testing.T) {
	in := NewInbox(&sliceFrames{frames: []json.RawMessage{json.RawMessage(`["a"]`)}})

	_, err := in.NextTaskIDs()
	assert.ErrorIs(t, err, errors.ErrInvalidTaskIDs)
	assert.True(t, errors.IsInvalid(err))
}

func TestInboxUndecodableCommand(t *testing.T) {
	in := NewInbox(&sliceFrames{frames: []json.RawMessage{json.RawMessage(`{"command":5}`)}})

	cmd, err := in.NextCommand()
	assert.True(t, errors.IsInvalid(err))
	require.NotNil(t, cmd)
	assert.Equal(t, "", cmd.Command)
}

func TestInboxOverCodec(t *testing.T) {
	c := NewCodec(strings.NewReader(frames(`[1]`, `{"command":"next"}`, `[]`)), io.Discard)
	in := NewInbox(c)

	cmd, err := in.NextCommand()
	require.NoError(t, err)
	assert.Equal(t, CommandNext, cmd.Command)

	ids, err := in.NextTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)

	ids, err = in.NextTaskIDs()
	require.NoError(t, err)
	assert.Equal(t, []int{}, ids)
}
