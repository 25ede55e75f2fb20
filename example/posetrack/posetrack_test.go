package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-posetrack"
	"github.com/tidwall/gjson"
)

// recordedBody returns a JSON array of a body buffer with all keypoints
// spread over a small area around cx, cy
func recordedBody(cx, cy float64) string {
	vals := make([]string, 0, 51)
	for i := 0; i < 17; i++ {
		vals = append(vals,
			fmt.Sprintf("%.4f", cy+float64(i)*0.01),
			fmt.Sprintf("%.4f", cx+float64(i%3)*0.01),
			"0.8",
		)
	}
	return "[" + strings.Join(vals, ",") + "]"
}

func TestReplayRun(t *testing.T) {

	logger, _ := test.NewNullLogger()

	var in bytes.Buffer
	for i := 0; i < 4; i++ {
		fmt.Fprintf(&in, `{"ts":%d,"width":640,"height":480,"bodies":[%s]}`+"\n", i*33, recordedBody(0.5, 0.3))
	}
	in.WriteString("not json\n")

	r := NewReplay(posetrack.DefaultParams(), 2, logger)

	var out bytes.Buffer
	require.NoError(t, r.Run(context.Background(), &in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")

	// frames 1 and 3 are admitted, the invalid line is the 5th and admitted
	// but skipped
	require.Len(t, lines, 2)

	for _, line := range lines {
		doc := gjson.Parse(line)
		assert.Equal(t, int64(1), doc.Get("result.tracks.0.id").Int())
		assert.Equal(t, int64(1), doc.Get("result.focus").Int())
		assert.Equal(t, "No lift type selected", doc.Get("result.feedback.liftFeedback.0").String())
		assert.Equal(t, r.pipeline.SessionID().String(), doc.Get("session").String())
		assert.Equal(t, int64(640), doc.Get("width").Int())
	}

	assert.Equal(t, int64(66), gjson.Get(lines[1], "ts").Int())
	assert.Equal(t, int64(0), gjson.Get(lines[0], "result.tracks.0.lifetimeMs").Int())
	assert.Equal(t, int64(66), gjson.Get(lines[1], "result.tracks.0.lifetimeMs").Int())
	assert.Equal(t, int64(2), gjson.Get(lines[1], "result.tracks.0.hits").Int())
}

func TestReplayParseFrame(t *testing.T) {

	logger, _ := test.NewNullLogger()
	r := NewReplay(posetrack.DefaultParams(), 1, logger)

	f, err := r.parseFrame([]byte(`{"ts":1000,"width":320,"height":240,"bodies":[[0.1,0.2,0.3],[]]}`))
	require.NoError(t, err)

	assert.Equal(t, 320.0, f.Width)
	assert.Equal(t, 240.0, f.Height)
	require.Len(t, f.Bodies, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, f.Bodies[0])
	assert.Empty(t, f.Bodies[1])
	assert.Equal(t, r.start.Add(1e9), f.Timestamp)

	_, err = r.parseFrame([]byte(`{"ts":`))
	assert.Error(t, err)
}

// failingWriter rejects every write
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestReplayRunWriteError(t *testing.T) {

	logger, _ := test.NewNullLogger()

	in := strings.NewReader(fmt.Sprintf(`{"ts":0,"width":640,"height":480,"bodies":[%s]}`+"\n", recordedBody(0.5, 0.3)))
	r := NewReplay(posetrack.DefaultParams(), 1, logger)

	err := r.Run(context.Background(), in, failingWriter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
	assert.Contains(t, err.Error(), "failed to write results")
}
