package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbstress/internal/runner"
	"dbstress/internal/workloads/users"
)

func sampleSummary() *runner.Summary {
	return &runner.Summary{
		RunID:          "69d9cbb0-0000-4000-8000-000000000000",
		Workers:        4,
		TotalSucceeded: 9998,
		TotalFailed:    2,
		Elapsed:        3 * time.Second,
		Throughput:     3332.6,
		MeanLatency:    800 * time.Microsecond,
		P95Latency:     2 * time.Millisecond,
		P99Latency:     5 * time.Millisecond,
		FatalErrors: []runner.WorkerError{
			{Worker: 2, Err: "disk I/O error"},
		},
	}
}

func TestRenderDistinguishesOutcomeClasses(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "succeeded:  9998")
	assert.Contains(t, out, "abandoned:  2")
	assert.Contains(t, out, "worker 2: disk I/O error")
	assert.Contains(t, out, "throughput: 3332.6")
}

func TestRenderOmitsLatencyWhenNothingSucceeded(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, &runner.Summary{RunID: "x", Workers: 1})
	assert.NotContains(t, buf.String(), "latency:")
}

func TestRenderJSONRoundtrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, sampleSummary()))

	var decoded runner.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, int64(9998), decoded.TotalSucceeded)
	assert.Equal(t, int64(2), decoded.TotalFailed)
	require.Len(t, decoded.FatalErrors, 1)
	assert.Equal(t, 2, decoded.FatalErrors[0].Worker)
}

func TestRenderUsers(t *testing.T) {
	var buf bytes.Buffer
	RenderUsers(&buf, []users.User{
		{ID: 0, Name: "user-0000000000"},
		{ID: 1, Name: "user-0000000001"},
	})
	out := buf.String()

	assert.Contains(t, out, "id: 0 name: user-0000000000")
	assert.Contains(t, out, "2 users")
}
