package Adhoc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	path string
	body map[string]any
}

func newRegistry(t *testing.T, status int) (*Reporter, *[]received) {
	var mu sync.Mutex
	var got []received
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		got = append(got, received{path: r.URL.Path, body: body})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"id":"x","success":true}`))
	}))
	t.Cleanup(srv.Close)

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	cfg := RegServerConfig{}
	cfg.SetAddress(host, port)
	r := NewReporter(cfg)
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	return r, &got
}

func TestReporter(t *testing.T) {
	r, got := newRegistry(t, http.StatusOK)
	ctx := context.Background()

	assert.NotEmpty(t, r.RunID)
	assert.True(t, r.Start(ctx, "/tmp/airsim_drone", 12, []string{"Character"}))
	r.FrameCaptured(0, 4)
	assert.True(t, r.Finish(ctx, 1, errors.New("pose rejected")))

	require.Len(t, *got, 3)
	start := (*got)[0]
	assert.Equal(t, "/api/runs", start.path)
	assert.Equal(t, r.RunID, start.body["id"])
	assert.Equal(t, "/tmp/airsim_drone", start.body["outputDir"])
	assert.EqualValues(t, 12, start.body["iterations"])
	assert.EqualValues(t, 1700000000, start.body["timestamp"])

	frame := (*got)[1]
	assert.Equal(t, "/api/runs/"+r.RunID+"/frames", frame.path)
	assert.EqualValues(t, 4, frame.body["detections"])

	finish := (*got)[2]
	assert.Equal(t, "/api/runs/"+r.RunID+"/finish", finish.path)
	assert.Equal(t, false, finish.body["success"])
	assert.Equal(t, "pose rejected", finish.body["error"])
}

func TestReporterFailuresAreSwallowed(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		r, got := newRegistry(t, http.StatusInternalServerError)
		assert.False(t, r.Start(context.Background(), "/tmp", 1, nil))
		assert.Len(t, *got, 1)
	})
	t.Run("unreachable", func(t *testing.T) {
		r := NewReporter(RegServerConfig{Addr: "127.0.0.1", Port: 1})
		assert.False(t, r.Finish(context.Background(), 0, nil))
	})
}

func TestReporterFramesFollowRunContext(t *testing.T) {
	r, got := newRegistry(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())

	require.True(t, r.Start(ctx, "/tmp/airsim_drone", 12, nil))
	r.FrameCaptured(0, 1)
	cancel()
	r.FrameCaptured(1, 1)

	require.Len(t, *got, 2)
	assert.Equal(t, "/api/runs/"+r.RunID+"/frames", (*got)[1].path)
	assert.EqualValues(t, 0, (*got)[1].body["iteration"])
}
