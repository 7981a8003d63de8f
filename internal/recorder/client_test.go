package recorder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/replay-control/internal/recorder"
	"github.com/atomicstack/replay-control/internal/testutil"
)

func newClient(t *testing.T, recs ...recorder.Recording) (*recorder.Client, *testutil.Service) {
	t.Helper()
	svc := testutil.NewService(t, recs...)
	return recorder.NewClient(svc.URL(), 2*time.Second), svc
}

func TestStatusDecodesFlags(t *testing.T) {
	c, svc := newClient(t)
	svc.SetState(true, true)

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recorder.Status{IsRecording: true, IsPaused: true}, st)
}

func TestListAcceptsObjectsAndBareNames(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/list_recordings", testutil.Override{
		Body: `{"status":"success","recordings":["b.json",{"name":"a.json","category":"demo"}]}`,
	})

	recs, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []recorder.Recording{{Name: "b.json"}, {Name: "a.json", Category: "demo"}}, recs)
}

func TestListServiceErrorKeepsMessage(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/list_recordings", testutil.Override{Body: map[string]string{"status": "error", "message": "disk gone"}})

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	assert.Contains(t, err.Error(), "disk gone")
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/get_recording_status", testutil.Override{Body: "{not json"})

	_, err := c.Status(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsTransport(err))
}

func TestNon2xxIsServiceError(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/start_recording", testutil.Override{HTTPStatus: http.StatusInternalServerError, Body: map[string]string{"message": "boom"}})

	_, err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	var e *recorder.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.Equal(t, "boom", e.Message)
	assert.Equal(t, 1, svc.CallCount("/start_recording"), "no retry expected")
}

func TestNon2xxWithoutMessageNamesTheStatus(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/stop_recording", testutil.Override{HTTPStatus: http.StatusServiceUnavailable, Body: ""})

	_, err := c.Stop(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	assert.Contains(t, err.Error(), "503")
}

func TestReplyWithoutStatusIsSuccess(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/start_recording", testutil.Override{Body: map[string]string{"message": "Recording started"}})
	svc.Override("/list_recordings", testutil.Override{Body: `{"recordings":[{"name":"a"}]}`})

	reply, err := c.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Recording started", reply.Message)

	recs, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "a", recs[0].Name)
}

func TestExplicitErrorStatusIsServiceError(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/toggle_pause", testutil.Override{Body: map[string]string{"status": "error", "message": "not recording"}})

	_, err := c.TogglePause(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	assert.Contains(t, err.Error(), "not recording")
}

func TestUnreachableServiceIsTransportError(t *testing.T) {
	c := recorder.NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := c.Status(context.Background())
	require.Error(t, err)
	assert.True(t, recorder.IsTransport(err))
}

func TestSessionLifecycle(t *testing.T) {
	c, svc := newClient(t)
	ctx := context.Background()

	_, err := c.Start(ctx)
	require.NoError(t, err)

	pause, err := c.TogglePause(ctx)
	require.NoError(t, err)
	assert.True(t, pause.IsPaused)

	pause, err = c.TogglePause(ctx)
	require.NoError(t, err)
	assert.False(t, pause.IsPaused)

	stop, err := c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, "recording_001.json", stop.File)
	assert.Len(t, svc.Recordings(), 1)
}

func TestPauseWithoutSessionIsServiceError(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.TogglePause(context.Background())
	assert.True(t, recorder.IsService(err))
}

func TestReplayValidatesBeforeNetwork(t *testing.T) {
	c, svc := newClient(t, recorder.Recording{Name: "a.json"})
	ctx := context.Background()

	cases := []recorder.ReplayRequest{
		{Recording: "a.json", LoopCount: 0, Speed: 1},
		{Recording: "a.json", LoopCount: 11, Speed: 1},
		{Recording: "a.json", LoopCount: 1, Speed: 0},
		{Recording: "a.json", LoopCount: 1, Speed: -2},
		{Recording: "", LoopCount: 1, Speed: 1},
	}
	for _, req := range cases {
		_, err := c.Replay(ctx, req)
		assert.Truef(t, recorder.IsValidation(err), "expected validation error for %+v, got %v", req, err)
	}
	assert.Zero(t, svc.CallCount("/replay"))

	_, err := c.Replay(ctx, recorder.ReplayRequest{Recording: "a.json", Precision: true, LoopCount: 10, Speed: 0.5})
	require.NoError(t, err)

	calls := svc.Calls()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(calls[len(calls)-1].Body), &body))
	assert.Equal(t, "a.json", body["recording"])
	assert.Equal(t, true, body["precision"])
	assert.EqualValues(t, 10, body["loop_count"])
	assert.EqualValues(t, 0.5, body["speed"])
}

func TestDeletePartialFailureReturnsReplyAndServiceError(t *testing.T) {
	c, svc := newClient(t, recorder.Recording{Name: "a.json"})

	reply, err := c.Delete(context.Background(), []string{"a.json", "missing.json"})
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	assert.Equal(t, recorder.StatusWarning, reply.Status)
	assert.Equal(t, []string{"a.json"}, reply.Deleted)
	assert.Equal(t, []string{"missing.json"}, reply.Failed)
	assert.Empty(t, svc.Recordings())
}

func TestBatchOperationsRejectEmptySelection(t *testing.T) {
	c, svc := newClient(t)
	ctx := context.Background()

	_, err := c.Delete(ctx, nil)
	assert.True(t, recorder.IsValidation(err))
	_, err = c.Export(ctx, nil)
	assert.True(t, recorder.IsValidation(err))
	_, err = c.SetCategory(ctx, nil, "x")
	assert.True(t, recorder.IsValidation(err))
	_, err = c.SetCategory(ctx, []string{"a.json"}, "  ")
	assert.True(t, recorder.IsValidation(err))
	assert.Empty(t, svc.Calls())
}

func TestExportReturnsArtifact(t *testing.T) {
	c, _ := newClient(t, recorder.Recording{Name: "a.json"})

	data, err := c.Export(context.Background(), []string{"a.json"})
	require.NoError(t, err)
	var artifact map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &artifact))
	assert.Contains(t, artifact, "a.json")
}

func TestExportErrorEnvelope(t *testing.T) {
	c, svc := newClient(t)
	svc.Override("/export_recordings", testutil.Override{Body: map[string]string{"status": "error", "message": "nope"}})

	_, err := c.Export(context.Background(), []string{"a.json"})
	require.Error(t, err)
	assert.True(t, recorder.IsService(err))
	assert.Contains(t, err.Error(), "nope")
}

func TestImportUploadsMultipartFile(t *testing.T) {
	c, svc := newClient(t)

	_, err := c.Import(context.Background(), "/tmp/export.json", strings.NewReader(`{"x.json":[]}`))
	require.NoError(t, err)

	calls := svc.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "export.json", calls[0].File)
	assert.Equal(t, []recorder.Recording{{Name: "x.json"}}, svc.Recordings())
}

func TestImportRejectsNonJSON(t *testing.T) {
	c, svc := newClient(t)
	_, err := c.Import(context.Background(), "notes.txt", strings.NewReader("x"))
	assert.True(t, recorder.IsValidation(err))
	_, err = c.Import(context.Background(), "", strings.NewReader("x"))
	assert.True(t, recorder.IsValidation(err))
	assert.Empty(t, svc.Calls())
}

func TestSetCategory(t *testing.T) {
	c, svc := newClient(t, recorder.Recording{Name: "a.json"}, recorder.Recording{Name: "b.json"})

	_, err := c.SetCategory(context.Background(), []string{"b.json"}, " demos ")
	require.NoError(t, err)
	assert.Equal(t, []recorder.Recording{{Name: "a.json"}, {Name: "b.json", Category: "demos"}}, svc.Recordings())
}

func TestRequestsCarryRequestID(t *testing.T) {
	seen := make(chan string, 1)
	srv := testutil.NewService(t)
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen <- r.Header.Get("X-Request-ID")
		return http.DefaultTransport.RoundTrip(r)
	})}
	c := recorder.NewClientWithOptions(srv.URL(), recorder.Options{HTTPClient: hc})

	_, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, <-seen)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
