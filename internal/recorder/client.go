package recorder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/atomicstack/replay-control/internal/logging"
)

const (
	defaultTimeout        = 10 * time.Second
	defaultRateLimit      = 20
	defaultRateLimitBurst = 10
	maxBodyBytes          = 64 << 20
)

// Options configures the Recording Service client.
type Options struct {
	Timeout        time.Duration
	RateLimit      rate.Limit
	RateLimitBurst int
	HTTPClient     *http.Client
}

// Client talks to the Recording Service over HTTP. Requests are never
// retried; every failure is returned to the caller once.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client with default options.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithOptions(baseURL, Options{Timeout: timeout})
}

// NewClientWithOptions creates a client with explicit options.
func NewClientWithOptions(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		BaseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTPClient: hc,
		limiter:    rate.NewLimiter(opts.RateLimit, opts.RateLimitBurst),
	}
}

// Status returns the raw recording flags.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	if err := c.getJSON(ctx, "status", "/get_recording_status", &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// List fetches the full catalog.
func (c *Client) List(ctx context.Context) ([]Recording, error) {
	var reply listReply
	if err := c.getJSON(ctx, "list", "/list_recordings", &reply); err != nil {
		return nil, err
	}
	if err := checkReply("list", reply.Reply); err != nil {
		return nil, err
	}
	return reply.Recordings, nil
}

// Start begins a new recording session.
func (c *Client) Start(ctx context.Context) (Reply, error) {
	var reply Reply
	if err := c.postJSON(ctx, "start", "/start_recording", nil, &reply); err != nil {
		return Reply{}, err
	}
	return reply, checkReply("start", reply)
}

// Stop ends the active session.
func (c *Client) Stop(ctx context.Context) (StopReply, error) {
	var reply StopReply
	if err := c.postJSON(ctx, "stop", "/stop_recording", nil, &reply); err != nil {
		return StopReply{}, err
	}
	return reply, checkReply("stop", reply.Reply)
}

// TogglePause pauses a running session or resumes a paused one.
func (c *Client) TogglePause(ctx context.Context) (PauseReply, error) {
	var reply PauseReply
	if err := c.postJSON(ctx, "pause", "/toggle_pause", nil, &reply); err != nil {
		return PauseReply{}, err
	}
	return reply, checkReply("pause", reply.Reply)
}

// Replay validates req and asks the service to replay it.
func (c *Client) Replay(ctx context.Context, req ReplayRequest) (Reply, error) {
	if err := req.Validate(); err != nil {
		return Reply{}, err
	}
	var reply Reply
	if err := c.postJSON(ctx, "replay", "/replay", req, &reply); err != nil {
		return Reply{}, err
	}
	return reply, checkReply("replay", reply)
}

// Delete removes the named recordings. A partial failure comes back as a
// service error alongside the decoded reply.
func (c *Client) Delete(ctx context.Context, names []string) (DeleteReply, error) {
	if err := requireNames("delete", names); err != nil {
		return DeleteReply{}, err
	}
	var reply DeleteReply
	if err := c.postJSON(ctx, "delete", "/delete_recordings", namesRequest{Recordings: names}, &reply); err != nil {
		return DeleteReply{}, err
	}
	return reply, checkReply("delete", reply.Reply)
}

// Export returns the service-built export artifact for names.
func (c *Client) Export(ctx context.Context, names []string) ([]byte, error) {
	if err := requireNames("export", names); err != nil {
		return nil, err
	}
	body, err := json.Marshal(namesRequest{Recordings: names})
	if err != nil {
		return nil, Transport("export", err)
	}
	data, _, err := c.do(ctx, "export", http.MethodPost, "/export_recordings", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	if msg, failed := exportFailure(data); failed {
		return nil, Service("export", msg)
	}
	return data, nil
}

// Import uploads a single archive as the multipart field "file".
func (c *Client) Import(ctx context.Context, filename string, r io.Reader) (Reply, error) {
	base := filepath.Base(filename)
	if strings.TrimSpace(filename) == "" || base == "." {
		return Reply{}, Validation("import", "no file selected")
	}
	if !strings.EqualFold(filepath.Ext(base), ".json") {
		return Reply{}, Validation("import", "import file must be a .json export")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", base)
	if err != nil {
		return Reply{}, Transport("import", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return Reply{}, Transport("import", err)
	}
	if err := mw.Close(); err != nil {
		return Reply{}, Transport("import", err)
	}
	data, code, err := c.do(ctx, "import", http.MethodPost, "/import_recordings", &buf, mw.FormDataContentType())
	if err != nil {
		return Reply{}, err
	}
	var reply Reply
	if err := decode("import", code, data, &reply); err != nil {
		return Reply{}, err
	}
	return reply, checkReply("import", reply)
}

// SetCategory assigns category to every named recording.
func (c *Client) SetCategory(ctx context.Context, names []string, category string) (Reply, error) {
	if err := requireNames("categorize", names); err != nil {
		return Reply{}, err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return Reply{}, Validation("categorize", "category must not be empty")
	}
	var reply Reply
	if err := c.postJSON(ctx, "categorize", "/set_category", categoryRequest{Recordings: names, Category: category}, &reply); err != nil {
		return Reply{}, err
	}
	return reply, checkReply("categorize", reply)
}

func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	data, code, err := c.do(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return decode(op, code, data, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return Transport(op, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	data, code, err := c.do(ctx, op, http.MethodPost, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(op, code, data, out)
}

func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) (data []byte, code int, err error) {
	started := time.Now()
	defer func() {
		observeRequest(op, code, started, err)
		if err != nil {
			log := logging.Component("recorder")
			log.Debug().Err(err).Str("op", op).Int("code", code).Msg("request failed")
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, Transport(op, err)
	}
	endpoint, err := url.JoinPath(c.BaseURL, path)
	if err != nil {
		return nil, 0, Transport(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, Transport(op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, Transport(op, err)
	}
	defer resp.Body.Close()

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, Transport(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := replyMessage(data)
		if msg == "" {
			msg = "unexpected status " + resp.Status
		}
		e := Service(op, msg)
		e.Status = resp.StatusCode
		return nil, resp.StatusCode, e
	}
	return data, resp.StatusCode, nil
}

func decode(op string, code int, data []byte, out interface{}) error {
	if err := json.Unmarshal(data, out); err != nil {
		e := Transport(op, fmt.Errorf("decode response: %w", err))
		e.Status = code
		return e
	}
	return nil
}

// checkReply accepts a missing status as success; only an explicit non-success
// status is a rejection.
func checkReply(op string, r Reply) error {
	if r.Status == "" || r.Status == StatusSuccess {
		return nil
	}
	return Service(op, r.Message)
}

func requireNames(op string, names []string) error {
	if len(names) == 0 {
		return Validation(op, "no recordings selected")
	}
	return nil
}

func replyMessage(data []byte) string {
	var r Reply
	if json.Unmarshal(data, &r) != nil {
		return ""
	}
	return r.Message
}

// exportFailure detects the JSON error envelope the service sends in place
// of an artifact.
func exportFailure(data []byte) (string, bool) {
	var envelope map[string]json.RawMessage
	if json.Unmarshal(data, &envelope) != nil {
		return "", false
	}
	raw, ok := envelope["status"]
	if !ok {
		return "", false
	}
	var status string
	if json.Unmarshal(raw, &status) != nil || status != StatusError {
		return "", false
	}
	return replyMessage(data), true
}
