package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/atomicstack/replay-control/internal/recorder"
)

// Call records one request received by the fake service.
type Call struct {
	Method string
	Path   string
	Body   string
	// File is the uploaded file name for multipart imports.
	File string
}

// Override replaces the handler for one route with a canned reply.
type Override struct {
	HTTPStatus int
	Body       interface{}
}

// Service is an in-memory Recording Service served over httptest.
type Service struct {
	mu         sync.Mutex
	recording  bool
	paused     bool
	recordings []recorder.Recording
	calls      []Call
	overrides  map[string]Override
	nextFile   int

	server *httptest.Server
}

// NewService starts a fake Recording Service; it is closed on test cleanup.
func NewService(t *testing.T, recordings ...recorder.Recording) *Service {
	t.Helper()
	s := &Service{
		recordings: append([]recorder.Recording(nil), recordings...),
		overrides:  make(map[string]Override),
	}
	s.server = httptest.NewServer(s.routes())
	t.Cleanup(s.server.Close)
	return s
}

// URL is the base URL to hand to recorder.NewClient.
func (s *Service) URL() string { return s.server.URL }

func (s *Service) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/get_recording_status", s.handleStatus)
	r.Get("/list_recordings", s.handleList)
	r.Post("/start_recording", s.handleStart)
	r.Post("/stop_recording", s.handleStop)
	r.Post("/toggle_pause", s.handlePause)
	r.Post("/replay", s.handleReplay)
	r.Post("/delete_recordings", s.handleDelete)
	r.Post("/export_recordings", s.handleExport)
	r.Post("/import_recordings", s.handleImport)
	r.Post("/set_category", s.handleCategory)
	return r
}

// SetState forces the raw recording flags.
func (s *Service) SetState(recording, paused bool) {
	s.mu.Lock()
	s.recording, s.paused = recording, paused
	s.mu.Unlock()
}

// SetRecordings replaces the stored catalog.
func (s *Service) SetRecordings(recs ...recorder.Recording) {
	s.mu.Lock()
	s.recordings = append([]recorder.Recording(nil), recs...)
	s.mu.Unlock()
}

// Recordings returns a copy of the stored catalog.
func (s *Service) Recordings() []recorder.Recording {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorder.Recording(nil), s.recordings...)
}

// Override makes every request to path answer with the given reply.
func (s *Service) Override(path string, o Override) {
	s.mu.Lock()
	s.overrides[path] = o
	s.mu.Unlock()
}

// Calls returns the requests received so far.
func (s *Service) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts requests for path.
func (s *Service) CallCount(path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Path == path {
			n++
		}
	}
	return n
}

func (s *Service) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{Method: r.Method, Path: r.URL.Path}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if f, hdr, err := r.FormFile("file"); err == nil {
				call.File = hdr.Filename
				data, _ := io.ReadAll(f)
				f.Close()
				call.Body = string(data)
			}
		} else if r.Body != nil {
			data, _ := io.ReadAll(r.Body)
			call.Body = string(data)
			r.Body = io.NopCloser(strings.NewReader(call.Body))
		}
		s.mu.Lock()
		s.calls = append(s.calls, call)
		o, overridden := s.overrides[r.URL.Path]
		s.mu.Unlock()
		if overridden {
			code := o.HTTPStatus
			if code == 0 {
				code = http.StatusOK
			}
			if raw, ok := o.Body.(string); ok {
				w.WriteHeader(code)
				_, _ = io.WriteString(w, raw)
				return
			}
			writeJSON(w, code, o.Body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	st := recorder.Status{IsRecording: s.recording, IsPaused: s.paused}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, st)
}

func (s *Service) handleList(w http.ResponseWriter, _ *http.Request) {
	recs := s.Recordings()
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "recordings": recs})
}

func (s *Service) handleStart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recording {
		writeReply(w, "error", "Already recording")
		return
	}
	s.recording, s.paused = true, false
	writeReply(w, "success", "Recording started")
}

func (s *Service) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		writeReply(w, "error", "No recording in progress")
		return
	}
	s.recording, s.paused = false, false
	s.nextFile++
	name := fmt.Sprintf("recording_%03d.json", s.nextFile)
	s.recordings = append(s.recordings, recorder.Recording{Name: name})
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "message": "Recording stopped", "file": name})
}

func (s *Service) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		writeReply(w, "error", "No recording in progress")
		return
	}
	s.paused = !s.paused
	msg := "Recording resumed"
	if s.paused {
		msg = "Recording paused"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "message": msg, "is_paused": s.paused})
}

func (s *Service) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req recorder.ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	if req.LoopCount < 1 || req.LoopCount > 10 {
		writeReply(w, "error", "Loop count must be between 1 and 10")
		return
	}
	if !s.has(req.Recording) {
		writeReply(w, "error", "Recording not found")
		return
	}
	writeReply(w, "success", "Replay completed")
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recordings []string `json:"recordings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	s.mu.Lock()
	deleted, failed := []string{}, []string{}
	for _, name := range req.Recordings {
		idx := indexOf(s.recordings, name)
		if idx < 0 {
			failed = append(failed, name)
			continue
		}
		s.recordings = append(s.recordings[:idx], s.recordings[idx+1:]...)
		deleted = append(deleted, name)
	}
	s.mu.Unlock()
	status := "success"
	msg := fmt.Sprintf("Successfully deleted %d recording(s).", len(deleted))
	if len(failed) > 0 {
		status = "warning"
		msg = fmt.Sprintf("Deleted %d recording(s). Failed to delete %d recording(s).", len(deleted), len(failed))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": status, "message": msg, "deleted": deleted, "failed": failed})
}

func (s *Service) handleExport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recordings []string `json:"recordings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	out := make(map[string][]string, len(req.Recordings))
	for _, name := range req.Recordings {
		if s.has(name) {
			out[name] = []string{}
		}
	}
	w.Header().Set("Content-Disposition", `attachment; filename="recordings_export.json"`)
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeReply(w, "error", "No file provided")
		return
	}
	defer f.Close()
	if !strings.HasSuffix(hdr.Filename, ".json") {
		writeReply(w, "error", "Invalid file type")
		return
	}
	data, err := io.ReadAll(f)
	if err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)
	s.mu.Lock()
	for _, name := range names {
		if indexOf(s.recordings, name) < 0 {
			s.recordings = append(s.recordings, recorder.Recording{Name: name})
		}
	}
	s.mu.Unlock()
	writeReply(w, "success", "Recordings imported successfully")
}

func (s *Service) handleCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recordings []string `json:"recordings"`
		Category   string   `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeReply(w, "error", err.Error())
		return
	}
	s.mu.Lock()
	for _, name := range req.Recordings {
		if idx := indexOf(s.recordings, name); idx >= 0 {
			s.recordings[idx].Category = req.Category
		}
	}
	s.mu.Unlock()
	writeReply(w, "success", "Category updated")
}

func (s *Service) has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.recordings, name) >= 0
}

func indexOf(recs []recorder.Recording, name string) int {
	for i, r := range recs {
		if r.Name == name {
			return i
		}
	}
	return -1
}

func writeReply(w http.ResponseWriter, status, message string) {
	writeJSON(w, http.StatusOK, recorder.Reply{Status: status, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
