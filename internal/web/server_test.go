package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edalquez/facegate/internal/command"
	"github.com/edalquez/facegate/internal/config"
	"github.com/edalquez/facegate/internal/gallery"
	"github.com/edalquez/facegate/internal/notify"
	"github.com/edalquez/facegate/internal/store"
	"github.com/edalquez/facegate/internal/store/mock"
	"github.com/edalquez/facegate/internal/uploads"
	"github.com/edalquez/facegate/internal/workflow"
)

type fixedEmbedder struct {
	embedding []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	return f.embedding, nil
}

type dropNotifier struct{}

func (dropNotifier) Enqueue(n notify.Notification) bool { return false }

// newTestServer wires a full server over mock stores with Jane Doe in the
// gallery.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	g := gallery.New()
	g.Load([]gallery.Identity{{Name: "Jane Doe", Embedding: []float32{1, 0, 0}}})
	matcher := gallery.NewMatcher(&fixedEmbedder{embedding: []float32{1, 0, 0}}, g, 0.6, time.Second)

	up, err := uploads.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create uploads store: %v", err)
	}

	commands := command.NewStore(30*time.Second, 60*time.Second)
	attendance := mock.NewAttendanceStore()
	students := mock.NewStudentStore()
	students.Upsert(context.Background(), store.StudentRecord{
		Name:          "Jane Doe",
		GuardianEmail: "john@example.com",
	})

	wf := workflow.New(commands, matcher, attendance, students, up, dropNotifier{}, 5*time.Minute)
	return NewServer(&config.Config{}, "127.0.0.1", 0, commands, wf, attendance, students, up.Dir())
}

func do(t *testing.T, s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["gallery_size"] != float64(1) {
		t.Errorf("expected gallery_size 1, got %v", body["gallery_size"])
	}
}

func TestServer_CaptureCycle(t *testing.T) {
	s := newTestServer(t)

	// Operator issues an attendance capture.
	rec := do(t, s, http.MethodPost, "/api/command/capture", "application/json", `{"mode":"attendance"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("issue failed: %d %s", rec.Code, rec.Body.String())
	}

	// Camera polls and receives it.
	rec = do(t, s, http.MethodGet, "/api/command/poll", "", "")
	var poll command.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &poll); err != nil {
		t.Fatalf("failed to parse poll response: %v", err)
	}
	if poll.Status != command.PollStatusCapture || poll.Mode != command.ModeAttendance {
		t.Fatalf("unexpected poll response: %+v", poll)
	}

	// Camera submits the capture.
	rec = do(t, s, http.MethodPost, "/api/recognize", "image/jpeg", "jpeg")
	if rec.Code != http.StatusOK {
		t.Fatalf("recognize failed: %d %s", rec.Code, rec.Body.String())
	}
	var res command.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to parse result: %v", err)
	}
	if res.Status != command.StatusSuccess || res.Name != "Jane Doe" || res.LogType != "IN" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Operator polls the same outcome.
	rec = do(t, s, http.MethodGet, "/api/command/result", "", "")
	var polled command.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &polled); err != nil {
		t.Fatalf("failed to parse polled result: %v", err)
	}
	if polled.Status != res.Status || polled.Name != res.Name {
		t.Fatalf("polled result differs: %+v vs %+v", polled, res)
	}

	// The consumed command is gone.
	rec = do(t, s, http.MethodGet, "/api/command/poll", "", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &poll); err != nil {
		t.Fatalf("failed to parse poll response: %v", err)
	}
	if poll.Status != command.PollStatusNoCommand {
		t.Fatalf("expected no_command after fulfilment, got %+v", poll)
	}
}

func TestServer_AttendanceListedAfterCapture(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodPost, "/api/recognize", "image/jpeg", "jpeg")

	rec := do(t, s, http.MethodGet, "/api/attendance?today=true", "", "")
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse attendance: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("expected 1 record, got %d", body.Count)
	}
}
