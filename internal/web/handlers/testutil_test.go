package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
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

// stubEmbedder returns a fixed embedding for every image.
type stubEmbedder struct {
	embedding []float32
	err       error
}

func (s *stubEmbedder) Embed(ctx context.Context, imageData []byte) ([]float32, error) {
	return s.embedding, s.err
}

type noopNotifier struct{}

func (noopNotifier) Enqueue(n notify.Notification) bool { return false }

// testEnv wires a workflow over mock stores. The gallery knows Jane Doe at
// [1,0,0] and the stub embedder controls what a probe image embeds to.
type testEnv struct {
	commands   *command.Store
	attendance *mock.AttendanceStore
	students   *mock.StudentStore
	workflow   *workflow.Service
	embedder   *stubEmbedder
	config     *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	embedder := &stubEmbedder{embedding: []float32{1, 0, 0}}
	g := gallery.New()
	g.Load([]gallery.Identity{{Name: "Jane Doe", Embedding: []float32{1, 0, 0}}})
	matcher := gallery.NewMatcher(embedder, g, 0.6, time.Second)

	up, err := uploads.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create uploads store: %v", err)
	}

	env := &testEnv{
		commands:   command.NewStore(30*time.Second, 60*time.Second),
		attendance: mock.NewAttendanceStore(),
		students:   mock.NewStudentStore(),
		embedder:   embedder,
		config: &config.Config{
			Assets: config.AssetsConfig{
				YearLevels: []string{"BSIT 1st Year", "BSIT 2nd Year"},
			},
		},
	}
	env.students.Upsert(context.Background(), store.StudentRecord{
		Name:          "Jane Doe",
		GuardianEmail: "john@example.com",
	})
	env.workflow = workflow.New(env.commands, matcher, env.attendance, env.students,
		up, noopNotifier{}, 5*time.Minute)
	return env
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// assertResultStatus checks the status field of a capture-result body
func assertResultStatus(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	var res command.Result
	parseJSONResponse(t, recorder, &res)
	if res.Status != expected {
		t.Errorf("expected result status '%s', got '%s'\nBody: %s", expected, res.Status, recorder.Body.String())
	}
}
