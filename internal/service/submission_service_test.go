package service

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/service/feedback"
)

type fakeFileStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{uploads: make(map[string][]byte)}
}

func (s *fakeFileStore) Upload(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[key] = content
	return nil
}

func (s *fakeFileStore) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.local/" + key, nil
}

func (s *fakeFileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, key)
	return nil
}

func (s *fakeFileStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.uploads[key]
	return ok, nil
}

type recordingAnalysis struct {
	mu         sync.Mutex
	dispatched []string
}

func (r *recordingAnalysis) Dispatch(_ context.Context, _ string) error { return nil }

func (r *recordingAnalysis) DispatchAsync(submissionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched = append(r.dispatched, submissionID)
}

func (r *recordingAnalysis) HandleCallback(_ context.Context, _ *models.AnalysisCallback) error {
	return nil
}

func (r *recordingAnalysis) ApplyResult(_ context.Context, _, _ string, _ []feedback.Topic, _ json.RawMessage) error {
	return nil
}

func (r *recordingAnalysis) WatchStatus(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (r *recordingAnalysis) dispatchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dispatched)
}

func TestCreateSubmission(t *testing.T) {
	t.Run("creates pending and dispatches analysis", func(t *testing.T) {
		subs := newFakeSubmissionRepo()
		analysis := &recordingAnalysis{}
		store := newFakeFileStore()
		svc := NewSubmissionService(subs, newFakeAssignmentRepo(testAssignment()), store, analysis, time.Hour, zerolog.Nop())

		resp, err := svc.CreateSubmission(context.Background(), &models.CreateSubmissionRequest{
			AssignmentID: "asg-1",
			StudentID:    "stu-1",
			FileContent:  []byte("%PDF-1.4 fake"),
			FileName:     "essay.pdf",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		if resp.AnalysisStatus != "pending" {
			t.Errorf("new submission must start pending, got %q", resp.AnalysisStatus)
		}
		if resp.FileURL == nil {
			t.Error("expected a file URL")
		}
		if analysis.dispatchCount() != 1 {
			t.Errorf("expected one dispatch, got %d", analysis.dispatchCount())
		}
		if len(store.uploads) != 1 {
			t.Errorf("expected one uploaded file, got %d", len(store.uploads))
		}
	})

	t.Run("accepts text only submissions", func(t *testing.T) {
		subs := newFakeSubmissionRepo()
		analysis := &recordingAnalysis{}
		svc := NewSubmissionService(subs, newFakeAssignmentRepo(testAssignment()), newFakeFileStore(), analysis, time.Hour, zerolog.Nop())

		resp, err := svc.CreateSubmission(context.Background(), &models.CreateSubmissionRequest{
			AssignmentID: "asg-1",
			StudentID:    "stu-1",
			ContentText:  "my essay",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if resp.FileURL != nil {
			t.Error("text submission must not carry a file URL")
		}
		if analysis.dispatchCount() != 1 {
			t.Errorf("expected one dispatch, got %d", analysis.dispatchCount())
		}
	})

	t.Run("rejects empty submissions", func(t *testing.T) {
		svc := NewSubmissionService(newFakeSubmissionRepo(), newFakeAssignmentRepo(testAssignment()), newFakeFileStore(), &recordingAnalysis{}, time.Hour, zerolog.Nop())

		_, err := svc.CreateSubmission(context.Background(), &models.CreateSubmissionRequest{
			AssignmentID: "asg-1",
			StudentID:    "stu-1",
		})
		if err == nil {
			t.Error("submission with neither file nor text must be rejected")
		}
	})

	t.Run("rejects unknown assignment", func(t *testing.T) {
		svc := NewSubmissionService(newFakeSubmissionRepo(), newFakeAssignmentRepo(), newFakeFileStore(), &recordingAnalysis{}, time.Hour, zerolog.Nop())

		_, err := svc.CreateSubmission(context.Background(), &models.CreateSubmissionRequest{
			AssignmentID: "missing",
			StudentID:    "stu-1",
			ContentText:  "text",
		})
		if err == nil {
			t.Error("submission for unknown assignment must be rejected")
		}
	})

	t.Run("rejects duplicate submission", func(t *testing.T) {
		subs := newFakeSubmissionRepo(testSubmission())
		analysis := &recordingAnalysis{}
		svc := NewSubmissionService(subs, newFakeAssignmentRepo(testAssignment()), newFakeFileStore(), analysis, time.Hour, zerolog.Nop())

		_, err := svc.CreateSubmission(context.Background(), &models.CreateSubmissionRequest{
			AssignmentID: "asg-1",
			StudentID:    "stu-1",
			ContentText:  "second try",
		})
		if err == nil {
			t.Error("second submission for the same assignment must be rejected")
		}
		if analysis.dispatchCount() != 0 {
			t.Errorf("rejected submission must not dispatch, got %d", analysis.dispatchCount())
		}
	})
}
