package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/config"
	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/service/feedback"
	"github.com/classmentor/classroom-service/internal/worker"
)

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions map[string]*models.Submission
}

func newFakeSubmissionRepo(submissions ...*models.Submission) *fakeSubmissionRepo {
	repo := &fakeSubmissionRepo{submissions: make(map[string]*models.Submission)}
	for _, sub := range submissions {
		clone := *sub
		repo.submissions[sub.ID] = &clone
	}
	return repo
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *submission
	r.submissions[submission.ID] = &clone
	return nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	clone := *sub
	return &clone, nil
}

func (r *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.submissions {
		if sub.AssignmentID == assignmentID && sub.StudentID == studentID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeSubmissionRepo) GetByAssignmentID(_ context.Context, _ string) ([]models.SubmissionWithDetails, error) {
	return nil, nil
}

func (r *fakeSubmissionRepo) GetRecentByTeacher(_ context.Context, _ string, _ int) ([]models.SubmissionWithDetails, error) {
	return nil, nil
}

func (r *fakeSubmissionRepo) GetStatus(_ context.Context, id string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return "", nil
	}
	return sub.AnalysisStatus, nil
}

func (r *fakeSubmissionRepo) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return errors.New("not found")
	}
	sub.AnalysisStatus = status
	return nil
}

func (r *fakeSubmissionRepo) UpdateAnalysis(_ context.Context, id, status string, fb json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return errors.New("not found")
	}
	sub.AnalysisStatus = status
	if len(fb) > 0 {
		sub.Feedback = fb
	}
	return nil
}

func (r *fakeSubmissionRepo) CompleteIfProcessing(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok || sub.AnalysisStatus != models.AnalysisStatusProcessing.String() {
		return false, nil
	}
	sub.AnalysisStatus = models.AnalysisStatusCompleted.String()
	return true, nil
}

func (r *fakeSubmissionRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[id]
	if !ok {
		return ""
	}
	return sub.AnalysisStatus
}

type fakeWeakTopicRepo struct {
	mu     sync.Mutex
	topics map[string][]models.WeakTopic
	err    error
}

func newFakeWeakTopicRepo() *fakeWeakTopicRepo {
	return &fakeWeakTopicRepo{topics: make(map[string][]models.WeakTopic)}
}

func (r *fakeWeakTopicRepo) Replace(_ context.Context, studentID, assignmentID string, topics []models.WeakTopic) error {
	if r.err != nil {
		return r.err
	}
	if len(topics) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics[studentID+"/"+assignmentID] = append([]models.WeakTopic(nil), topics...)
	return nil
}

func (r *fakeWeakTopicRepo) GetByStudentID(_ context.Context, _ string) ([]models.WeakTopicWithAssignment, error) {
	return nil, nil
}

func (r *fakeWeakTopicRepo) GetByStudentAndAssignment(_ context.Context, studentID, assignmentID string) ([]models.WeakTopic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WeakTopic(nil), r.topics[studentID+"/"+assignmentID]...), nil
}

func (r *fakeWeakTopicRepo) CountByTeacher(_ context.Context, _ string) (int, error) {
	return 0, nil
}

func (r *fakeWeakTopicRepo) stored(studentID, assignmentID string) []models.WeakTopic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.WeakTopic(nil), r.topics[studentID+"/"+assignmentID]...)
}

type fakeAssignmentRepo struct {
	assignments map[string]*models.Assignment
}

func newFakeAssignmentRepo(assignments ...*models.Assignment) *fakeAssignmentRepo {
	repo := &fakeAssignmentRepo{assignments: make(map[string]*models.Assignment)}
	for _, a := range assignments {
		repo.assignments[a.ID] = a
	}
	return repo
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id string) (*models.Assignment, error) {
	return r.assignments[id], nil
}

func (r *fakeAssignmentRepo) GetByClassroomID(_ context.Context, _ string) ([]models.Assignment, error) {
	return nil, nil
}

func (r *fakeAssignmentRepo) GetByStudentID(_ context.Context, _ string) ([]models.AssignmentWithClassroom, error) {
	return nil, nil
}

func (r *fakeAssignmentRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := r.assignments[id]
	return ok, nil
}

type fakeAnalyzerClient struct {
	mu       sync.Mutex
	reply    *models.AnalysisCallback
	err      error
	requests []*models.AnalysisRequest
}

func (c *fakeAnalyzerClient) Analyze(_ context.Context, req *models.AnalysisRequest) (*models.AnalysisCallback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return c.reply, nil
}

func (c *fakeAnalyzerClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

func strptr(s string) *string { return &s }

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		CallbackURL:       "http://localhost:8080/api/v1/webhooks/analysis",
		RequestTimeout:    time.Second,
		CompletionTimeout: time.Minute,
		PollInterval:      5 * time.Millisecond,
		PollTimeout:       100 * time.Millisecond,
	}
}

func newTestAnalysisService(
	subs *fakeSubmissionRepo,
	topics *fakeWeakTopicRepo,
	assignments *fakeAssignmentRepo,
	client *fakeAnalyzerClient,
	cfg config.AnalysisConfig,
) AnalysisService {
	pool := worker.NewPool(1, zerolog.Nop())
	pool.Start()
	return NewAnalysisService(subs, topics, assignments, client, nil, pool, cfg, zerolog.Nop())
}

func testSubmission() *models.Submission {
	return &models.Submission{
		ID:             "sub-1",
		AssignmentID:   "asg-1",
		StudentID:      "stu-1",
		FileURL:        strptr("https://files.local/sub-1.pdf"),
		AnalysisStatus: models.AnalysisStatusPending.String(),
	}
}

func testAssignment() *models.Assignment {
	return &models.Assignment{
		ID:          "asg-1",
		ClassroomID: "cls-1",
		Title:       "Fractions homework",
		FileURL:     strptr("https://files.local/asg-1.pdf"),
	}
}

func TestApplyResultReplacesTopics(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	first := []feedback.Topic{
		{Name: "Fractions", Score: 40, Explanation: "Struggled with denominators"},
		{Name: "Decimals", Score: 55, Explanation: "Rounding errors"},
	}
	if err := svc.ApplyResult(context.Background(), "sub-1", "completed", first, nil); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	second := []feedback.Topic{
		{Name: "Percentages", Score: 60, Explanation: "Conversion mistakes"},
	}
	if err := svc.ApplyResult(context.Background(), "sub-1", "completed", second, nil); err != nil {
		t.Fatalf("second apply: %v", err)
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 {
		t.Fatalf("expected replace semantics, got %d topics", len(stored))
	}
	if stored[0].TopicName != "Percentages" {
		t.Errorf("expected latest topic set, got %q", stored[0].TopicName)
	}
	if subs.status("sub-1") != "completed" {
		t.Errorf("expected completed status, got %q", subs.status("sub-1"))
	}
}

func TestApplyResultEmptyTopicsKeepsPrevious(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	if err := svc.ApplyResult(context.Background(), "sub-1", "completed", []feedback.Topic{{Name: "Algebra", Score: 45}}, nil); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := svc.ApplyResult(context.Background(), "sub-1", "completed", nil, json.RawMessage(`"all good"`)); err != nil {
		t.Fatalf("apply without topics: %v", err)
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Algebra" {
		t.Errorf("empty topic set must not wipe previous findings, got %v", stored)
	}
}

func TestApplyResultIdempotent(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	result := []feedback.Topic{{Name: "Geometry", Score: 30, Explanation: "Angle sums"}}
	for i := 0; i < 2; i++ {
		if err := svc.ApplyResult(context.Background(), "sub-1", "completed", result, json.RawMessage(`{"ok":true}`)); err != nil {
			t.Fatalf("apply %d: %v", i, err)
		}
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 {
		t.Fatalf("double apply must converge to one topic set, got %d topics", len(stored))
	}
}

func TestApplyResultTopicWriteFailureMarksFailed(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	topics.err = errors.New("db down")
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	err := svc.ApplyResult(context.Background(), "sub-1", "completed", []feedback.Topic{{Name: "X", Score: 50}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if subs.status("sub-1") != "failed" {
		t.Errorf("partial apply must drive status to failed, got %q", subs.status("sub-1"))
	}
}

func TestHandleCallbackRequiresSubmissionID(t *testing.T) {
	svc := newTestAnalysisService(newFakeSubmissionRepo(), newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, testAnalysisConfig())

	if err := svc.HandleCallback(context.Background(), &models.AnalysisCallback{}); err == nil {
		t.Error("callback without submission id must be rejected")
	}
	if err := svc.HandleCallback(context.Background(), nil); err == nil {
		t.Error("nil callback must be rejected")
	}
}

func TestHandleCallbackWeakTopicsWinOverFeedback(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	cb := &models.AnalysisCallback{
		SubmissionID: "sub-1",
		Feedback:     json.RawMessage(`{"weakTopics":[{"name":"FromFeedback","score":10}]}`),
		WeakTopics:   json.RawMessage(`[{"name":"Explicit","score":80}]`),
	}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("callback: %v", err)
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Explicit" {
		t.Errorf("explicit weakTopics must win over feedback, got %v", stored)
	}
}

func TestHandleCallbackFallsBackToFeedback(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	cb := &models.AnalysisCallback{
		SubmissionID: "sub-1",
		Feedback:     json.RawMessage(`{"weakTopics":[{"topic_name":"Fractions","confidence_score":35}]}`),
	}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("callback: %v", err)
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Fractions" || stored[0].ConfidenceScore != 35 {
		t.Errorf("feedback normalization fallback failed, got %v", stored)
	}
}

func TestHandleCallbackStringEncodedFeedback(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	// The worker sometimes double-encodes: feedback is a JSON string whose
	// content is itself a weakTopics document.
	cb := &models.AnalysisCallback{
		SubmissionID: "sub-1",
		Feedback:     json.RawMessage(`"{\"weakTopics\":[{\"name\":\"Deadlocks\",\"score\":1,\"explanation\":\"...\"}]}"`),
	}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("callback: %v", err)
	}

	if subs.status("sub-1") != "completed" {
		t.Errorf("expected completed, got %q", subs.status("sub-1"))
	}
	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Deadlocks" || stored[0].ConfidenceScore != 1 {
		t.Errorf("expected one Deadlocks topic, got %v", stored)
	}
}

func TestHandleCallbackDefaultsToCompleted(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	cb := &models.AnalysisCallback{
		SubmissionID: "sub-1",
		Status:       "done", // unknown status from the worker
		Feedback:     json.RawMessage(`"nice work"`),
	}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if subs.status("sub-1") != "completed" {
		t.Errorf("unknown status must default to completed, got %q", subs.status("sub-1"))
	}
}

func TestHandleCallbackFailedStatus(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, testAnalysisConfig())

	cb := &models.AnalysisCallback{SubmissionID: "sub-1", Status: "failed"}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("callback: %v", err)
	}
	if subs.status("sub-1") != "failed" {
		t.Errorf("failed status must pass through, got %q", subs.status("sub-1"))
	}
}

func TestDispatchTransportFailure(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	client := &fakeAnalyzerClient{err: errors.New("connection refused")}
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), client, testAnalysisConfig())

	if err := svc.Dispatch(context.Background(), "sub-1"); err == nil {
		t.Fatal("expected dispatch error")
	}
	if subs.status("sub-1") != "failed" {
		t.Errorf("transport failure must leave status failed, got %q", subs.status("sub-1"))
	}
	if got := topics.stored("stu-1", "asg-1"); len(got) != 0 {
		t.Errorf("transport failure must not write topics, got %v", got)
	}
}

func TestDispatchInlineReply(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	client := &fakeAnalyzerClient{
		reply: &models.AnalysisCallback{
			WeakTopics: json.RawMessage(`[{"name":"Inline","score":70}]`),
		},
	}
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), client, testAnalysisConfig())

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if subs.status("sub-1") != "completed" {
		t.Errorf("inline reply must complete the submission, got %q", subs.status("sub-1"))
	}
	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Inline" {
		t.Errorf("inline reply topics not applied, got %v", stored)
	}
}

func TestDispatchWithoutReplyLeavesProcessing(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	client := &fakeAnalyzerClient{} // accepted, result comes by webhook later
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), client, testAnalysisConfig())

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if subs.status("sub-1") != "processing" {
		t.Errorf("accepted dispatch must stay at processing, got %q", subs.status("sub-1"))
	}
	if client.callCount() != 1 {
		t.Errorf("expected one analyzer call, got %d", client.callCount())
	}
}

func TestDispatchMissingFilesSimulates(t *testing.T) {
	sub := testSubmission()
	sub.FileURL = nil
	sub.ContentText = strptr("my essay text")
	subs := newFakeSubmissionRepo(sub)
	client := &fakeAnalyzerClient{}
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), client, testAnalysisConfig())

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if subs.status("sub-1") != "completed" {
		t.Errorf("degraded dispatch must complete, got %q", subs.status("sub-1"))
	}
	if client.callCount() != 0 {
		t.Errorf("degraded dispatch must not call the worker, got %d calls", client.callCount())
	}
}

func TestDispatchUnknownSubmission(t *testing.T) {
	svc := newTestAnalysisService(newFakeSubmissionRepo(), newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, testAnalysisConfig())

	if err := svc.Dispatch(context.Background(), "missing"); err == nil {
		t.Error("dispatch for unknown submission must fail")
	}
}

func TestReaperForcesCompleted(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	cfg := testAnalysisConfig()
	cfg.CompletionTimeout = 20 * time.Millisecond
	client := &fakeAnalyzerClient{} // no inline reply, no webhook ever arrives
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), client, cfg)

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if subs.status("sub-1") != "processing" {
		t.Fatalf("precondition: expected processing, got %q", subs.status("sub-1"))
	}

	deadline := time.After(time.Second)
	for subs.status("sub-1") != "completed" {
		select {
		case <-deadline:
			t.Fatalf("reaper did not force completion, status %q", subs.status("sub-1"))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestReaperDoesNotTouchTerminal(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	cfg := testAnalysisConfig()
	cfg.CompletionTimeout = 20 * time.Millisecond
	client := &fakeAnalyzerClient{
		reply: &models.AnalysisCallback{Status: "failed"},
	}
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(testAssignment()), client, cfg)

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if subs.status("sub-1") != "failed" {
		t.Errorf("reaper must not override a terminal status, got %q", subs.status("sub-1"))
	}
}

func TestLateWebhookOverridesReapedResult(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	topics := newFakeWeakTopicRepo()
	cfg := testAnalysisConfig()
	cfg.CompletionTimeout = 10 * time.Millisecond
	svc := newTestAnalysisService(subs, topics, newFakeAssignmentRepo(testAssignment()), &fakeAnalyzerClient{}, cfg)

	if err := svc.Dispatch(context.Background(), "sub-1"); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	deadline := time.After(time.Second)
	for subs.status("sub-1") != "completed" {
		select {
		case <-deadline:
			t.Fatal("reaper did not fire")
		case <-time.After(5 * time.Millisecond):
		}
	}

	// The real result arrives after the reaper already forced completion.
	cb := &models.AnalysisCallback{
		SubmissionID: "sub-1",
		WeakTopics:   json.RawMessage(`[{"name":"Late","score":25}]`),
	}
	if err := svc.HandleCallback(context.Background(), cb); err != nil {
		t.Fatalf("late callback: %v", err)
	}

	stored := topics.stored("stu-1", "asg-1")
	if len(stored) != 1 || stored[0].TopicName != "Late" {
		t.Errorf("late webhook must still land its topics, got %v", stored)
	}
}

func TestWatchStatusReturnsTerminal(t *testing.T) {
	sub := testSubmission()
	sub.AnalysisStatus = models.AnalysisStatusCompleted.String()
	svc := newTestAnalysisService(newFakeSubmissionRepo(sub), newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, testAnalysisConfig())

	status, err := svc.WatchStatus(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if status != "completed" {
		t.Errorf("expected completed, got %q", status)
	}
}

func TestWatchStatusTimesOutWithCurrent(t *testing.T) {
	sub := testSubmission()
	sub.AnalysisStatus = models.AnalysisStatusProcessing.String()
	cfg := testAnalysisConfig()
	cfg.PollTimeout = 30 * time.Millisecond
	svc := newTestAnalysisService(newFakeSubmissionRepo(sub), newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, cfg)

	status, err := svc.WatchStatus(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if status != "processing" {
		t.Errorf("poll bound must return the current status, got %q", status)
	}
}

func TestWatchStatusPicksUpTransition(t *testing.T) {
	subs := newFakeSubmissionRepo(testSubmission())
	if err := subs.UpdateStatus(context.Background(), "sub-1", "processing"); err != nil {
		t.Fatal(err)
	}
	svc := newTestAnalysisService(subs, newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, testAnalysisConfig())

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = subs.UpdateStatus(context.Background(), "sub-1", "completed")
	}()

	status, err := svc.WatchStatus(context.Background(), "sub-1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if status != "completed" {
		t.Errorf("expected poll loop to see the transition, got %q", status)
	}
}

func TestWatchStatusUnknownSubmission(t *testing.T) {
	svc := newTestAnalysisService(newFakeSubmissionRepo(), newFakeWeakTopicRepo(), newFakeAssignmentRepo(), &fakeAnalyzerClient{}, testAnalysisConfig())

	if _, err := svc.WatchStatus(context.Background(), "missing"); err == nil {
		t.Error("watch for unknown submission must fail")
	}
}
