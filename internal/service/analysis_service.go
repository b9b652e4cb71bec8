package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/config"
	"github.com/classmentor/classroom-service/internal/models"
	"github.com/classmentor/classroom-service/internal/repository"
	"github.com/classmentor/classroom-service/internal/service/feedback"
	"github.com/classmentor/classroom-service/internal/service/integration"
	"github.com/classmentor/classroom-service/internal/worker"
)

// AnalysisService owns the submission analysis lifecycle: dispatching a
// submission to the AI worker, applying results, and bounding how long a
// submission may sit at processing.
//
// ApplyResult is the only reconciliation implementation. The webhook
// receiver, the inline reply consumed during dispatch, and the manual
// re-apply endpoint all funnel through HandleCallback into it.
type AnalysisService interface {
	Dispatch(ctx context.Context, submissionID string) error
	DispatchAsync(submissionID string)
	HandleCallback(ctx context.Context, callback *models.AnalysisCallback) error
	ApplyResult(ctx context.Context, submissionID, status string, topics []feedback.Topic, rawFeedback json.RawMessage) error
	WatchStatus(ctx context.Context, submissionID string) (string, error)
}

type analysisService struct {
	submissionRepo repository.SubmissionRepository
	topicRepo      repository.WeakTopicRepository
	assignmentRepo repository.AssignmentRepository
	analyzerClient integration.AnalyzerClient
	events         integration.EventPublisher
	pool           *worker.Pool
	cfg            config.AnalysisConfig
	logger         zerolog.Logger
}

func NewAnalysisService(
	submissionRepo repository.SubmissionRepository,
	topicRepo repository.WeakTopicRepository,
	assignmentRepo repository.AssignmentRepository,
	analyzerClient integration.AnalyzerClient,
	events integration.EventPublisher,
	pool *worker.Pool,
	cfg config.AnalysisConfig,
	logger zerolog.Logger,
) AnalysisService {
	return &analysisService{
		submissionRepo: submissionRepo,
		topicRepo:      topicRepo,
		assignmentRepo: assignmentRepo,
		analyzerClient: analyzerClient,
		events:         events,
		pool:           pool,
		cfg:            cfg,
		logger:         logger,
	}
}

// Dispatch initiates one analysis attempt. Re-dispatch for the same
// submission is always allowed; each attempt is independent and races any
// in-flight attempt safely because the reconciler replaces rather than
// merges.
func (s *analysisService) Dispatch(ctx context.Context, submissionID string) error {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return errors.New("submission not found")
	}

	// Flip to processing before any network I/O so the UI never shows a
	// stale pending badge while work is already underway.
	if err := s.submissionRepo.UpdateStatus(ctx, submissionID, models.AnalysisStatusProcessing.String()); err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	s.scheduleReaper(submissionID)

	assignment, err := s.assignmentRepo.GetByID(ctx, submission.AssignmentID)
	if err != nil {
		s.failBestEffort(context.WithoutCancel(ctx), submissionID)
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	submissionFileURL := ""
	if submission.FileURL != nil {
		submissionFileURL = *submission.FileURL
	}
	assignmentFileURL := ""
	if assignment != nil && assignment.FileURL != nil {
		assignmentFileURL = *assignment.FileURL
	}

	// Full analysis needs both the reference file and the submitted file.
	// Missing either one degrades to a simulated completion instead of
	// failing the whole dispatch.
	if submissionFileURL == "" || assignmentFileURL == "" {
		return s.applySimulated(ctx, submission, submissionFileURL, assignmentFileURL)
	}

	reply, err := s.analyzerClient.Analyze(ctx, &models.AnalysisRequest{
		SubmissionID:            submission.ID,
		StudentID:               submission.StudentID,
		AssignmentID:            submission.AssignmentID,
		AssignmentPdfURL:        assignmentFileURL,
		StudentSubmissionPdfURL: submissionFileURL,
		DirectAnalysis:          true,
		CallbackURL:             s.cfg.CallbackURL,
	})
	if err != nil {
		// Transport failure must not leave the submission at processing.
		s.failBestEffort(context.WithoutCancel(ctx), submissionID)
		return fmt.Errorf("failed to dispatch analysis: %w", err)
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("student_id", submission.StudentID).
		Str("assignment_id", submission.AssignmentID).
		Msg("Analysis dispatched")

	if reply != nil {
		reply.SubmissionID = submission.ID
		if err := s.HandleCallback(ctx, reply); err != nil {
			return fmt.Errorf("failed to apply inline analysis reply: %w", err)
		}
	}

	return nil
}

// DispatchAsync runs Dispatch on the worker pool with a fresh context, for
// call sites that must not block on the outbound worker call.
func (s *analysisService) DispatchAsync(submissionID string) {
	s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout+10*time.Second)
		defer cancel()

		if err := s.Dispatch(ctx, submissionID); err != nil {
			s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Async analysis dispatch failed")
		}
	})
}

// HandleCallback validates a result payload and applies it. An explicit
// weakTopics array wins over topics normalized out of the feedback blob; the
// original frontend concatenated both, which duplicated topics whenever the
// worker double-reported.
func (s *analysisService) HandleCallback(ctx context.Context, callback *models.AnalysisCallback) error {
	if callback == nil || callback.SubmissionID == "" {
		return errors.New("submission id is required")
	}

	status := callback.Status
	if status != models.AnalysisStatusFailed.String() {
		status = models.AnalysisStatusCompleted.String()
	}

	topics := feedback.CoerceRawList(callback.WeakTopics)
	if len(topics) == 0 {
		topics = feedback.NormalizeRaw(callback.Feedback)
	}

	if err := s.ApplyResult(ctx, callback.SubmissionID, status, topics, callback.Feedback); err != nil {
		return err
	}

	return nil
}

// ApplyResult durably applies one analysis result: replaces the weak topic
// set for the submission's (student, assignment) pair and overwrites the
// submission's status and feedback blob. Applying the same result twice
// leaves storage in the same end state as applying it once.
func (s *analysisService) ApplyResult(ctx context.Context, submissionID, status string, topics []feedback.Topic, rawFeedback json.RawMessage) error {
	submission, err := s.submissionRepo.GetByID(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return errors.New("submission not found")
	}

	if !models.IsValidAnalysisStatus(status) {
		status = models.AnalysisStatusCompleted.String()
	}

	if len(topics) > 0 {
		now := time.Now()
		rows := make([]models.WeakTopic, 0, len(topics))
		for _, topic := range topics {
			rows = append(rows, models.WeakTopic{
				ID:              uuid.New().String(),
				StudentID:       submission.StudentID,
				AssignmentID:    submission.AssignmentID,
				TopicName:       topic.Name,
				ConfidenceScore: topic.Score,
				AIExplanation:   topic.Explanation,
				CreatedAt:       now,
			})
		}

		if err := s.topicRepo.Replace(ctx, submission.StudentID, submission.AssignmentID, rows); err != nil {
			s.failBestEffort(ctx, submissionID)
			return fmt.Errorf("failed to replace weak topics: %w", err)
		}
	}

	if err := s.submissionRepo.UpdateAnalysis(ctx, submissionID, status, rawFeedback); err != nil {
		// The topic replace may already be durable; a submission stuck at
		// processing is worse than a failed badge over fresh topics.
		s.failBestEffort(ctx, submissionID)
		return fmt.Errorf("failed to update submission analysis: %w", err)
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Str("status", status).
		Int("topic_count", len(topics)).
		Msg("Analysis result applied")

	s.publishAnalyzed(ctx, submission, status, len(topics))

	return nil
}

// WatchStatus polls until the submission reaches a terminal status or the
// poll bound elapses. It never mutates; the timeout-side forcing lives in the
// reaper alone.
func (s *analysisService) WatchStatus(ctx context.Context, submissionID string) (string, error) {
	deadline := time.NewTimer(s.cfg.PollTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		status, err := s.submissionRepo.GetStatus(ctx, submissionID)
		if err != nil {
			return "", fmt.Errorf("failed to get submission status: %w", err)
		}
		if status == "" {
			return "", errors.New("submission not found")
		}
		if models.IsTerminalAnalysisStatus(status) {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, nil
		case <-deadline.C:
			return status, nil
		case <-ticker.C:
		}
	}
}

// scheduleReaper bounds how long this dispatch attempt may sit at
// processing. A submission still at processing when the timer fires is
// forced to completed: a permanently stuck processing badge is a worse
// user-facing failure than a silently incomplete completed one. A later
// webhook still overwrites the forced result.
func (s *analysisService) scheduleReaper(submissionID string) {
	time.AfterFunc(s.cfg.CompletionTimeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		forced, err := s.submissionRepo.CompleteIfProcessing(ctx, submissionID)
		if err != nil {
			s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to reap stuck submission")
			return
		}

		if forced {
			s.logger.Warn().
				Str("submission_id", submissionID).
				Dur("timeout", s.cfg.CompletionTimeout).
				Msg("No analysis result arrived in time, forcing completed status")
		}
	})
}

// applySimulated completes a dispatch that cannot reach the worker for lack
// of files. It goes through the same reconciler so the status machine and
// event stream behave exactly as for a real result.
func (s *analysisService) applySimulated(ctx context.Context, submission *models.Submission, submissionFileURL, assignmentFileURL string) error {
	s.logger.Warn().
		Str("submission_id", submission.ID).
		Bool("has_submission_file", submissionFileURL != "").
		Bool("has_assignment_file", assignmentFileURL != "").
		Msg("Files missing for full analysis, applying simulated result")

	blob, err := json.Marshal(map[string]any{
		"simulated": true,
		"summary":   "Automated analysis was skipped because the submission or assignment file is missing.",
	})
	if err != nil {
		return fmt.Errorf("failed to build simulated feedback: %w", err)
	}

	return s.ApplyResult(ctx, submission.ID, models.AnalysisStatusCompleted.String(), nil, blob)
}

func (s *analysisService) failBestEffort(ctx context.Context, submissionID string) {
	if err := s.submissionRepo.UpdateStatus(ctx, submissionID, models.AnalysisStatusFailed.String()); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Msg("Failed to mark submission as failed")
	}
}

func (s *analysisService) publishAnalyzed(ctx context.Context, submission *models.Submission, status string, topicCount int) {
	if s.events == nil {
		return
	}

	event := &models.SubmissionAnalyzedEvent{
		SubmissionID: submission.ID,
		StudentID:    submission.StudentID,
		AssignmentID: submission.AssignmentID,
		Status:       status,
		TopicCount:   topicCount,
		Timestamp:    time.Now().Unix(),
	}

	if err := s.events.PublishSubmissionAnalyzed(ctx, event); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submission.ID).Msg("Failed to publish submission analyzed event")
	}
}
