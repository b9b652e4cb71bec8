package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/models"
)

// AnalyzerClient talks to the external AI analysis worker. The worker answers
// the dispatch call immediately and usually delivers the real result later via
// the webhook; some configurations reply inline, in which case Analyze returns
// the parsed reply body.
type AnalyzerClient interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisCallback, error)
}

type analyzerClient struct {
	endpoint   string
	timeout    time.Duration
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

func NewAnalyzerClient(endpoint string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) AnalyzerClient {
	return &analyzerClient{
		endpoint:   endpoint,
		timeout:    timeout,
		retryCount: retryCount,
		retryDelay: retryDelay,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *analyzerClient) Analyze(ctx context.Context, analysisReq *models.AnalysisRequest) (*models.AnalysisCallback, error) {
	body, err := json.Marshal(analysisReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	var lastErr error

	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Str("submission_id", analysisReq.SubmissionID).Msg("Retrying analysis dispatch")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call analysis worker: %w", err)
			continue
		}

		if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
			reply := c.parseInlineReply(resp.Body, analysisReq.SubmissionID)
			resp.Body.Close()
			return reply, nil
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("analysis worker returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil, fmt.Errorf("failed to dispatch analysis after %d attempts: %w", c.retryCount+1, lastErr)
}

// parseInlineReply inspects the response body for an eagerly available
// result. Non-JSON bodies and bodies carrying neither feedback nor topics are
// not an error; they just mean the worker will call back later.
func (c *analyzerClient) parseInlineReply(body io.Reader, submissionID string) *models.AnalysisCallback {
	data, err := io.ReadAll(body)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var reply models.AnalysisCallback
	if err := json.Unmarshal(data, &reply); err != nil {
		c.logger.Debug().Str("submission_id", submissionID).Msg("Analysis worker reply is not a result payload")
		return nil
	}

	if len(reply.Feedback) == 0 && len(reply.WeakTopics) == 0 {
		return nil
	}

	if reply.SubmissionID == "" {
		reply.SubmissionID = submissionID
	}

	c.logger.Info().Str("submission_id", submissionID).Msg("Analysis worker replied inline")
	return &reply
}
