package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/classmentor/classroom-service/internal/models"
)

// AnalysisWebhook receives the analysis worker's asynchronous result. The
// worker fires at most once and does not retry, so a failure here cannot be
// recovered by re-delivery; the only client errors are an unreadable body and
// a missing submission id, everything past validation that fails is a 500.
// The service marks the submission failed where it can; the stuck-state timer
// covers whatever slips past that.
func (h *Handler) AnalysisWebhook(w http.ResponseWriter, r *http.Request) {
	var callback models.AnalysisCallback
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	if callback.SubmissionID == "" {
		writeError(w, http.StatusBadRequest, "submissionId is required")
		return
	}

	h.logger.Info().
		Str("submission_id", callback.SubmissionID).
		Str("status", callback.Status).
		Msg("Analysis webhook received")

	if err := h.analysisService.HandleCallback(r.Context(), &callback); err != nil {
		h.logger.Error().Err(err).Str("submission_id", callback.SubmissionID).Msg("Failed to apply webhook result")
		writeError(w, http.StatusInternalServerError, "Failed to apply analysis result")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Analysis result received",
	})
}
