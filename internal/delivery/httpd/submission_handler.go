package httpd

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/classmentor/classroom-service/internal/models"
)

// CreateSubmission accepts a multipart form (file and/or content_text) or a
// JSON body. The submission is stored at pending and analysis starts in the
// background; the response does not wait for it.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSubmissionRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		parsed, err := parseSubmissionForm(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req = *parsed
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	if req.AssignmentID == "" || req.StudentID == "" {
		writeError(w, http.StatusBadRequest, "assignment_id and student_id are required")
		return
	}

	resp, err := h.submissionService.CreateSubmission(r.Context(), &req)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    resp,
	})
}

func parseSubmissionForm(r *http.Request) (*models.CreateSubmissionRequest, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, err
	}

	req := &models.CreateSubmissionRequest{
		AssignmentID: r.FormValue("assignment_id"),
		StudentID:    r.FormValue("student_id"),
		ContentText:  r.FormValue("content_text"),
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			return nil, err
		}
		req.FileContent = content
		req.FileName = header.Filename
	} else if err != http.ErrMissingFile {
		return nil, err
	}

	return req, nil
}

func (h *Handler) GetSubmissionByID(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	submission, err := h.submissionService.GetSubmissionByID(r.Context(), submissionID)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, submission)
}

// GetStudentSubmissionForAssignment returns one student's submission for an
// assignment, or 404 if they have not submitted yet.
func (h *Handler) GetStudentSubmissionForAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	studentID := r.URL.Query().Get("student_id")
	if assignmentID == "" || studentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID and student_id are required")
		return
	}

	submission, err := h.submissionService.GetStudentSubmission(r.Context(), assignmentID, studentID)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}
	if submission == nil {
		writeError(w, http.StatusNotFound, "submission not found")
		return
	}

	writeSuccess(w, submission)
}

// GetSubmissionStatus returns the analysis status. With ?wait=true it blocks
// until the status is terminal or the configured poll bound elapses, so the
// frontend can long-poll instead of hammering the endpoint.
func (h *Handler) GetSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	var (
		status string
		err    error
	)
	if r.URL.Query().Get("wait") == "true" {
		status, err = h.analysisService.WatchStatus(r.Context(), submissionID)
	} else {
		var submission *models.Submission
		submission, err = h.submissionService.GetSubmissionByID(r.Context(), submissionID)
		if submission != nil {
			status = submission.AnalysisStatus
		}
	}
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, models.SubmissionStatusResponse{
		ID:             submissionID,
		AnalysisStatus: status,
	})
}

// AnalyzeSubmission re-runs analysis for an existing submission.
func (h *Handler) AnalyzeSubmission(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	submission, err := h.submissionService.GetSubmissionByID(r.Context(), submissionID)
	if err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	h.analysisService.DispatchAsync(submission.ID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"data": models.SubmissionStatusResponse{
			ID:             submission.ID,
			AnalysisStatus: models.AnalysisStatusProcessing.String(),
		},
	})
}

// ReapplyAnalysis applies an analysis result by hand. The body contract is
// the same as the webhook's; the submission id comes from the URL.
func (h *Handler) ReapplyAnalysis(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "id")
	if submissionID == "" {
		writeError(w, http.StatusBadRequest, "Submission ID is required")
		return
	}

	var callback models.AnalysisCallback
	if err := json.NewDecoder(r.Body).Decode(&callback); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	callback.SubmissionID = submissionID

	if err := h.analysisService.HandleCallback(r.Context(), &callback); err != nil {
		h.handleSubmissionError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"message": "Analysis result applied",
	})
}

func (h *Handler) handleSubmissionError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch errMsg {
	case "submission not found", "assignment not found":
		writeError(w, http.StatusNotFound, errMsg)
	case "submission already exists for this assignment":
		writeError(w, http.StatusConflict, errMsg)
	case "either a file or content text is required",
		"assignment id and student id are required":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("Submission service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
