package httpd

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/classmentor/classroom-service/internal/models"
)

const maxUploadSize = 32 << 20 // 32 MB

// CreateAssignment accepts either a JSON body or a multipart form with an
// optional reference file under the "file" field.
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		parsed, err := parseAssignmentForm(r)
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

	if req.ClassroomID == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "classroom_id and title are required")
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(r.Context(), &req)
	if err != nil {
		h.handleAssignmentError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func parseAssignmentForm(r *http.Request) (*models.CreateAssignmentRequest, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, err
	}

	req := &models.CreateAssignmentRequest{
		ClassroomID:  r.FormValue("classroom_id"),
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		SubjectTopic: r.FormValue("subject_topic"),
	}

	if due := r.FormValue("due_date"); due != "" {
		parsed, err := time.Parse(time.RFC3339, due)
		if err != nil {
			return nil, err
		}
		req.DueDate = &parsed
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

func (h *Handler) GetAssignmentByID(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	assignment, err := h.assignmentService.GetAssignmentByID(r.Context(), assignmentID)
	if err != nil {
		h.handleAssignmentError(w, err)
		return
	}

	writeSuccess(w, assignment)
}

func (h *Handler) GetAssignmentSubmissions(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "id")
	if assignmentID == "" {
		writeError(w, http.StatusBadRequest, "Assignment ID is required")
		return
	}

	submissions, err := h.submissionService.GetSubmissionsByAssignment(r.Context(), assignmentID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get assignment submissions")
		writeError(w, http.StatusInternalServerError, "Failed to get submissions")
		return
	}

	writeSuccess(w, submissions)
}

func (h *Handler) GetStudentAssignments(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	assignments, err := h.assignmentService.GetStudentAssignments(r.Context(), studentID)
	if err != nil {
		h.handleAssignmentError(w, err)
		return
	}

	writeSuccess(w, assignments)
}

func (h *Handler) handleAssignmentError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch errMsg {
	case "assignment not found", "classroom not found":
		writeError(w, http.StatusNotFound, errMsg)
	case "classroom id and title are required":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("Assignment service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
