package httpd

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetStudentWeakTopics(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	topics, err := h.studentService.GetWeakTopics(r.Context(), studentID)
	if err != nil {
		h.handleStudentError(w, err)
		return
	}

	writeSuccess(w, topics)
}

func (h *Handler) GetStudentRecommendations(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	if studentID == "" {
		writeError(w, http.StatusBadRequest, "Student ID is required")
		return
	}

	recommendationType := r.URL.Query().Get("type")

	recommendations, err := h.studentService.GetRecommendations(r.Context(), studentID, recommendationType)
	if err != nil {
		h.handleStudentError(w, err)
		return
	}

	writeSuccess(w, recommendations)
}

func (h *Handler) handleStudentError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch errMsg {
	case "student not found":
		writeError(w, http.StatusNotFound, errMsg)
	case "invalid recommendation type":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("Student service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
