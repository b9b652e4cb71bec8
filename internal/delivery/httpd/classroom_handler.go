package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/classmentor/classroom-service/internal/models"
)

func (h *Handler) CreateClassroom(w http.ResponseWriter, r *http.Request) {
	var req models.CreateClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.TeacherID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "teacher_id and name are required")
		return
	}

	classroom, err := h.classroomService.CreateClassroom(r.Context(), &req)
	if err != nil {
		h.handleClassroomError(w, err)
		return
	}

	writeSuccess(w, classroom)
}

// GetClassrooms lists classrooms for either a teacher or a student, depending
// on which query parameter is present.
func (h *Handler) GetClassrooms(w http.ResponseWriter, r *http.Request) {
	teacherID := r.URL.Query().Get("teacher_id")
	studentID := r.URL.Query().Get("student_id")

	switch {
	case teacherID != "":
		classrooms, err := h.classroomService.GetTeacherClassrooms(r.Context(), teacherID)
		if err != nil {
			h.handleClassroomError(w, err)
			return
		}
		writeSuccess(w, classrooms)
	case studentID != "":
		classrooms, err := h.classroomService.GetStudentClassrooms(r.Context(), studentID)
		if err != nil {
			h.handleClassroomError(w, err)
			return
		}
		writeSuccess(w, classrooms)
	default:
		writeError(w, http.StatusBadRequest, "teacher_id or student_id query parameter is required")
	}
}

func (h *Handler) GetClassroomByID(w http.ResponseWriter, r *http.Request) {
	classroomID := chi.URLParam(r, "id")
	if classroomID == "" {
		writeError(w, http.StatusBadRequest, "Classroom ID is required")
		return
	}

	classroom, err := h.classroomService.GetClassroomByID(r.Context(), classroomID)
	if err != nil {
		h.handleClassroomError(w, err)
		return
	}

	writeSuccess(w, classroom)
}

func (h *Handler) JoinClassroom(w http.ResponseWriter, r *http.Request) {
	var req models.JoinClassroomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.StudentID == "" || req.ClassCode == "" {
		writeError(w, http.StatusBadRequest, "student_id and class_code are required")
		return
	}

	classroom, err := h.classroomService.JoinClassroom(r.Context(), &req)
	if err != nil {
		h.handleClassroomError(w, err)
		return
	}

	writeSuccess(w, classroom)
}

func (h *Handler) GetClassroomStudents(w http.ResponseWriter, r *http.Request) {
	classroomID := chi.URLParam(r, "id")
	if classroomID == "" {
		writeError(w, http.StatusBadRequest, "Classroom ID is required")
		return
	}

	students, err := h.classroomService.GetClassroomStudents(r.Context(), classroomID)
	if err != nil {
		h.handleClassroomError(w, err)
		return
	}

	writeSuccess(w, students)
}

func (h *Handler) GetClassroomAssignments(w http.ResponseWriter, r *http.Request) {
	classroomID := chi.URLParam(r, "id")
	if classroomID == "" {
		writeError(w, http.StatusBadRequest, "Classroom ID is required")
		return
	}

	assignments, err := h.assignmentService.GetClassroomAssignments(r.Context(), classroomID)
	if err != nil {
		h.handleClassroomError(w, err)
		return
	}

	writeSuccess(w, assignments)
}

func (h *Handler) GetTeacherStats(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "id")
	if teacherID == "" {
		writeError(w, http.StatusBadRequest, "Teacher ID is required")
		return
	}

	stats, err := h.classroomService.GetTeacherStats(r.Context(), teacherID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to get teacher stats")
		writeError(w, http.StatusInternalServerError, "Failed to get teacher stats")
		return
	}

	writeSuccess(w, stats)
}

func (h *Handler) handleClassroomError(w http.ResponseWriter, err error) {
	errMsg := err.Error()

	switch errMsg {
	case "classroom not found":
		writeError(w, http.StatusNotFound, errMsg)
	case "invalid class code":
		writeError(w, http.StatusNotFound, errMsg)
	case "teacher id and name are required", "student id and class code are required":
		writeError(w, http.StatusBadRequest, errMsg)
	default:
		h.logger.Error().Err(err).Msg("Classroom service error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
