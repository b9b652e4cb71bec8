package httpd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/classmentor/classroom-service/internal/service"
)

type Handler struct {
	classroomService  service.ClassroomService
	assignmentService service.AssignmentService
	submissionService service.SubmissionService
	analysisService   service.AnalysisService
	studentService    service.StudentService
	userService       service.UserService
	logger            zerolog.Logger
}

func NewHandler(
	classroomService service.ClassroomService,
	assignmentService service.AssignmentService,
	submissionService service.SubmissionService,
	analysisService service.AnalysisService,
	studentService service.StudentService,
	userService service.UserService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		classroomService:  classroomService,
		assignmentService: assignmentService,
		submissionService: submissionService,
		analysisService:   analysisService,
		studentService:    studentService,
		userService:       userService,
		logger:            logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.HealthCheck)

	router.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", func(r chi.Router) {
			r.Post("/", h.RegisterUser)
			r.Get("/{id}", h.GetUserByID)
			r.Get("/email/{email}", h.GetUserByEmail)
		})

		api.Route("/classrooms", func(r chi.Router) {
			r.Post("/", h.CreateClassroom)
			r.Get("/", h.GetClassrooms)
			r.Post("/join", h.JoinClassroom)
			r.Get("/{id}", h.GetClassroomByID)
			r.Get("/{id}/students", h.GetClassroomStudents)
			r.Get("/{id}/assignments", h.GetClassroomAssignments)
		})

		api.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.CreateAssignment)
			r.Get("/{id}", h.GetAssignmentByID)
			r.Get("/{id}/submissions", h.GetAssignmentSubmissions)
			r.Get("/{id}/submission", h.GetStudentSubmissionForAssignment)
		})

		api.Route("/submissions", func(r chi.Router) {
			r.Post("/", h.CreateSubmission)
			r.Get("/{id}", h.GetSubmissionByID)
			r.Get("/{id}/status", h.GetSubmissionStatus)
			r.Post("/{id}/analyze", h.AnalyzeSubmission)
			r.Put("/{id}/analysis", h.ReapplyAnalysis)
		})

		api.Route("/students", func(r chi.Router) {
			r.Get("/{id}/assignments", h.GetStudentAssignments)
			r.Get("/{id}/weak-topics", h.GetStudentWeakTopics)
			r.Get("/{id}/recommendations", h.GetStudentRecommendations)
		})

		api.Get("/teachers/{id}/stats", h.GetTeacherStats)

		api.Post("/webhooks/analysis", h.AnalysisWebhook)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "classroom-service",
		"timestamp": time.Now().UTC(),
	}

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}
