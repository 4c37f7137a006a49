package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"campus-quiz-service/internal/app"
	"campus-quiz-service/internal/domain"
)

// Handler exposes the quiz REST surface. Request and response shapes mirror
// the platform's existing API contract, including its error messages.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register mounts all quiz routes on the router.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	quiz := r.Group("/api/quiz")
	quiz.GET("/status", h.Status)
	quiz.GET("/leaderboard", h.Leaderboard)
	quiz.GET("/leaderboard/live", h.LiveLeaderboard)
	quiz.GET("/check-completion", h.CheckCompletion)
	quiz.POST("/submit", h.Submit)

	admin := r.Group("/api/admin")
	admin.POST("/questions", h.CreateQuestion)
	admin.GET("/questions", h.ListQuestions)
}

type submitRequest struct {
	StudentID string            `json:"studentId"`
	Answers   map[string]string `json:"answers"`
}

type questionRequest struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectOption string            `json:"correctOption"`
}

// Status reports quiz completion for a student; when completed it includes
// the top-10 leaderboard, the student's rank and the total submission count.
func (h *Handler) Status(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Student ID is required."})
		return
	}

	status, err := h.service.Status(c.Request.Context(), studentID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if !status.Completed {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"completed": false,
			"message":   "The student has not yet completed the quiz.",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"completed":     true,
		"leaderboard":   status.Leaderboard.Entries,
		"studentRank":   status.Leaderboard.StudentRank,
		"totalStudents": status.Leaderboard.TotalStudents,
	})
}

// Leaderboard returns the top-10 plus the caller's rank, whether or not the
// caller has submitted.
func (h *Handler) Leaderboard(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Student ID is required."})
		return
	}

	lb, err := h.service.Leaderboard(c.Request.Context(), studentID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"leaderboard":   lb.Entries,
		"studentRank":   lb.StudentRank,
		"totalStudents": lb.TotalStudents,
	})
}

// CheckCompletion returns the full, untruncated ranking plus the student's
// own name, score and the total question count.
func (h *Handler) CheckCompletion(c *gin.Context) {
	studentID := c.Query("studentId")
	if studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Student ID is required."})
		return
	}

	completion, err := h.service.Completion(c.Request.Context(), studentID)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if !completion.Completed {
		c.JSON(http.StatusOK, gin.H{
			"completed": false,
			"message":   "The student has not yet completed the quiz.",
		})
		return
	}
	c.JSON(http.StatusOK, completion)
}

// Submit grades a student's answers. A second submission is rejected with a
// 400 and leaves the stored score untouched.
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == "" || len(req.Answers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Student ID and answers are required."})
		return
	}

	score, err := h.service.Submit(c.Request.Context(), req.StudentID, req.Answers)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "You have already submitted the quiz. Multiple submissions are not allowed.",
			})
			return
		}
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   score,
		"message": "Quiz submitted successfully!",
	})
}

// CreateQuestion adds a question to the quiz. Authorization happens upstream.
func (h *Handler) CreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required."})
		return
	}

	question, err := h.service.CreateQuestion(c.Request.Context(), req.Question, req.Options, req.CorrectOption)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuestionTextRequired), errors.Is(err, domain.ErrOptionsRequired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "All fields are required."})
		case errors.Is(err, domain.ErrInvalidOptionKey):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Option keys must be one of a, b, c, d."})
		case errors.Is(err, domain.ErrCorrectOptionMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Correct option must match one of the provided options."})
		default:
			h.serverError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Question added successfully!",
		"data":    question,
	})
}

// ListQuestions serves the question set with correct answers stripped.
func (h *Handler) ListQuestions(c *gin.Context) {
	questions, err := h.service.ListQuestions(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": questions})
}

func (h *Handler) serverError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
}
