package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/suneung/mocktrack-backend/internal/model"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
	"github.com/suneung/mocktrack-backend/internal/validator"
)

// ExamHandler handles exam listing and registration.
type ExamHandler struct {
	examService *service.ExamService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

// ListExams godoc
// GET /api/v1/exams
// Lists all exams ordered by round ascending.
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams, err := h.examService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exams": exams})
}

// NextRound godoc
// GET /api/v1/exams/next-round
// Reports the round a registration committed now would receive, so the
// form can show it after metadata entry.
func (h *ExamHandler) NextRound(c *gin.Context) {
	next, err := h.examService.NextRound(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"next_round": next})
}

// RegisterExam godoc
// POST /api/v1/exams (gate token required)
// Registers one exam with its scores in a single transaction.
func (h *ExamHandler) RegisterExam(c *gin.Context) {
	var req model.RegisterExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyExamName):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		case errors.Is(err, service.ErrNoScores):
			response.Fail(c, http.StatusBadRequest, response.ErrNoScoresProvided)
		case errors.Is(err, service.ErrScoreOutOfRange):
			response.Fail(c, http.StatusBadRequest, response.ErrScoreOutOfRange)
		default:
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// Concurrent registration took the round, or a duplicate
				// (exam, student) pair slipped into the payload.
				response.Fail(c, http.StatusConflict, response.ErrConflict)
				return
			}
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}
