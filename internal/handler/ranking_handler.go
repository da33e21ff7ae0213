package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
)

// RankingHandler serves the derived read views: students, raw scores,
// per-round rankings and per-student series.
type RankingHandler struct {
	rankingService *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService *service.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// ListStudents godoc
// GET /api/v1/students
func (h *RankingHandler) ListStudents(c *gin.Context) {
	students, err := h.rankingService.Students(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": students})
}

// ListScores godoc
// GET /api/v1/scores
// Lists every score joined with its exam and student.
func (h *RankingHandler) ListScores(c *gin.Context) {
	scores, err := h.rankingService.Scores(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"scores": scores})
}

// Rankings godoc
// GET /api/v1/rankings[?round=N]
// Standard-competition rankings for every round, ascending, or for one
// round when the query parameter is present.
func (h *RankingHandler) Rankings(c *gin.Context) {
	var roundFilter *int
	if raw := c.Query("round"); raw != "" {
		round, err := strconv.Atoi(raw)
		if err != nil || round < 1 {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		roundFilter = &round
	}

	rankings, err := h.rankingService.Rankings(c.Request.Context(), roundFilter)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rankings": rankings})
}

// StudentSeries godoc
// GET /api/v1/students/:id/series
// One chartable point per round; null scores mark rounds the student
// did not attend and must be rendered as gaps.
func (h *RankingHandler) StudentSeries(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	series, err := h.rankingService.SeriesForStudent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"series": series})
}
