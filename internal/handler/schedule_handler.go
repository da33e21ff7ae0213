package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/suneung/mocktrack-backend/internal/model"
	"github.com/suneung/mocktrack-backend/internal/response"
	"github.com/suneung/mocktrack-backend/internal/service"
	"github.com/suneung/mocktrack-backend/internal/validator"
)

const scheduleDateLayout = "2006-01-02"

// ScheduleHandler handles exam schedule CRUD and participation toggles.
type ScheduleHandler struct {
	scheduleService *service.ScheduleService
	storageService  *service.StorageService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService *service.ScheduleService, storageService *service.StorageService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		storageService:  storageService,
	}
}

// ListSchedules godoc
// GET /api/v1/schedules
// Lists all schedules date-ascending with participants and files.
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	schedules, err := h.scheduleService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"schedules": schedules})
}

// CreateSchedule godoc
// POST /api/v1/schedules (gate token required)
// Multipart form: name, date (YYYY-MM-DD), zero or more "files".
// The date must be today or later; that check runs before any blob or
// row is written.
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	rawDate := c.PostForm("date")

	if name == "" || rawDate == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"name": "name and date are required",
		})
		return
	}

	date, err := time.ParseInLocation(scheduleDateLayout, rawDate, time.Local)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
			"date": "date must be formatted YYYY-MM-DD",
		})
		return
	}
	// Reject past dates before touching blob storage.
	if err := h.scheduleService.ValidateDate(date); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrScheduleDatePast)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	var files []model.ScheduleFile
	for _, header := range form.File["files"] {
		src, err := header.Open()
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		meta, err := h.storageService.SaveUpload(src, header)
		src.Close()
		if err != nil {
			// Unlink whatever was stored so far; the schedule rows were
			// never written.
			for _, stored := range files {
				_ = h.storageService.Delete(stored.Path)
			}
			if errors.Is(err, service.ErrFileTooLarge) {
				response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
				return
			}
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		files = append(files, meta)
	}

	schedule, err := h.scheduleService.Create(c.Request.Context(), name, date, files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleDatePast):
			response.Fail(c, http.StatusBadRequest, response.ErrScheduleDatePast)
		case errors.Is(err, service.ErrEmptyScheduleName):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"schedule": schedule})
}

// ToggleParticipant godoc
// PUT /api/v1/schedules/:id/participants/:student
// Idempotent upsert of one student's participation flag.
func (h *ScheduleHandler) ToggleParticipant(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	studentName := strings.TrimSpace(c.Param("student"))
	if studentName == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ToggleParticipantRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.scheduleService.ToggleParticipant(c.Request.Context(), id, studentName, *req.IsParticipating); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"schedule_id":      id,
		"student_name":     studentName,
		"is_participating": *req.IsParticipating,
	})
}

// DeleteSchedule godoc
// DELETE /api/v1/schedules/:id (gate token required)
// Removes the schedule's blobs, metadata, participants and row.
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.scheduleService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// ListScheduleFiles godoc
// GET /api/v1/schedules/:id/files
func (h *ScheduleHandler) ListScheduleFiles(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	files, err := h.scheduleService.ListFiles(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"files": files})
}
