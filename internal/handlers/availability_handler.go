package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucAvailability "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/availability"
)

// ======================================================
// HANDLER
// ======================================================

type AvailabilityHandler struct {
	getSlots *ucAvailability.GetSlots
	generate *ucAvailability.BulkGenerate
	anchor   *ucAvailability.ToggleAnchor
	day      *ucAvailability.SetDayAvailability
	purge    *ucAvailability.PurgeAvailability
}

func NewAvailabilityHandler(
	getSlots *ucAvailability.GetSlots,
	generate *ucAvailability.BulkGenerate,
	anchor *ucAvailability.ToggleAnchor,
	day *ucAvailability.SetDayAvailability,
	purge *ucAvailability.PurgeAvailability,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		getSlots: getSlots,
		generate: generate,
		anchor:   anchor,
		day:      day,
		purge:    purge,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type GenerateAvailabilityRequest struct {
	StaffID          uint   `json:"staff_id" binding:"required"`
	From             string `json:"from" binding:"required"`
	To               string `json:"to" binding:"required"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	DefaultAvailable *bool  `json:"default_available"`
}

type ToggleAvailabilityRequest struct {
	StaffID   uint   `json:"staff_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time"`
	Available *bool  `json:"available" binding:"required"`
}

// ======================================================
// READ
// ======================================================

func (h *AvailabilityHandler) Get(c *gin.Context) {
	staffID, ok := uintParam(c, "staffID")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.BadRequest(c, "missing_date", "Date is required.")
		return
	}

	slots, err := h.getSlots.Execute(c.Request.Context(), staffID, date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, slots)
}

// ======================================================
// GENERATE
// ======================================================

func (h *AvailabilityHandler) Generate(c *gin.Context) {
	var req GenerateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	res, err := h.generate.Execute(c.Request.Context(), ucAvailability.BulkGenerateInput{
		StaffID:          req.StaffID,
		From:             req.From,
		To:               req.To,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		DefaultAvailable: req.DefaultAvailable,
		Actor:            middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, res)
}

// ======================================================
// TOGGLE
// ======================================================

// Anchor toggles the sub-slots of one anchor. Nothing generated yet for
// that anchor is reported, not silently accepted.
func (h *AvailabilityHandler) Anchor(c *gin.Context) {
	var req ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Time == "" {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	updated, err := h.anchor.Execute(c.Request.Context(), ucAvailability.ToggleInput{
		StaffID:   req.StaffID,
		Date:      req.Date,
		Available: *req.Available,
		Actor:     middleware.Actor(c),
	}, req.Time)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if updated == 0 {
		httperr.NotFound(c, "no_slots_affected", "No availability exists for that time; generate it first.")
		return
	}
	httpresp.OK(c, gin.H{"updated": updated})
}

func (h *AvailabilityHandler) Day(c *gin.Context) {
	var req ToggleAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	updated, err := h.day.Execute(c.Request.Context(), ucAvailability.ToggleInput{
		StaffID:   req.StaffID,
		Date:      req.Date,
		Available: *req.Available,
		Actor:     middleware.Actor(c),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	if updated == 0 {
		httperr.NotFound(c, "no_slots_affected", "No availability exists for that day; generate it first.")
		return
	}
	httpresp.OK(c, gin.H{"updated": updated})
}

// ======================================================
// PURGE
// ======================================================

func (h *AvailabilityHandler) Purge(c *gin.Context) {
	before := c.Query("before")
	if before == "" {
		httperr.BadRequest(c, "missing_before", "Query parameter before is required.")
		return
	}

	deleted, err := h.purge.Execute(c.Request.Context(), before, middleware.Actor(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"deleted": deleted})
}
