package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	repo   domain.Repository
	grid   *ucBooking.GetSlotGrid
	check  *ucBooking.CheckConflicts
	create *ucBooking.CreateBooking
}

func NewBookingHandler(
	repo domain.Repository,
	grid *ucBooking.GetSlotGrid,
	check *ucBooking.CheckConflicts,
	create *ucBooking.CreateBooking,
) *BookingHandler {
	return &BookingHandler{
		repo:   repo,
		grid:   grid,
		check:  check,
		create: create,
	}
}

// ======================================================
// SLOT GRID
// ======================================================

func (h *BookingHandler) Slots(c *gin.Context) {
	var sel ucBooking.Selection
	if err := c.ShouldBindQuery(&sel); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	slots, err := h.grid.Execute(c.Request.Context(), sel)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.List(c, slots)
}

// ======================================================
// CHECK
// ======================================================

// Check answers the conflict prompt. 200 with ok=false is a normal answer,
// not an error.
func (h *BookingHandler) Check(c *gin.Context) {
	var in ucBooking.CheckInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	out, err := h.check.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.OK(c, out)
}

// ======================================================
// CREATE
// ======================================================

// Create runs the whole booking flow from one request. Clients always book
// for themselves.
func (h *BookingHandler) Create(c *gin.Context) {
	var req ucBooking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request.")
		return
	}

	actor := middleware.Actor(c)
	if !actor.IsStaff() {
		req.ClientID = 0
		req.ClientUserID = actor.ID
	}

	ctx := c.Request.Context()
	flow := ucBooking.NewFlow(h.repo, h.create)
	if err := flow.Replay(ctx, req); err != nil {
		httperr.FromError(c, err)
		return
	}

	ap, err := flow.Commit(ctx, actor)
	if err != nil {
		httperr.FromError(c, err)
		return
	}
	httpresp.Created(c, ap)
}
