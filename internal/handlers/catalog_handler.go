package handlers

import (
	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type CatalogHandler struct {
	repo domain.Repository
}

func NewCatalogHandler(repo domain.Repository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

// ======================================================
// SERVICES
// ======================================================

func (h *CatalogHandler) Services(c *gin.Context) {
	services, err := h.repo.ListServices(c.Request.Context())
	if err != nil {
		httperr.FromError(c, httperr.ErrPersistence("services_read_failed", err))
		return
	}
	httpresp.List(c, services)
}

// ======================================================
// STAFF
// ======================================================

// Staff lists active staff, optionally only those able to do ?role=.
func (h *CatalogHandler) Staff(c *gin.Context) {
	var role domain.Role
	if raw := c.Query("role"); raw != "" {
		r, ok := domain.ParseRole(raw)
		if !ok {
			httperr.BadRequest(c, "invalid_role", "Unknown staff role.")
			return
		}
		role = r
	}

	staff, err := h.repo.ListStaff(c.Request.Context())
	if err != nil {
		httperr.FromError(c, httperr.ErrPersistence("staff_read_failed", err))
		return
	}

	if role != "" {
		filtered := make([]models.StaffMember, 0, len(staff))
		for _, s := range staff {
			if domain.HasRole(s, role) {
				filtered = append(filtered, s)
			}
		}
		staff = filtered
	}

	httpresp.List(c, staff)
}
