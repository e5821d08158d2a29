package availability

import (
	"context"

	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// StaffFinder is the slice of the appointment repository these use cases
// need to make sure a staff member exists before touching its calendar.
type StaffFinder interface {
	GetStaff(ctx context.Context, id uint) (*models.StaffMember, error)
}
