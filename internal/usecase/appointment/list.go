package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/dto"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

// ListAppointments answers the staff agenda views, one day or one month.
type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) ByDate(
	ctx context.Context,
	staffID uint,
	date string,
) ([]dto.AppointmentListDTO, error) {

	day, err := timezone.ParseDate(date)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date").Arg("date", date)
	}
	return uc.period(ctx, staffID, day, day.AddDays(1))
}

func (uc *ListAppointments) ByMonth(
	ctx context.Context,
	staffID uint,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if year < 2000 || month < 1 || month > 12 {
		return nil, httperr.ErrValidation("invalid_month").Arg("year", year).Arg("month", month)
	}
	first := timezone.DateParts{Year: year, Month: time.Month(month), Day: 1}
	next := timezone.PartsIn(first.Midnight(time.UTC).AddDate(0, 1, 0), time.UTC)
	return uc.period(ctx, staffID, first, next)
}

func (uc *ListAppointments) period(
	ctx context.Context,
	staffID uint,
	from timezone.DateParts,
	to timezone.DateParts,
) ([]dto.AppointmentListDTO, error) {

	if _, err := uc.repo.GetStaff(ctx, staffID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, httperr.ErrValidation("staff_not_found").Arg("staff_id", staffID)
		}
		return nil, httperr.ErrPersistence("staff_read_failed", err).Arg("staff_id", staffID)
	}

	appointments, err := uc.repo.ListAppointmentsForPeriod(ctx, staffID, from.String(), to.String())
	if err != nil {
		return nil, httperr.ErrPersistence("appointments_read_failed", err).
			Arg("staff_id", staffID).
			Arg("from", from.String())
	}

	names := map[uint]string{}
	serviceName := func(id uint) string {
		if n, ok := names[id]; ok {
			return n
		}
		svc, err := uc.repo.GetService(ctx, id)
		if err != nil {
			return ""
		}
		names[id] = svc.Name
		return svc.Name
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, toListDTO(ap, serviceName))
	}

	return out, nil
}

func toListDTO(ap models.Appointment, serviceName func(uint) string) dto.AppointmentListDTO {
	item := dto.AppointmentListDTO{
		ID:          ap.ID,
		Date:        ap.Date,
		StartTime:   ap.Time,
		DurationMin: ap.DurationMin,
		Status:      ap.Status,
		ClientName:  ap.Client.Name,
		PetName:     ap.Pet.Name,
		TotalPrice:  ap.TotalPrice,
		Override:    ap.OverrideConflicts || ap.OverrideAvailability,
		Services:    []string{serviceName(ap.PrimaryServiceID)},
	}
	if start, err := schedule.ParseMinutes(ap.Time); err == nil {
		item.EndTime = schedule.FormatMinutes(start + ap.DurationMin)
	}
	if ap.SecondaryServiceID != nil {
		item.Services = append(item.Services, serviceName(*ap.SecondaryServiceID))
	}
	for _, as := range ap.Assignments {
		item.StaffIDs = append(item.StaffIDs, as.StaffID)
	}
	return item
}
