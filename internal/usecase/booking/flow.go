package booking

import (
	"context"
	"sync"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type Step string

const (
	StepSelectingClientPetService Step = "selecting_client_pet_service"
	StepSelectingStaff            Step = "selecting_staff"
	StepSelectingDateTime         Step = "selecting_date_time"
	StepConfirmed                 Step = "confirmed"
	StepRejected                  Step = "rejected"
)

// Flow walks one BookingRequest from service choice to commit. Nothing is
// written before Commit, so dropping a Flow has no side effects.
type Flow struct {
	mu       sync.Mutex
	step     Step
	req      BookingRequest
	roles    []domain.Role
	inFlight bool
	lastErr  error

	repo   domain.Repository
	create *CreateBooking
}

func NewFlow(repo domain.Repository, create *CreateBooking) *Flow {
	return &Flow{
		step:   StepSelectingClientPetService,
		repo:   repo,
		create: create,
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Request returns a copy of the request collected so far.
func (f *Flow) Request() BookingRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.req
}

// RequiredRoles is known once services are chosen.
func (f *Flow) RequiredRoles() []domain.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Role(nil), f.roles...)
}

// Err is why the last commit was rejected.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// ------------------------------------------------------
// Steps
// ------------------------------------------------------

// SelectServices records client, pet and services. Going back to this step
// clears the staff and time picked earlier.
func (f *Flow) SelectServices(
	ctx context.Context,
	clientID uint,
	clientUserID string,
	petID uint,
	primaryServiceID uint,
	secondaryServiceID *uint,
) error {

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}

	if primaryServiceID == 0 || petID == 0 || (clientID == 0 && clientUserID == "") {
		return httperr.ErrValidation("invalid_request")
	}
	if secondaryServiceID != nil && *secondaryServiceID == primaryServiceID {
		return httperr.ErrValidation("invalid_request").Arg("secondary_service_id", *secondaryServiceID)
	}

	services := make([]models.Service, 0, 2)
	for _, id := range append([]uint{primaryServiceID}, derefAll(secondaryServiceID)...) {
		svc, err := f.repo.GetService(ctx, id)
		if err != nil {
			return notFound(err, "service_not_found", "service_id", id)
		}
		services = append(services, *svc)
	}

	f.req = BookingRequest{
		ClientID:           clientID,
		ClientUserID:       clientUserID,
		PetID:              petID,
		PrimaryServiceID:   primaryServiceID,
		SecondaryServiceID: secondaryServiceID,
		Notes:              f.req.Notes,
		ExtraFee:           f.req.ExtraFee,
	}
	f.roles = domain.RequiredRoles(services...)
	f.step = StepSelectingStaff
	return nil
}

// SelectStaff assigns staff to the chosen services. Every service must have
// someone able to perform it before a date can be picked.
func (f *Flow) SelectStaff(
	ctx context.Context,
	primaryStaffID uint,
	secondaryStaffID *uint,
) error {

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	if f.step == StepSelectingClientPetService {
		return httperr.ErrValidation("services_not_selected")
	}

	pairs := []struct {
		serviceID uint
		staffID   *uint
	}{
		{f.req.PrimaryServiceID, &primaryStaffID},
	}
	if f.req.SecondaryServiceID != nil {
		pairs = append(pairs, struct {
			serviceID uint
			staffID   *uint
		}{*f.req.SecondaryServiceID, secondaryStaffID})
	}

	for _, p := range pairs {
		if p.staffID == nil || *p.staffID == 0 {
			return httperr.ErrValidation("staff_not_selected").Arg("service_id", p.serviceID)
		}
		svc, err := f.repo.GetService(ctx, p.serviceID)
		if err != nil {
			return notFound(err, "service_not_found", "service_id", p.serviceID)
		}
		st, err := f.repo.GetStaff(ctx, *p.staffID)
		if err != nil {
			return notFound(err, "staff_not_found", "staff_id", *p.staffID)
		}
		if !st.Active || !domain.CanPerform(*st, *svc) {
			return httperr.ErrValidation("staff_not_capable").
				Arg("staff_id", st.ID).
				Arg("service_id", svc.ID)
		}
	}

	f.req.PrimaryStaffID = primaryStaffID
	f.req.SecondaryStaffID = nil
	if f.req.SecondaryServiceID != nil {
		f.req.SecondaryStaffID = secondaryStaffID
	}
	f.req.Date, f.req.Time = "", ""
	f.step = StepSelectingDateTime
	return nil
}

// SelectDateTime picks the slot. Allowed again after a rejection so the
// user can try another time.
func (f *Flow) SelectDateTime(date, startTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inFlight {
		return httperr.ErrValidation("commit_in_flight")
	}
	if f.step != StepSelectingDateTime && f.step != StepRejected {
		return httperr.ErrValidation("staff_not_selected")
	}

	f.req.Date, f.req.Time = date, startTime
	f.step = StepSelectingDateTime
	f.lastErr = nil
	return nil
}

func (f *Flow) SetDetails(notes string, extraFee float64, ov conflict.Overrides) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.editable(); err != nil {
		return err
	}
	f.req.Notes = notes
	f.req.ExtraFee = extraFee
	f.req.Overrides = ov
	return nil
}

// Replay drives a fresh flow through every step with a request built
// elsewhere, e.g. received over HTTP in one piece.
func (f *Flow) Replay(ctx context.Context, req BookingRequest) error {
	if err := f.SelectServices(ctx, req.ClientID, req.ClientUserID, req.PetID, req.PrimaryServiceID, req.SecondaryServiceID); err != nil {
		return err
	}
	if err := f.SelectStaff(ctx, req.PrimaryStaffID, req.SecondaryStaffID); err != nil {
		return err
	}
	if err := f.SelectDateTime(req.Date, req.Time); err != nil {
		return err
	}
	return f.SetDetails(req.Notes, req.ExtraFee, req.Overrides)
}

// ------------------------------------------------------
// Commit
// ------------------------------------------------------

// Commit hands the request to CreateBooking. A second Commit while one is
// running is refused instead of queued.
func (f *Flow) Commit(ctx context.Context, actor audit.Actor) (*models.Appointment, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, httperr.ErrValidation("commit_in_flight")
	}
	if f.step != StepSelectingDateTime || f.req.Date == "" || f.req.Time == "" {
		step := f.step
		f.mu.Unlock()
		return nil, httperr.ErrValidation("flow_incomplete").Arg("step", step)
	}
	f.inFlight = true
	req := f.req
	f.mu.Unlock()

	ap, err := f.create.Execute(ctx, req, actor)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if err != nil {
		f.step = StepRejected
		f.lastErr = err
		return nil, err
	}
	f.step = StepConfirmed
	return ap, nil
}

func (f *Flow) editable() error {
	if f.inFlight {
		return httperr.ErrValidation("commit_in_flight")
	}
	if f.step == StepConfirmed {
		return httperr.ErrValidation("flow_finished")
	}
	return nil
}

func derefAll(ids ...*uint) []uint {
	var out []uint
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out
}
