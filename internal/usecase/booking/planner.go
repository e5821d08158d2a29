package booking

import (
	"context"
	"errors"
	"sort"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/conflict"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/schedule"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timezone"
)

// plan is a selection resolved against the catalog and priced.
type plan struct {
	date     timezone.DateParts
	services []models.Service
	staff    []models.StaffMember
	pet      *models.Pet
	totals   domain.Totals
	names    map[uint]string
}

func (p *plan) staffIDs() []uint {
	seen := make(map[uint]bool, len(p.staff))
	var ids []uint
	for _, s := range p.staff {
		if !seen[s.ID] {
			seen[s.ID] = true
			ids = append(ids, s.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// candidate puts every (service, staff) pair on the same window.
func (p *plan) candidate(start int) conflict.Candidate {
	c := conflict.Candidate{Start: start, Duration: p.totals.DurationMin}
	for i := range p.services {
		c.Assignments = append(c.Assignments, conflict.Assignment{
			StaffID:   p.staff[i].ID,
			ServiceID: p.services[i].ID,
		})
	}
	return c
}

// Planner resolves selections against the catalog and price table. The
// read-side use cases share one.
type Planner struct {
	p *planner
}

func NewPlanner(
	repo domain.Repository,
	prices domain.PriceResolver,
	calendar *schedule.Calendar,
) *Planner {
	return &Planner{p: &planner{repo: repo, prices: prices, calendar: calendar}}
}

type planner struct {
	repo     domain.Repository
	prices   domain.PriceResolver
	calendar *schedule.Calendar
}

// build checks the date, the services and the staff picked for them, then
// prices the result for the pet when one is given.
func (p *planner) build(ctx context.Context, sel Selection, extraFee float64) (*plan, error) {
	if err := validate.Struct(sel); err != nil {
		return nil, httperr.ErrValidation("invalid_request").Wrap(err)
	}
	if sel.SecondaryServiceID != nil && *sel.SecondaryServiceID == sel.PrimaryServiceID {
		return nil, httperr.ErrValidation("invalid_request").
			Arg("secondary_service_id", *sel.SecondaryServiceID)
	}

	date, err := timezone.ParseDate(sel.Date)
	if err != nil {
		return nil, httperr.ErrValidation("invalid_date").Arg("date", sel.Date)
	}
	if err := p.calendar.CheckDate(date); err != nil {
		return nil, err
	}

	out := &plan{date: date, names: make(map[uint]string)}

	staffIDs := sel.staffIDs()
	for i, serviceID := range sel.serviceIDs() {
		svc, err := p.service(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		st, err := p.staffMember(ctx, staffIDs[i])
		if err != nil {
			return nil, err
		}
		if !domain.CanPerform(*st, *svc) {
			return nil, httperr.ErrValidation("staff_not_capable").
				Arg("staff_id", st.ID).
				Arg("service_id", svc.ID)
		}
		out.services = append(out.services, *svc)
		out.staff = append(out.staff, *st)
		out.names[st.ID] = st.Name
	}

	if sel.PetID != nil && *sel.PetID != 0 {
		pet, err := p.repo.GetPet(ctx, *sel.PetID)
		if err != nil {
			return nil, notFound(err, "pet_not_found", "pet_id", *sel.PetID)
		}
		out.pet = pet
	}

	var breed, size string
	if out.pet != nil {
		breed, size = out.pet.Breed, out.pet.Size
	}

	lines := make([]domain.Line, 0, len(out.services))
	for _, svc := range out.services {
		res, err := p.prices.Resolve(ctx, svc.ID, breed, size)
		if err != nil {
			return nil, httperr.ErrPersistence("price_resolve_failed", err).Arg("service_id", svc.ID)
		}
		lines = append(lines, domain.PriceLine(svc, res))
	}
	out.totals = domain.Aggregate(lines, extraFee)

	if out.totals.DurationMin <= 0 {
		return nil, httperr.ErrValidation("invalid_duration")
	}

	return out, nil
}

// startMinute parses the requested start and checks it against the day.
func (p *planner) startMinute(pl *plan, raw string) (int, error) {
	start, err := schedule.ParseMinutes(raw)
	if err != nil {
		return 0, err
	}
	if start%p.calendar.Config().StepMinutes != 0 {
		return 0, httperr.ErrValidation("invalid_time").Arg("time", raw)
	}
	if pl.date == p.calendar.Today() && start < p.calendar.NowMinutes() {
		return 0, httperr.ErrValidation("time_in_past").Arg("time", raw)
	}
	if !p.calendar.WithinBusinessHours(pl.date, start, start+pl.totals.DurationMin) {
		return 0, httperr.ErrValidation("outside_business_hours").
			Arg("date", pl.date.String()).
			Arg("time", raw).
			Arg("duration", pl.totals.DurationMin)
	}
	return start, nil
}

func (p *planner) service(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := p.repo.GetService(ctx, id)
	if err != nil {
		return nil, notFound(err, "service_not_found", "service_id", id)
	}
	if !svc.Active {
		return nil, httperr.ErrValidation("service_inactive").Arg("service_id", id)
	}
	return svc, nil
}

func (p *planner) staffMember(ctx context.Context, id uint) (*models.StaffMember, error) {
	st, err := p.repo.GetStaff(ctx, id)
	if err != nil {
		return nil, notFound(err, "staff_not_found", "staff_id", id)
	}
	if !st.Active {
		return nil, httperr.ErrValidation("staff_inactive").Arg("staff_id", id)
	}
	return st, nil
}

// snapshot reads the day as seen by repo. Inside a transaction that is
// the locked, authoritative view.
func snapshot(
	ctx context.Context,
	repo domain.Repository,
	staffIDs []uint,
	date string,
	step int,
	names map[uint]string,
) (conflict.Snapshot, error) {

	snap := conflict.Snapshot{StepMinutes: step, StaffNames: names}

	assignments, err := repo.ListActiveAssignments(ctx, staffIDs, date)
	if err != nil {
		return snap, httperr.ErrPersistence("appointments_read_failed", err).
			Arg("staff_ids", staffIDs).
			Arg("date", date)
	}
	for _, as := range assignments {
		snap.Busy = append(snap.Busy, conflict.Busy{
			StaffID:       as.StaffID,
			AppointmentID: as.AppointmentID,
			Interval:      conflict.Interval{Start: as.StartMin, End: as.EndMin},
		})
	}

	blocked, err := repo.ListBlockedSlots(ctx, staffIDs, date)
	if err != nil {
		return snap, httperr.ErrPersistence("availability_read_failed", err).
			Arg("staff_ids", staffIDs).
			Arg("date", date)
	}
	for _, b := range blocked {
		m, err := schedule.ParseMinutes(b.TimeSlot)
		if err != nil {
			continue
		}
		snap.Blocked = append(snap.Blocked, conflict.Blocked{StaffID: b.StaffID, Start: m})
	}

	return snap, nil
}

func notFound(err error, code, key string, id uint) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrValidation(code).Arg(key, id)
	}
	return httperr.ErrPersistence("catalog_read_failed", err).Arg(key, id)
}
