// Package memory keeps the whole schedule in process memory. It backs the
// service when STORE_DRIVER=memory and every use case test.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/BruksfildServices01/petcare-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type slotKey struct {
	staffID  uint
	date     string
	timeSlot string
}

type data struct {
	staff        map[uint]models.StaffMember
	services     map[uint]models.Service
	prices       []models.ServicePrice
	clients      map[uint]models.Client
	pets         map[uint]models.Pet
	appointments map[uint]models.Appointment
	slots        map[slotKey]models.AvailabilitySlot
	audit        []models.AuditLog
	nextID       uint
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    *data

	// FailCreate, when set, is returned by the next CreateAppointment.
	FailCreate error
}

func New() *Store {
	return &Store{d: &data{
		staff:        make(map[uint]models.StaffMember),
		services:     make(map[uint]models.Service),
		clients:      make(map[uint]models.Client),
		pets:         make(map[uint]models.Pet),
		appointments: make(map[uint]models.Appointment),
		slots:        make(map[slotKey]models.AvailabilitySlot),
	}}
}

func (s *Store) id() uint {
	s.d.nextID++
	return s.d.nextID
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (s *Store) AddStaff(st models.StaffMember) models.StaffMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.ID == 0 {
		st.ID = s.id()
	}
	s.d.staff[st.ID] = st
	return st
}

func (s *Store) AddService(svc models.Service) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.id()
	}
	s.d.services[svc.ID] = svc
	return svc
}

func (s *Store) AddPrice(p models.ServicePrice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.d.prices = append(s.d.prices, p)
}

func (s *Store) AddClient(c models.Client) models.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.d.clients[c.ID] = c
	return c
}

func (s *Store) AddPet(p models.Pet) models.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.d.pets[p.ID] = p
	return p
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

// Transaction serialises all transactional work and restores the previous
// state when fn fails. Writes made through the Store outside fn wait for
// txMu, so a rollback never discards them.
func (s *Store) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	saved := s.d.clone()
	s.mu.Unlock()

	if err := fn(&tx{Store: s}); err != nil {
		s.mu.Lock()
		// Audit rows are written outside transactions.
		saved.audit = s.d.audit
		saved.nextID = s.d.nextID
		s.d = saved
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) LockStaff(ctx context.Context, staffIDs []uint) error {
	return nil
}

func (s *Store) LockAppointment(ctx context.Context, id uint) error {
	return nil
}

// tx is the Store as seen from inside Transaction. It already holds txMu,
// so its writes go straight to the data.
type tx struct {
	*Store
}

func (t *tx) Transaction(ctx context.Context, fn func(tx domain.Repository) error) error {
	return fn(t)
}

func (t *tx) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.createAppointment(ap)
}

func (t *tx) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return t.updateAppointment(ap)
}

func (t *tx) InsertMissing(ctx context.Context, slots []models.AvailabilitySlot) (int64, error) {
	return t.insertMissing(slots), nil
}

func (t *tx) SetAvailable(ctx context.Context, staffID uint, date string, timeSlots []string, available bool) (int64, error) {
	return t.setAvailable(staffID, date, timeSlots, available), nil
}

func (t *tx) DeleteBefore(ctx context.Context, date string) (int64, error) {
	return t.deleteBefore(date), nil
}

func (d *data) clone() *data {
	cp := &data{
		staff:        make(map[uint]models.StaffMember, len(d.staff)),
		services:     make(map[uint]models.Service, len(d.services)),
		prices:       append([]models.ServicePrice(nil), d.prices...),
		clients:      make(map[uint]models.Client, len(d.clients)),
		pets:         make(map[uint]models.Pet, len(d.pets)),
		appointments: make(map[uint]models.Appointment, len(d.appointments)),
		slots:        make(map[slotKey]models.AvailabilitySlot, len(d.slots)),
		audit:        append([]models.AuditLog(nil), d.audit...),
		nextID:       d.nextID,
	}
	for k, v := range d.staff {
		cp.staff[k] = v
	}
	for k, v := range d.services {
		cp.services[k] = v
	}
	for k, v := range d.clients {
		cp.clients[k] = v
	}
	for k, v := range d.pets {
		cp.pets[k] = v
	}
	for k, v := range d.appointments {
		cp.appointments[k] = copyAppointment(v)
	}
	for k, v := range d.slots {
		cp.slots[k] = v
	}
	return cp
}

func copyAppointment(ap models.Appointment) models.Appointment {
	ap.Assignments = append([]models.AppointmentStaffAssignment(nil), ap.Assignments...)
	return ap
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (s *Store) GetService(ctx context.Context, id uint) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc, ok := s.d.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Service, 0, len(s.d.services))
	for _, svc := range s.d.services {
		if svc.Active {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetStaff(ctx context.Context, id uint) (*models.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.d.staff[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &st, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.StaffMember, 0, len(s.d.staff))
	for _, st := range s.d.staff {
		if st.Active {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve implements appointment.PriceResolver. A breed-specific row wins
// over a size-only row.
func (s *Store) Resolve(ctx context.Context, serviceID uint, breed, size string) (domain.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *models.ServicePrice
	for i := range s.d.prices {
		p := &s.d.prices[i]
		if p.ServiceID != serviceID || !strings.EqualFold(p.Size, size) {
			continue
		}
		if strings.EqualFold(p.Breed, breed) {
			best = p
			break
		}
		if p.Breed == "" && best == nil {
			best = p
		}
	}
	if best == nil {
		return domain.Resolution{}, nil
	}
	return domain.Resolution{Price: best.Price, DurationMin: best.DurationMin}, nil
}

// --------------------------------------------------
// Client / Pet
// --------------------------------------------------

func (s *Store) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.d.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *Store) GetClientByUserID(ctx context.Context, userID string) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.d.clients {
		if c.UserID == userID {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Store) GetPet(ctx context.Context, id uint) (*models.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.d.pets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// --------------------------------------------------
// Day snapshot
// --------------------------------------------------

func (s *Store) ListActiveAssignments(ctx context.Context, staffIDs []uint, date string) ([]models.AppointmentStaffAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := idSet(staffIDs)
	var out []models.AppointmentStaffAssignment
	for _, ap := range s.d.appointments {
		for _, as := range ap.Assignments {
			if as.Active && as.Date == date && want[as.StaffID] {
				out = append(out, as)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMin < out[j].StartMin })
	return out, nil
}

func (s *Store) ListBlockedSlots(ctx context.Context, staffIDs []uint, date string) ([]models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := idSet(staffIDs)
	var out []models.AvailabilitySlot
	for k, slot := range s.d.slots {
		if k.date == date && want[k.staffID] && !slot.Available {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

// CreateAppointment refuses overlapping non-override assignments the same
// way the postgres exclusion constraint does.
func (s *Store) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.createAppointment(ap)
}

func (s *Store) createAppointment(ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		err := s.FailCreate
		s.FailCreate = nil
		return err
	}

	for i, as := range ap.Assignments {
		if !as.Active || as.Override {
			continue
		}
		for _, other := range ap.Assignments[i+1:] {
			if clashes(as, other) {
				return exclusionViolation()
			}
		}
		for _, existing := range s.d.appointments {
			for _, other := range existing.Assignments {
				if clashes(as, other) {
					return exclusionViolation()
				}
			}
		}
	}

	ap.ID = s.id()
	now := time.Now()
	ap.CreatedAt, ap.UpdatedAt = now, now
	for i := range ap.Assignments {
		ap.Assignments[i].ID = s.id()
		ap.Assignments[i].AppointmentID = ap.ID
	}
	s.d.appointments[ap.ID] = copyAppointment(*ap)
	return nil
}

func clashes(a, b models.AppointmentStaffAssignment) bool {
	return b.Active && !b.Override &&
		a.StaffID == b.StaffID && a.Date == b.Date &&
		a.StartMin < b.EndMin && a.EndMin > b.StartMin
}

func exclusionViolation() error {
	return &pgconn.PgError{Code: "23P01", Message: "conflicting key value violates exclusion constraint"}
}

func (s *Store) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ap, ok := s.d.appointments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := s.withRelations(copyAppointment(ap))
	return &cp, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.updateAppointment(ap)
}

func (s *Store) updateAppointment(ap *models.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.d.appointments[ap.ID]; !ok {
		return domain.ErrNotFound
	}
	ap.UpdatedAt = time.Now()
	stored := copyAppointment(*ap)
	stored.Client, stored.Pet = models.Client{}, models.Pet{}
	s.d.appointments[ap.ID] = stored
	return nil
}

func (s *Store) ListAppointmentsForPeriod(ctx context.Context, staffID uint, fromDate, toDate string) ([]models.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Appointment
	for _, ap := range s.d.appointments {
		if ap.Date < fromDate || ap.Date >= toDate {
			continue
		}
		for _, as := range ap.Assignments {
			if as.StaffID == staffID {
				out = append(out, s.withRelations(copyAppointment(ap)))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Store) withRelations(ap models.Appointment) models.Appointment {
	ap.Client = s.d.clients[ap.ClientID]
	ap.Pet = s.d.pets[ap.PetID]
	return ap
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (s *Store) ListSlots(ctx context.Context, staffID uint, date string) ([]models.AvailabilitySlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.AvailabilitySlot
	for k, slot := range s.d.slots {
		if k.staffID == staffID && k.date == date {
			out = append(out, slot)
		}
	}
	sortSlots(out)
	return out, nil
}

func (s *Store) InsertMissing(ctx context.Context, slots []models.AvailabilitySlot) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.insertMissing(slots), nil
}

func (s *Store) insertMissing(slots []models.AvailabilitySlot) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var created int64
	for _, slot := range slots {
		k := slotKey{slot.StaffID, slot.Date, slot.TimeSlot}
		if _, exists := s.d.slots[k]; exists {
			continue
		}
		slot.ID = s.id()
		slot.CreatedAt = time.Now()
		slot.UpdatedAt = slot.CreatedAt
		s.d.slots[k] = slot
		created++
	}
	return created
}

func (s *Store) SetAvailable(ctx context.Context, staffID uint, date string, timeSlots []string, available bool) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.setAvailable(staffID, date, timeSlots, available), nil
}

func (s *Store) setAvailable(staffID uint, date string, timeSlots []string, available bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, ts := range timeSlots {
		k := slotKey{staffID, date, ts}
		slot, ok := s.d.slots[k]
		if !ok {
			continue
		}
		slot.Available = available
		slot.UpdatedAt = time.Now()
		s.d.slots[k] = slot
		affected++
	}
	return affected
}

func (s *Store) DeleteBefore(ctx context.Context, date string) (int64, error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return s.deleteBefore(date), nil
}

func (s *Store) deleteBefore(date string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for k := range s.d.slots {
		if k.date < date {
			delete(s.d.slots, k)
			deleted++
		}
	}
	return deleted
}

// --------------------------------------------------
// Audit
// --------------------------------------------------

func (s *Store) WriteAudit(ctx context.Context, entry models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.id()
	entry.CreatedAt = time.Now()
	s.d.audit = append(s.d.audit, entry)
	return nil
}

func (s *Store) AuditEntries() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.d.audit...)
}

func (s *Store) ListAudit(ctx context.Context, f audit.Filter) ([]models.AuditLog, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.AuditLog
	for i := len(s.d.audit) - 1; i >= 0; i-- {
		e := s.d.audit[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.CreatedAt.Before(*f.To) {
			continue
		}
		matched = append(matched, e)
	}

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[f.Offset:]
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}

func idSet(ids []uint) map[uint]bool {
	out := make(map[uint]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func sortSlots(slots []models.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StaffID != slots[j].StaffID {
			return slots[i].StaffID < slots[j].StaffID
		}
		return slots[i].TimeSlot < slots[j].TimeSlot
	})
}

var (
	_ domain.Repository    = (*Store)(nil)
	_ domain.PriceResolver = (*Store)(nil)
	_ availability.Store   = (*Store)(nil)
	_ audit.Sink           = (*Store)(nil)
	_ audit.Reader         = (*Store)(nil)
)
