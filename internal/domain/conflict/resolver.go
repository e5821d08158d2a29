package conflict

import (
	"fmt"
	"sort"
	"strings"
)

type State string

const (
	StateAvailable   State = "available"
	StateOccupied    State = "occupied"
	StateUnavailable State = "unavailable"
)

// Interval is a half-open [Start, End) window in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && i.End > o.Start
}

func (i Interval) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", i.Start/60, i.Start%60, i.End/60, i.End%60)
}

// Busy is an existing appointment window held by one staff member.
type Busy struct {
	StaffID       uint
	AppointmentID uint
	Interval
}

// Blocked is a stored sub-slot marked not available.
type Blocked struct {
	StaffID uint
	Start   int
}

type Assignment struct {
	StaffID   uint `json:"staff_id"`
	ServiceID uint `json:"service_id"`
}

// Candidate is the booking being checked. Every assigned staff member
// holds the whole window.
type Candidate struct {
	Start       int
	Duration    int
	Assignments []Assignment
}

func (c Candidate) Window() Interval {
	return Interval{Start: c.Start, End: c.Start + c.Duration}
}

// Snapshot is what the store knew about the day when it was read.
type Snapshot struct {
	Busy        []Busy
	Blocked     []Blocked
	StepMinutes int
	StaffNames  map[uint]string
}

type Decision struct {
	Occupied    bool
	Unavailable bool
	Reasons     []string
}

func (d Decision) State() State {
	switch {
	case d.Unavailable:
		return StateUnavailable
	case d.Occupied:
		return StateOccupied
	default:
		return StateAvailable
	}
}

func (d Decision) Reason() string {
	return strings.Join(d.Reasons, "; ")
}

// Evaluate checks the candidate against the snapshot, staff by staff.
// A staff member appearing twice in the candidate conflicts with itself.
func Evaluate(c Candidate, snap Snapshot) Decision {
	var d Decision
	window := c.Window()

	step := snap.StepMinutes
	if step <= 0 {
		step = 10
	}

	seen := make(map[uint]int)
	for _, a := range c.Assignments {
		seen[a.StaffID]++
	}

	staffIDs := make([]uint, 0, len(seen))
	for id := range seen {
		staffIDs = append(staffIDs, id)
	}
	sort.Slice(staffIDs, func(i, j int) bool { return staffIDs[i] < staffIDs[j] })

	for _, staffID := range staffIDs {
		name := snap.name(staffID)

		for _, b := range snap.Blocked {
			if b.StaffID != staffID {
				continue
			}
			if window.Overlaps(Interval{Start: b.Start, End: b.Start + step}) {
				d.Unavailable = true
				d.Reasons = append(d.Reasons, fmt.Sprintf("%s is not available at %02d:%02d", name, b.Start/60, b.Start%60))
				break
			}
		}

		if seen[staffID] > 1 && c.Duration > 0 {
			d.Occupied = true
			d.Reasons = append(d.Reasons, fmt.Sprintf("%s is assigned to more than one service during %s", name, window))
		}

		for _, b := range snap.Busy {
			if b.StaffID != staffID {
				continue
			}
			if window.Overlaps(b.Interval) {
				d.Occupied = true
				d.Reasons = append(d.Reasons, fmt.Sprintf("%s already has appointment #%d during %s", name, b.AppointmentID, b.Interval))
			}
		}
	}

	return d
}

func (s Snapshot) name(staffID uint) string {
	if n, ok := s.StaffNames[staffID]; ok && n != "" {
		return n
	}
	return fmt.Sprintf("staff #%d", staffID)
}

// Overrides are independent gates: bypassing an appointment overlap does
// not bypass a slot the staff member blocked, and the other way round.
type Overrides struct {
	Conflicts    bool `json:"override_conflicts"`
	Availability bool `json:"override_availability"`
}

type Result struct {
	OK         bool   `json:"ok"`
	State      State  `json:"state"`
	Reason     string `json:"reason,omitempty"`
	Overridden bool   `json:"overridden"`
}

// Validate turns a decision into a go/no-go for the given overrides.
// The reason is kept even when an override lets the booking through.
func Validate(c Candidate, snap Snapshot, ov Overrides) Result {
	d := Evaluate(c, snap)
	res := Result{OK: true, State: d.State(), Reason: d.Reason()}

	if d.Unavailable && !ov.Availability {
		res.OK = false
		return res
	}
	if d.Occupied && !ov.Conflicts {
		res.OK = false
		res.State = StateOccupied
		return res
	}
	res.Overridden = d.Occupied || d.Unavailable
	return res
}

// SlotView is one rendered cell of the booking calendar.
type SlotView struct {
	Time  string `json:"time"`
	State State  `json:"state"`
}
