package availability

import (
	"fmt"
	"time"

	"github.com/lessonbook/lessonbook/pkg/schedule"
)

// Policy decides whether a conflict-free candidate placement is bookable at
// all. Two incompatible models exist in this studio's history: every free
// cell bookable by default, or only cells the admin explicitly opened. Both
// are kept and one is selected at construction time.
type Policy interface {
	// Allows reports whether the candidate block may be placed given the set
	// of explicitly opened cells (keyed by UTC slot start).
	Allows(candidate schedule.Interval, open map[time.Time]struct{}, slotMinutes int) bool
}

// DefaultOpenPolicy books any conflict-free cell.
type DefaultOpenPolicy struct{}

func (DefaultOpenPolicy) Allows(schedule.Interval, map[time.Time]struct{}, int) bool {
	return true
}

// DefaultClosedPolicy books only cells the admin opened: every grid sub-slot
// spanned by the candidate block must carry an open mark. A single closed
// sub-slot invalidates the whole placement.
type DefaultClosedPolicy struct{}

func (DefaultClosedPolicy) Allows(candidate schedule.Interval, open map[time.Time]struct{}, slotMinutes int) bool {
	step := time.Duration(slotMinutes) * time.Minute
	for t := candidate.Start; t.Before(candidate.End); t = t.Add(step) {
		if _, ok := open[t.UTC()]; !ok {
			return false
		}
	}
	return true
}

// PolicyFromName resolves the configured policy name.
func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "", "open":
		return DefaultOpenPolicy{}, nil
	case "closed":
		return DefaultClosedPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown availability policy %q", name)
	}
}
