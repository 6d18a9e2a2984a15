package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

// ParseBookingStatus matches s case-insensitively against the known statuses.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	for _, st := range []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, true
		}
	}
	return "", false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// CanTransitionTo reports whether the state machine allows s -> next.
// Terminal states have no outgoing edges, including self-loops.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled || next == BookingCompleted
	default:
		return false
	}
}

// IsSettableTarget reports whether next may be requested through a status
// update. Pending is only ever the initial state.
func IsSettableTarget(next BookingStatus) bool {
	return next == BookingConfirmed || next == BookingCancelled || next == BookingCompleted
}

// PermittedFor reports whether an actor with the given relation to the
// booking may move it to target.
func PermittedFor(target BookingStatus, isGuest, isHost bool) bool {
	switch target {
	case BookingConfirmed, BookingCompleted:
		return isHost
	case BookingCancelled:
		return isGuest || isHost
	default:
		return false
	}
}

// Booking dates are calendar dates at UTC midnight; the interval is closed.
type Booking struct {
	ID            int64         `json:"id"`
	PropertyID    int64         `json:"property_id"`
	GuestID       int64         `json:"guest_id"`
	StartDate     time.Time     `json:"start_date"`
	EndDate       time.Time     `json:"end_date"`
	Guests        int           `json:"guests"`
	TotalPrice    float64       `json:"total_price"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	PropertyTitle string        `json:"property_title,omitempty"`
	PropertyCity  string        `json:"property_city,omitempty"`
	HostID        int64         `json:"host_id,omitempty"`
	GuestName     string        `json:"guest_name,omitempty"`
}

// Overlaps reports whether the closed intervals [b.StartDate, b.EndDate]
// and [start, end] intersect.
func (b Booking) Overlaps(start, end time.Time) bool {
	return !b.StartDate.After(end) && !start.After(b.EndDate)
}
