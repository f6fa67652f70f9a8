package dto

import (
	"time"

	"rentora/internal/domain/booking"
)

const dateLayout = "2006-01-02"

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type AuditEntry struct {
	Actor  string    `json:"actor"`
	From   string    `json:"from"`
	To     string    `json:"to"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

type Booking struct {
	ID         string       `json:"id"`
	PropertyID string       `json:"property_id"`
	GuestID    string       `json:"guest_id"`
	HostID     string       `json:"host_id"`
	CheckIn    string       `json:"check_in"`
	CheckOut   string       `json:"check_out"`
	Kind       string       `json:"kind"`
	Months     int          `json:"months,omitempty"`
	Guests     int          `json:"guests"`
	State      string       `json:"state"`
	Quote      Quote        `json:"quote"`
	PaymentRef string       `json:"payment_ref,omitempty"`
	Audit      []AuditEntry `json:"audit,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// ConfirmResult carries the confirmed booking plus the gateway redirect for
// card payments; RedirectURL is empty for cash confirmations.
type ConfirmResult struct {
	Booking     Booking `json:"booking"`
	RedirectURL string  `json:"redirect_url,omitempty"`
}

type SweepReport struct {
	Processed int `json:"processed"`
}

func NewBooking(b *booking.Booking) Booking {
	out := Booking{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		HostID:     string(b.HostID),
		CheckIn:    b.Range.CheckIn.Format(dateLayout),
		CheckOut:   b.Range.CheckOut.Format(dateLayout),
		Kind:       string(b.Kind),
		Months:     b.Months,
		Guests:     b.Guests,
		State:      string(b.State),
		Quote:      NewQuote(b.Quote),
		PaymentRef: b.PaymentRef,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
	for _, entry := range b.Audit {
		out.Audit = append(out.Audit, AuditEntry{
			Actor:  entry.Actor,
			From:   string(entry.From),
			To:     string(entry.To),
			Reason: entry.Reason,
			At:     entry.At,
		})
	}
	return out
}

func NewBookings(items []*booking.Booking) []Booking {
	out := make([]Booking, 0, len(items))
	for _, b := range items {
		out = append(out, NewBooking(b))
	}
	return out
}
