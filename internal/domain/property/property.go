package property

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentora/internal/domain/shared/events"
	"rentora/internal/domain/shared/money"
)

var (
	ErrCapacityRequired = errors.New("property: guest capacity must be at least 1")
	ErrNoRentalTerms    = errors.New("property: at least one rental term must be configured")
	ErrNightlyRate      = errors.New("property: nightly rate must be positive")
	ErrMonthlyRate      = errors.New("property: monthly rate must be positive")
	ErrMinNights        = errors.New("property: min nights must be at least 1")
	ErrMinMonths        = errors.New("property: min months must be at least 1")
	ErrKindNotSupported = errors.New("property: rental kind not supported")
	ErrPropertyNotFound = errors.New("property: not found")
)

type PropertyID string
type HostID string

// RentalKind distinguishes nightly stays from calendar-month terms.
type RentalKind string

const (
	KindDaily   RentalKind = "DAILY"
	KindMonthly RentalKind = "MONTHLY"
)

// DailyTerms holds the configuration required for nightly bookings.
type DailyTerms struct {
	NightlyRate money.Money
	MinNights   int
}

// MonthlyTerms holds the configuration required for monthly bookings.
type MonthlyTerms struct {
	MonthlyRate money.Money
	MinMonths   int
}

// RentalTerms is a variant record: a nil branch means the kind is not
// offered, a present branch carries the fields that kind requires.
type RentalTerms struct {
	Daily   *DailyTerms
	Monthly *MonthlyTerms
}

func (t RentalTerms) Supports(kind RentalKind) bool {
	switch kind {
	case KindDaily:
		return t.Daily != nil
	case KindMonthly:
		return t.Monthly != nil
	default:
		return false
	}
}

func (t RentalTerms) Validate() error {
	if t.Daily == nil && t.Monthly == nil {
		return ErrNoRentalTerms
	}
	if t.Daily != nil {
		if t.Daily.NightlyRate.Amount <= 0 {
			return ErrNightlyRate
		}
		if t.Daily.MinNights < 1 {
			return ErrMinNights
		}
	}
	if t.Monthly != nil {
		if t.Monthly.MonthlyRate.Amount <= 0 {
			return ErrMonthlyRate
		}
		if t.Monthly.MinMonths < 1 {
			return ErrMinMonths
		}
	}
	return nil
}

type Property struct {
	ID            PropertyID
	Host          HostID
	Title         string
	GuestCapacity int
	Terms         RentalTerms
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
	events.EventRecorder
}

// Repository is the read-only property data provider the booking engine
// depends on; property CRUD itself lives outside this service.
type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

type CreateParams struct {
	ID            PropertyID
	Host          HostID
	Title         string
	GuestCapacity int
	Terms         RentalTerms
	Now           time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("property: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("property: host is required")
	}
	if params.GuestCapacity < 1 {
		return nil, ErrCapacityRequired
	}
	if err := params.Terms.Validate(); err != nil {
		return nil, err
	}
	now := params.Now.UTC()
	return &Property{
		ID:            params.ID,
		Host:          params.Host,
		Title:         strings.TrimSpace(params.Title),
		GuestCapacity: params.GuestCapacity,
		Terms:         params.Terms,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}
