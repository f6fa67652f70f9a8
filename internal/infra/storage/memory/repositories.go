package memory

import (
	"context"
	"sync"
	"time"

	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
	domainproperty "rentora/internal/domain/property"
)

// PropertyRepository keeps properties in a map. Suitable for tests and the
// memory storage mode.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainproperty.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperty.PropertyID]*domainproperty.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainproperty.ErrPropertyNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	clone.Version++
	r.items[p.ID] = &clone
	p.Version = clone.Version
	return nil
}

// CalendarRepository stores availability calendars per property. A missing
// calendar materializes empty, so properties need no explicit provisioning.
type CalendarRepository struct {
	mu    sync.RWMutex
	items map[domainproperty.PropertyID]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{items: make(map[domainproperty.PropertyID]*domainavailability.Calendar)}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainproperty.PropertyID) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return domainavailability.NewCalendar(id), nil
	}
	clone := *c
	clone.Blocks = append([]domainavailability.Block(nil), c.Blocks...)
	return &clone, nil
}

func (r *CalendarRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *calendar
	clone.Blocks = append([]domainavailability.Block(nil), calendar.Blocks...)
	clone.Version++
	r.items[calendar.PropertyID] = &clone
	calendar.Version = clone.Version
	return nil
}

// BookingRepository keeps bookings in a map with secondary scans for the
// list queries.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ByPaymentRef(ctx context.Context, ref string) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.items {
		if b.PaymentRef == ref {
			return cloneBooking(b), nil
		}
	}
	return nil, domainbooking.ErrBookingNotFound
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveLocked(b)
	return nil
}

func (r *BookingRepository) saveLocked(b *domainbooking.Booking) {
	clone := cloneBooking(b)
	clone.Version++
	r.items[b.ID] = clone
	b.Version = clone.Version
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.GuestID == guestID {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.PropertyID == id {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func (r *BookingRepository) ListByState(ctx context.Context, state domainbooking.BookingState, updatedBefore time.Time) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, b := range r.items {
		if b.State == state && b.UpdatedAt.Before(updatedBefore) {
			out = append(out, cloneBooking(b))
		}
	}
	return out, nil
}

func cloneBooking(b *domainbooking.Booking) *domainbooking.Booking {
	clone := *b
	clone.Audit = append([]domainbooking.AuditEntry(nil), b.Audit...)
	return &clone
}

// ReservationStore serializes reservation commits behind one mutex so a
// single caller at a time re-checks the calendar and persists; racing
// callers for the same dates lose with ErrConflict.
type ReservationStore struct {
	mu        sync.Mutex
	calendars *CalendarRepository
	bookings  *BookingRepository
}

func NewReservationStore(calendars *CalendarRepository, bookings *BookingRepository) *ReservationStore {
	return &ReservationStore{calendars: calendars, bookings: bookings}
}

func (s *ReservationStore) Reserve(ctx context.Context, b *domainbooking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	calendar, err := s.calendars.Calendar(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if err := calendar.Reserve(b.Range, string(b.ID), b.UpdatedAt); err != nil {
		return domainbooking.ErrConflict
	}
	if err := s.calendars.Save(ctx, calendar); err != nil {
		return err
	}
	return s.bookings.Save(ctx, b)
}

func (s *ReservationStore) Release(ctx context.Context, b *domainbooking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	calendar, err := s.calendars.Calendar(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if err := calendar.Release(string(b.ID), b.UpdatedAt); err != nil && err != domainavailability.ErrRangeNotFound {
		return err
	}
	if err := s.calendars.Save(ctx, calendar); err != nil {
		return err
	}
	return s.bookings.Save(ctx, b)
}
