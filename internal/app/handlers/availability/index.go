package availability

import (
	"context"
	"sync"

	"rentora/internal/app/support"
	"rentora/internal/app/uow"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
)

// CachedIndex is an advisory, read-optimized view of property calendars.
// It answers availability probes without a database round trip and is
// refreshed periodically; the authoritative conflict check stays with the
// reservation store.
type CachedIndex struct {
	factory uow.UoWFactory

	mu      sync.RWMutex
	blocked map[property.PropertyID][]daterange.DateRange
}

func NewCachedIndex(factory uow.UoWFactory) *CachedIndex {
	return &CachedIndex{
		factory: factory,
		blocked: make(map[property.PropertyID][]daterange.DateRange),
	}
}

// Track registers a property for periodic refresh.
func (i *CachedIndex) Track(id property.PropertyID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.blocked[id]; !ok {
		i.blocked[id] = nil
	}
}

// IsLikelyFree reports whether the cached view has no overlap for the
// range. Untracked properties report free; callers must still reserve
// through the authoritative path.
func (i *CachedIndex) IsLikelyFree(id property.PropertyID, dr daterange.DateRange) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	for _, blocked := range i.blocked[id] {
		if blocked.Overlaps(dr) {
			return false
		}
	}
	return true
}

// Refresh reloads the calendars of all tracked properties.
func (i *CachedIndex) Refresh(ctx context.Context) error {
	i.mu.RLock()
	ids := make([]property.PropertyID, 0, len(i.blocked))
	for id := range i.blocked {
		ids = append(ids, id)
	}
	i.mu.RUnlock()

	fresh := make(map[property.PropertyID][]daterange.DateRange, len(ids))
	err := support.WithReadOnlyUnit(ctx, i.factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		for _, id := range ids {
			calendar, err := unit.Availability().Calendar(ctx, id)
			if err != nil {
				return err
			}
			ranges := make([]daterange.DateRange, 0, len(calendar.Blocks))
			for _, block := range calendar.Blocks {
				ranges = append(ranges, block.Range)
			}
			fresh[id] = ranges
		}
		return nil
	})
	if err != nil {
		return err
	}

	i.mu.Lock()
	for id, ranges := range fresh {
		i.blocked[id] = ranges
	}
	i.mu.Unlock()
	return nil
}
