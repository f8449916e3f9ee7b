package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/timebank/backend/internal/models"
)

// table is a thread-safe in-process table keyed by generated identifier. Values are
// stored by copy so callers cannot mutate stored state through returned pointers.
type table[T any] struct {
	mu    sync.RWMutex
	items map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{items: make(map[string]T)}
}

func (t *table[T]) add(id string, item T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[id] = item
	t.order = append(t.order, id)
}

// replace overwrites an existing item and reports whether id was present.
func (t *table[T]) replace(id string, item T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return false
	}
	t.items[id] = item
	return true
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.items[id]
	return item, ok
}

// filter returns matching items, most recently inserted first.
func (t *table[T]) filter(fn func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []T
	for i := len(t.order) - 1; i >= 0; i-- {
		item := t.items[t.order[i]]
		if fn(item) {
			out = append(out, item)
		}
	}
	return out
}

// NewMemoryGateway returns a Gateway over fresh in-process tables with the default
// benefits seeded. State lives as long as the returned value.
func NewMemoryGateway() *Gateway {
	benefits := &memoryBenefits{t: newTable[models.Benefit]()}
	for _, b := range models.DefaultBenefits() {
		b.ID = uuid.NewString()
		benefits.t.add(b.ID, b)
	}
	return &Gateway{
		Mode:        ModeMemory,
		TimeEntries: &memoryTimeEntries{t: newTable[models.TimeEntry]()},
		Credits:     &memoryCredits{t: newTable[models.UserCredits]()},
		Redemptions: &memoryRedemptions{t: newTable[models.RedemptionHistory]()},
		Benefits:    benefits,
	}
}

type memoryTimeEntries struct{ t *table[models.TimeEntry] }

func (m *memoryTimeEntries) Append(_ context.Context, e *models.TimeEntry) error {
	e.ID = uuid.NewString()
	m.t.add(e.ID, *e)
	return nil
}

func (m *memoryTimeEntries) ListByUser(_ context.Context, userID string) ([]*models.TimeEntry, error) {
	items := m.t.filter(func(e models.TimeEntry) bool { return e.UserID == userID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].DateLogged.After(items[j].DateLogged) })
	out := make([]*models.TimeEntry, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (m *memoryTimeEntries) Get(_ context.Context, id string) (*models.TimeEntry, error) {
	e, ok := m.t.get(id)
	if !ok {
		return nil, nil
	}
	return &e, nil
}

type memoryCredits struct{ t *table[models.UserCredits] }

// GetByUser returns the oldest record for the user, matching what a remote query
// without ordering hands back first.
func (m *memoryCredits) GetByUser(_ context.Context, userID string) (*models.UserCredits, error) {
	items := m.t.filter(func(c models.UserCredits) bool { return c.UserID == userID })
	if len(items) == 0 {
		return nil, nil
	}
	c := items[len(items)-1]
	return &c, nil
}

func (m *memoryCredits) Upsert(_ context.Context, c *models.UserCredits) error {
	if c.ID != "" {
		if !m.t.replace(c.ID, *c) {
			return ErrNotFound
		}
		return nil
	}
	c.ID = uuid.NewString()
	m.t.add(c.ID, *c)
	return nil
}

type memoryRedemptions struct {
	t *table[models.RedemptionHistory]
}

func (m *memoryRedemptions) Append(_ context.Context, r *models.RedemptionHistory) error {
	r.ID = uuid.NewString()
	m.t.add(r.ID, *r)
	return nil
}

func (m *memoryRedemptions) ListByUser(_ context.Context, userID string) ([]*models.RedemptionHistory, error) {
	items := m.t.filter(func(r models.RedemptionHistory) bool { return r.UserID == userID })
	sort.SliceStable(items, func(i, j int) bool { return items[i].DateRedeemed.After(items[j].DateRedeemed) })
	out := make([]*models.RedemptionHistory, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out, nil
}

func (m *memoryRedemptions) Get(_ context.Context, id string) (*models.RedemptionHistory, error) {
	r, ok := m.t.get(id)
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *memoryRedemptions) Upsert(ctx context.Context, r *models.RedemptionHistory) error {
	if r.ID == "" {
		return m.Append(ctx, r)
	}
	if !m.t.replace(r.ID, *r) {
		return ErrNotFound
	}
	return nil
}

type memoryBenefits struct{ t *table[models.Benefit] }

func (m *memoryBenefits) Append(_ context.Context, b *models.Benefit) error {
	b.ID = uuid.NewString()
	m.t.add(b.ID, *b)
	return nil
}

// ListActive returns active benefits in the order they were added.
func (m *memoryBenefits) ListActive(_ context.Context) ([]*models.Benefit, error) {
	items := m.t.filter(func(b models.Benefit) bool { return b.IsActive })
	out := make([]*models.Benefit, len(items))
	for i := range items {
		out[len(items)-1-i] = &items[i]
	}
	return out, nil
}
