package cart

import (
	"context"
	"slices"
	"sync"
	"time"

	"fresh/apperr"
	"fresh/models"
	"fresh/utils"
)

type cartKey struct{ user, restaurant string }

// MemoryStore is an in-process Store with the same revision semantics as
// the Mongo store.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[cartKey]*models.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[cartKey]*models.Cart)}
}

func cloneCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = make([]models.CartItem, len(c.Items))
	for i, it := range c.Items {
		it.Variants = slices.Clone(it.Variants)
		it.Addons = slices.Clone(it.Addons)
		cp.Items[i] = it
	}
	return &cp
}

func (s *MemoryStore) FindOrCreate(_ context.Context, userID, restaurantID string) (*models.Cart, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cartKey{userID, restaurantID}
	if c, ok := s.carts[k]; ok {
		return cloneCart(c), false, nil
	}
	now := time.Now()
	c := &models.Cart{
		ID:           utils.GetUUID(),
		RestaurantID: restaurantID,
		UserID:       userID,
		Items:        []models.CartItem{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.carts[k] = c
	return cloneCart(c), true, nil
}

func (s *MemoryStore) Find(_ context.Context, userID, restaurantID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[cartKey{userID, restaurantID}]
	if !ok {
		return nil, apperr.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (s *MemoryStore) FindByUser(_ context.Context, userID string) ([]models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Cart{}
	for k, c := range s.carts {
		if k.user == userID {
			out = append(out, *cloneCart(c))
		}
	}
	slices.SortFunc(out, func(a, b models.Cart) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Replace(_ context.Context, c *models.Cart, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cartKey{c.UserID, c.RestaurantID}
	cur, ok := s.carts[k]
	if !ok || cur.ID != c.ID {
		return apperr.ErrCartNotFound
	}
	if cur.Revision != expected {
		return ErrRevisionConflict
	}
	c.Revision = expected + 1
	s.carts[k] = cloneCart(c)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, restaurantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := cartKey{userID, restaurantID}
	if _, ok := s.carts[k]; !ok {
		return apperr.ErrCartNotFound
	}
	delete(s.carts, k)
	return nil
}

// MemoryCatalog serves restaurants, items and users from maps.
type MemoryCatalog struct {
	mu          sync.Mutex
	Restaurants map[string]*models.Restaurant
	Items       map[string]*models.Item
	Users       map[string]*models.User
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		Restaurants: make(map[string]*models.Restaurant),
		Items:       make(map[string]*models.Item),
		Users:       make(map[string]*models.User),
	}
}

func (m *MemoryCatalog) Restaurant(_ context.Context, id string) (*models.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Restaurants[id]
	if !ok {
		return nil, apperr.ErrRestaurantNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryCatalog) Item(_ context.Context, id string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.Items[id]
	if !ok {
		return nil, apperr.ErrItemNotFound
	}
	cp := *it
	return &cp, nil
}

func (m *MemoryCatalog) UserExists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Users[id]
	return ok, nil
}

func (m *MemoryCatalog) AttachCart(_ context.Context, userID, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[userID]
	if !ok {
		return apperr.ErrUserNotFound
	}
	if !slices.Contains(u.Carts, cartID) {
		u.Carts = append(u.Carts, cartID)
	}
	return nil
}
