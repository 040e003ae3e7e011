// Package cart mirrors the server cart locally: a cached item list and
// count, optimistic quantity updates with rollback-by-reload, and the
// selection set consumed by checkout.
package cart

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/models"
)

// ConfirmFunc asks the user to confirm a destructive action. Returning
// false aborts it.
type ConfirmFunc func(prompt string) bool

type Synchronizer struct {
	api     *api.Client
	log     zerolog.Logger
	confirm ConfirmFunc

	mu       sync.Mutex
	items    []models.CartItem
	count    int
	selected map[int64]struct{}
}

type Option func(*Synchronizer)

func WithConfirm(fn ConfirmFunc) Option {
	return func(s *Synchronizer) { s.confirm = fn }
}

func NewSynchronizer(client *api.Client, log zerolog.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		api:      client,
		log:      log,
		selected: map[int64]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the full cart and resets the selection set to all
// selected, the default on (re)load. It doubles as the rollback path:
// on a failed optimistic update the tentative state is discarded and
// replaced wholesale by this authoritative fetch.
func (s *Synchronizer) Load(ctx context.Context) error {
	var cart models.Cart
	if err := s.api.Get(ctx, "/cart", nil, &cart); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = cart.Items
	s.count = sumQuantities(cart.Items)
	s.selected = map[int64]struct{}{}
	for _, item := range cart.Items {
		s.selected[item.ID] = struct{}{}
	}
	return nil
}

// Refresh recomputes the displayed count from the server cart. Called
// on authentication change and after every mutation.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	var cart models.Cart
	if err := s.api.Get(ctx, "/cart", nil, &cart); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = sumQuantities(cart.Items)
	return nil
}

// Reset empties the local mirror without a server call, for logout.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.count = 0
	s.selected = map[int64]struct{}{}
}

func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	var cart models.Cart
	if err := s.api.Post(ctx, "/cart", body, &cart); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyServerCart(cart)
	return nil
}

// UpdateQuantity is a local no-op outside 1..stock: no request is sent
// and no state changes. Within bounds it applies the new quantity
// optimistically, issues the server update, and on failure reloads the
// full cart (last write wins, no merge).
func (s *Synchronizer) UpdateQuantity(ctx context.Context, itemID int64, newQty, stock int) error {
	if newQty < 1 || newQty > stock {
		s.log.Debug().Int64("item_id", itemID).Int("quantity", newQty).Int("stock", stock).
			Msg("quantity out of bounds, ignored")
		return nil
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = newQty
			s.items[i].Subtotal = float64(newQty) * s.items[i].Product.Price
			break
		}
	}
	s.count = sumQuantities(s.items)
	s.mu.Unlock()

	if err := s.api.Put(ctx, fmt.Sprintf("/cart/%d", itemID), map[string]any{"quantity": newQty}, nil); err != nil {
		s.log.Warn().Err(err).Int64("item_id", itemID).Msg("quantity update failed, reloading cart")
		if loadErr := s.Load(ctx); loadErr != nil {
			s.log.Error().Err(loadErr).Msg("cart rollback reload failed")
		}
		return err
	}

	return s.Refresh(ctx)
}

// Remove deletes a cart item after user confirmation. The local item
// and its selection entry go away only once the server delete has
// succeeded, so a removed item can never be carried into checkout.
func (s *Synchronizer) Remove(ctx context.Context, itemID int64) error {
	if s.confirm != nil && !s.confirm("remove this item from the cart?") {
		return nil
	}

	if err := s.api.Delete(ctx, fmt.Sprintf("/cart/%d", itemID)); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.count = sumQuantities(s.items)
	delete(s.selected, itemID)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Clear empties the server cart and the local mirror.
func (s *Synchronizer) Clear(ctx context.Context) error {
	if err := s.api.Delete(ctx, "/cart"); err != nil {
		return err
	}
	s.Reset()
	return nil
}

func (s *Synchronizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *Synchronizer) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CartItem(nil), s.items...)
}

func (s *Synchronizer) ToggleSelect(itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selected[itemID]; ok {
		delete(s.selected, itemID)
	} else {
		s.selected[itemID] = struct{}{}
	}
}

// ToggleSelectAll selects every item, or deselects everything when all
// are already selected.
func (s *Synchronizer) ToggleSelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selected) == len(s.items) {
		s.selected = map[int64]struct{}{}
		return
	}
	for _, item := range s.items {
		s.selected[item.ID] = struct{}{}
	}
}

func (s *Synchronizer) IsSelected(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[itemID]
	return ok
}

// SelectedIDs returns the ids checkout will consume, sorted for
// deterministic request bodies. Checkout itself never mutates the cart;
// the server consumes the items during order creation.
func (s *Synchronizer) SelectedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectedTotal is the amount for the selected subset only.
func (s *Synchronizer) SelectedTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		if _, ok := s.selected[item.ID]; ok {
			total += item.Product.Price * float64(item.Quantity)
		}
	}
	return total
}

func (s *Synchronizer) applyServerCart(cart models.Cart) {
	s.items = cart.Items
	s.count = sumQuantities(cart.Items)

	// Keep only selections that still point at a cart item; newly added
	// items start selected.
	present := map[int64]struct{}{}
	for _, item := range cart.Items {
		present[item.ID] = struct{}{}
		if _, ok := s.selected[item.ID]; !ok {
			s.selected[item.ID] = struct{}{}
		}
	}
	for id := range s.selected {
		if _, ok := present[id]; !ok {
			delete(s.selected, id)
		}
	}
}

func sumQuantities(items []models.CartItem) int {
	var sum int
	for _, item := range items {
		sum += item.Quantity
	}
	return sum
}
