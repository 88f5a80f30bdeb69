package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Direction string

const (
	Inc Direction = "inc"
	Dec Direction = "dec"
)

// ErrCheckoutInProgress is returned by mutating operations while a checkout
// session holds the cart.
var ErrCheckoutInProgress = &domain.Error{
	Kind:    domain.KindValidation,
	Op:      "cart",
	Message: "cart is locked while checkout is in progress",
}

// Engine owns the cart entries and the running totals. Totals are maintained
// incrementally: every mutation updates the list and both totals under the
// same lock, they are never recomputed from the list.
type Engine struct {
	mu              sync.RWMutex
	entries         []domain.CartEntry
	totalPrice      decimal.Decimal
	totalQuantities int
	frozen          int
	observers       []func(domain.Cart)
	log             *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		totalPrice: decimal.Zero,
		log:        log,
	}
}

// Observe registers fn to be called with a copy of the cart after every
// successful mutation. fn runs outside the engine lock.
func (e *Engine) Observe(fn func(domain.Cart)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// AddItem adds quantity units of entry. A simple entry already in the cart
// grows in place; meal entries only merge with an identical configuration.
func (e *Engine) AddItem(entry domain.CartEntry, quantity int) error {
	if quantity < 1 {
		return domain.Validation("cart.add", fmt.Sprintf("quantity must be a positive integer, got %d", quantity))
	}
	if entry.ProductID == "" {
		return domain.Validation("cart.add", "entry has no product id")
	}
	if entry.Price.IsNegative() {
		return domain.Validation("cart.add", fmt.Sprintf("entry %s has a negative price", entry.ProductID))
	}
	if entry.Kind == "" {
		entry.Kind = domain.KindSimple
	}
	entry.Key = KeyFor(entry)

	e.mu.Lock()
	if e.frozen > 0 {
		e.mu.Unlock()
		return ErrCheckoutInProgress
	}

	// a merged entry keeps the price it was first added at
	price := entry.Price
	if i := e.indexOf(entry.Key); i >= 0 {
		e.entries[i].Quantity += quantity
		price = e.entries[i].Price
	} else {
		entry = entry.Clone()
		entry.Quantity = quantity
		e.entries = append(e.entries, entry)
	}
	e.totalPrice = e.totalPrice.Add(price.Mul(decimal.NewFromInt(int64(quantity))))
	e.totalQuantities += quantity
	total := e.totalPrice
	e.unlockAndNotify()

	e.log.Debug("cart item added",
		zap.String("key", entry.Key),
		zap.Int("quantity", quantity),
		zap.String("total_price", total.String()))
	return nil
}

// RemoveItem deletes the entry with the given key.
func (e *Engine) RemoveItem(key string) error {
	e.mu.Lock()
	if e.frozen > 0 {
		e.mu.Unlock()
		return ErrCheckoutInProgress
	}

	i := e.indexOf(key)
	if i < 0 {
		e.mu.Unlock()
		return domain.NotFound("cart.remove", fmt.Sprintf("entry %s is not in the cart", key))
	}
	found := e.entries[i]
	e.totalPrice = e.totalPrice.Sub(found.Subtotal())
	e.totalQuantities -= found.Quantity
	e.entries = append(e.entries[:i], e.entries[i+1:]...)
	e.unlockAndNotify()

	e.log.Debug("cart item removed", zap.String("key", key))
	return nil
}

// SetItemQuantity steps the quantity of an entry by one. Decrementing stops
// at 1: it never removes the entry.
func (e *Engine) SetItemQuantity(key string, dir Direction) error {
	if dir != Inc && dir != Dec {
		return domain.Validation("cart.quantity", fmt.Sprintf("unknown direction %q", dir))
	}

	e.mu.Lock()
	if e.frozen > 0 {
		e.mu.Unlock()
		return ErrCheckoutInProgress
	}

	i := e.indexOf(key)
	if i < 0 {
		e.mu.Unlock()
		return domain.NotFound("cart.quantity", fmt.Sprintf("entry %s is not in the cart", key))
	}

	changed := false
	switch {
	case dir == Inc:
		e.entries[i].Quantity++
		e.totalPrice = e.totalPrice.Add(e.entries[i].Price)
		e.totalQuantities++
		changed = true
	case e.entries[i].Quantity > 1:
		e.entries[i].Quantity--
		e.totalPrice = e.totalPrice.Sub(e.entries[i].Price)
		e.totalQuantities--
		changed = true
	}
	if !changed {
		e.mu.Unlock()
		return nil
	}
	e.unlockAndNotify()
	return nil
}

// Clear empties the cart. It is allowed while frozen: checkout itself clears
// the cart once the session resolves.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.entries = nil
	e.totalPrice = decimal.Zero
	e.totalQuantities = 0
	e.unlockAndNotify()

	e.log.Debug("cart cleared")
}

// Freeze blocks AddItem, RemoveItem and SetItemQuantity until the returned
// release func is called. Release is idempotent.
func (e *Engine) Freeze() (release func()) {
	e.mu.Lock()
	e.frozen++
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			e.frozen--
			e.mu.Unlock()
		})
	}
}

func (e *Engine) Frozen() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frozen > 0
}

func (e *Engine) Snapshot() domain.Cart {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) Totals() (decimal.Decimal, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalPrice, e.totalQuantities
}

func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.entries)
}

func (e *Engine) Entry(key string) (domain.CartEntry, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i := e.indexOf(key)
	if i < 0 {
		return domain.CartEntry{}, domain.NotFound("cart.entry", fmt.Sprintf("entry %s is not in the cart", key))
	}
	return e.entries[i].Clone(), nil
}

func (e *Engine) indexOf(key string) int {
	for i := range e.entries {
		if e.entries[i].Key == key {
			return i
		}
	}
	return -1
}

func (e *Engine) snapshotLocked() domain.Cart {
	entries := make([]domain.CartEntry, len(e.entries))
	for i, entry := range e.entries {
		entries[i] = entry.Clone()
	}
	return domain.Cart{
		Entries:         entries,
		TotalPrice:      e.totalPrice,
		TotalQuantities: e.totalQuantities,
	}
}

// unlockAndNotify releases the write lock taken by a mutation and hands a copy
// of the new state to the observers. The copy is only built when someone
// listens.
func (e *Engine) unlockAndNotify() {
	if len(e.observers) == 0 {
		e.mu.Unlock()
		return
	}
	snap, observers := e.snapshotLocked(), e.observers
	e.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
}

// IsLocked reports whether err was caused by a checkout holding the cart.
func IsLocked(err error) bool {
	return errors.Is(err, ErrCheckoutInProgress)
}
