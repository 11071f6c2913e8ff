package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ashiruhammed/farmstarter/internal/catalog"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

// LineItem is one product-quantity pairing in the cart. The product
// fields are copied at add time, so a later catalog change never
// rewrites what the customer put in the cart.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

// Manager owns the in-memory cart, one per storefront process.
//
// Mutations apply synchronously under the lock and never fail. Each
// mutation hands the resulting snapshot to a single flusher goroutine
// that writes it to the store; a failed write is logged and dropped —
// memory stays authoritative for the session and the next successful
// write supersedes the lost one. The pending slot coalesces: when a
// write is still in flight, a newer snapshot replaces an older queued
// one, so the durable tail is always the most recent mutation.
type Manager struct {
	mu      sync.Mutex
	items   []LineItem
	loading bool

	st  store.Store
	log logrus.FieldLogger

	pending chan []byte
	flushed chan struct{}
}

func NewManager(st store.Store, log logrus.FieldLogger) *Manager {
	m := &Manager{
		loading: true,
		st:      st,
		log:     log,
		pending: make(chan []byte, 1),
		flushed: make(chan struct{}),
	}
	go m.flushLoop()
	return m
}

// Load applies the persisted snapshot, if any. Call once at startup;
// reads of cart state are gated on Loading until it returns.
func (m *Manager) Load(ctx context.Context) {
	var items []LineItem
	b, err := m.st.Get(ctx, store.KeyCart)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// first run, empty cart
	case err != nil:
		m.log.WithError(err).Warn("cart: loading snapshot failed, starting empty")
	default:
		if err := json.Unmarshal(b, &items); err != nil {
			m.log.WithError(err).Warn("cart: stored snapshot unreadable, starting empty")
			items = nil
		}
	}

	m.mu.Lock()
	m.items = items
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// AddToCart increments the quantity of an existing line item for the
// product, or appends a new one with quantity 1. Always succeeds.
func (m *Manager) AddToCart(p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()

	found := false
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		m.items = append(m.items, LineItem{Product: p, Quantity: 1})
	}
	m.enqueueLocked()
}

// RemoveFromCart drops the line item for the product. No-op when absent.
func (m *Manager) RemoveFromCart(productID int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.items[:0]
	for _, it := range m.items {
		if it.ID != productID {
			kept = append(kept, it)
		}
	}
	m.items = kept
	m.enqueueLocked()
}

// UpdateQuantity sets the line item's quantity exactly. A quantity of
// zero or below removes the item. No-op when absent.
func (m *Manager) UpdateQuantity(productID, quantity int) {
	if quantity <= 0 {
		m.RemoveFromCart(productID)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.items {
		if m.items[i].ID == productID {
			m.items[i].Quantity = quantity
			break
		}
	}
	m.enqueueLocked()
}

// ClearCart empties the cart.
func (m *Manager) ClearCart() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = nil
	m.enqueueLocked()
}

// Items returns the line items in insertion order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LineItem, len(m.items))
	copy(out, m.items)
	return out
}

// Total is recomputed from current state on every call, never stored.
func (m *Manager) Total() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum float64
	for _, it := range m.items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Close flushes any pending snapshot write and stops the flusher.
func (m *Manager) Close() {
	close(m.pending)
	<-m.flushed
}

func (m *Manager) snapshotLocked() []byte {
	if len(m.items) == 0 {
		return []byte("[]")
	}
	b, err := json.Marshal(m.items)
	if err != nil {
		// line items are plain data; marshal cannot fail in practice
		m.log.WithError(err).Error("cart: snapshot marshal failed")
		return nil
	}
	return b
}

// enqueueLocked hands the current snapshot to the flusher. It runs under
// m.mu, which keeps snapshots entering the slot in mutation order; the
// send never blocks, it displaces a stale queued snapshot instead.
func (m *Manager) enqueueLocked() {
	snap := m.snapshotLocked()
	if snap == nil {
		return
	}
	for {
		select {
		case m.pending <- snap:
			return
		default:
		}
		// slot full: drop the stale queued snapshot, ours is newer
		select {
		case <-m.pending:
		default:
		}
	}
}

func (m *Manager) flushLoop() {
	for snap := range m.pending {
		if err := m.st.Set(context.Background(), store.KeyCart, snap); err != nil {
			m.log.WithError(err).WithField("key", store.KeyCart).Warn("cart: persist failed, keeping in-memory state")
		}
	}
	close(m.flushed)
}
