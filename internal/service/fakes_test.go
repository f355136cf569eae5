package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopcore/storefront/internal/entity"
	"github.com/shopcore/storefront/internal/repository"
)

// In-memory fakes mirroring the Postgres repositories' contracts, including
// the atomicity of DecrementStock and NextSequence.

type memProducts struct {
	mu         sync.Mutex
	products   map[string]*entity.Product
	decrements int
	increments int
}

func newMemProducts(products ...entity.Product) *memProducts {
	m := &memProducts{products: make(map[string]*entity.Product)}
	for i := range products {
		p := products[i]
		m.products[p.ID] = &p
	}
	return m
}

func (m *memProducts) FindAll(ctx context.Context) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memProducts) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, entity.ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memProducts) DecrementStock(ctx context.Context, id string, qty int) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || p.Status != entity.ProductActive || p.Stock < qty {
		return nil, nil
	}
	p.Stock -= qty
	m.decrements++
	copied := *p
	return &copied, nil
}

func (m *memProducts) IncrementStock(ctx context.Context, id string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[id]; ok {
		p.Stock += qty
		m.increments++
	}
	return nil
}

func (m *memProducts) Seed(ctx context.Context, products []entity.Product) error {
	return nil
}

func (m *memProducts) stock(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

type memCarts struct {
	mu    sync.Mutex
	items map[string][]entity.CartItem
}

func newMemCarts() *memCarts {
	return &memCarts{items: make(map[string][]entity.CartItem)}
}

func (m *memCarts) Get(ctx context.Context, userID string) ([]entity.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.CartItem(nil), m.items[userID]...), nil
}

func (m *memCarts) AddItem(ctx context.Context, userID string, item entity.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items[userID] {
		if existing.ProductID == item.ProductID && existing.VariantID == item.VariantID {
			m.items[userID][i].Quantity += item.Quantity
			return nil
		}
	}
	m.items[userID] = append(m.items[userID], item)
	return nil
}

func (m *memCarts) SetQuantity(ctx context.Context, userID, productID, variantID string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items[userID] {
		if existing.ProductID == productID && existing.VariantID == variantID {
			m.items[userID][i].Quantity = qty
			return true, nil
		}
	}
	return false, nil
}

func (m *memCarts) RemoveItem(ctx context.Context, userID, productID, variantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[userID]
	for i, existing := range items {
		if existing.ProductID == productID && existing.VariantID == variantID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memCarts) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, userID)
	return nil
}

type memOrders struct {
	mu         sync.Mutex
	orders     map[string]*entity.Order
	failCreate bool
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[string]*entity.Order)}
}

func (m *memOrders) Create(ctx context.Context, order *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("storage unavailable")
	}
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrders) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *memOrders) FindByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memOrders) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id string, upd repository.OrderStatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return entity.ErrOrderNotFound
	}
	if upd.ExpectStatus != nil && o.Status != *upd.ExpectStatus {
		to := o.Status
		if upd.Status != nil {
			to = *upd.Status
		}
		return &entity.InvalidTransitionError{From: o.Status, To: to}
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentReference != nil {
		o.PaymentReference = *upd.PaymentReference
	}
	if upd.TrackingNumber != nil {
		o.TrackingNumber = *upd.TrackingNumber
	}
	if upd.CancelledAt != nil {
		t := *upd.CancelledAt
		o.CancelledAt = &t
	}
	if upd.CancellationReason != nil {
		o.CancellationReason = *upd.CancellationReason
	}
	if upd.DeliveredAt != nil {
		t := *upd.DeliveredAt
		o.DeliveredAt = &t
	}
	return nil
}

type memCounter struct {
	mu   sync.Mutex
	seqs map[string]int
}

func newMemCounter() *memCounter {
	return &memCounter{seqs: make(map[string]int)}
}

func (m *memCounter) NextSequence(ctx context.Context, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[day]++
	return m.seqs[day], nil
}

type failingCounter struct{}

func (failingCounter) NextSequence(ctx context.Context, day string) (int, error) {
	return 0, entity.ErrCounterConflict
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, userID string) (*entity.CartView, error) { return nil, nil }
func (noopCache) Set(ctx context.Context, userID string, view *entity.CartView) error {
	return nil
}
func (noopCache) Invalidate(ctx context.Context, userID string) error { return nil }

type publishedEvent struct {
	topic string
	key   string
	event any
}

type memPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (m *memPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, publishedEvent{topic: topic, key: key, event: event})
	return nil
}

func (m *memPublisher) published(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.topic == topic {
			n++
		}
	}
	return n
}
