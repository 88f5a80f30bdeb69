package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/backup"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

// MockBackupStore is an in-memory BackupStore.
type MockBackupStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	SetErr  error
	GetErr  error
	Removes int
}

func NewMockBackupStore() *MockBackupStore {
	return &MockBackupStore{data: make(map[string][]byte)}
}

func (m *MockBackupStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockBackupStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, backup.ErrNotFound
	}
	return v, nil
}

func (m *MockBackupStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removes++
	delete(m.data, key)
	return nil
}

func (m *MockBackupStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// MockPayments implements PaymentIntentCreator and records requests.
type MockPayments struct {
	mu       sync.Mutex
	Response domain.PaymentSheetResponse
	Err      error
	Requests []domain.PaymentIntentRequest
	// BackupSeen reports whether the backup existed when the intent was requested.
	Backup     *MockBackupStore
	BackupSeen bool
}

func (m *MockPayments) CreatePaymentIntent(_ context.Context, req domain.PaymentIntentRequest) (domain.PaymentSheetResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	if m.Backup != nil {
		m.BackupSeen = m.Backup.Has(backup.CartKey)
	}
	return m.Response, m.Err
}

// MockSheet implements PaymentSheet with a canned result.
type MockSheet struct {
	mu       sync.Mutex
	InitErr  error
	Result   PaymentResult
	Configs  []SheetConfig
	Presents int
	// Block makes Present wait for ctx.
	Block bool
}

func (m *MockSheet) Init(_ context.Context, cfg SheetConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Configs = append(m.Configs, cfg)
	return m.InitErr
}

func (m *MockSheet) Present(ctx context.Context, _ uuid.UUID) PaymentResult {
	m.mu.Lock()
	m.Presents++
	block := m.Block
	result := m.Result
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return PaymentResult{Outcome: OutcomeInterrupted, Message: ctx.Err().Error()}
	}
	return result
}

// MockOrders implements OrderSubmitter.
type MockOrders struct {
	mu     sync.Mutex
	Err    error
	Orders []domain.Order
}

func (m *MockOrders) SubmitOrder(_ context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order)
	return m.Err
}

func (m *MockOrders) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Orders)
}
