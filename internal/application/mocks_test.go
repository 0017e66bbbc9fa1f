package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/tkiviniemi/stocklink/internal/domain/model"
)

// --- Shared mock implementations of the driven ports ---

type mockSettingsStore struct {
	mu             sync.Mutex
	settings       model.Settings
	getErr         error
	updateErr      error
	watermarkErr   error
	getCalls       int
	watermarkCalls []map[model.SyncResource]time.Time
}

func (m *mockSettingsStore) Get(_ context.Context) (model.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.getErr != nil {
		return model.Settings{}, m.getErr
	}
	return m.settings, nil
}

func (m *mockSettingsStore) setGetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr = err
}

func (m *mockSettingsStore) Update(_ context.Context, s model.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	m.settings = s
	return nil
}

func (m *mockSettingsStore) UpdateWatermarks(_ context.Context, marks map[model.SyncResource]time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watermarkErr != nil {
		return m.watermarkErr
	}
	copied := make(map[model.SyncResource]time.Time, len(marks))
	for k, v := range marks {
		copied[k] = v
		mark := v
		switch k {
		case model.ResourceStock:
			m.settings.StockSyncedAt = &mark
		case model.ResourceOrders:
			m.settings.OrderSyncedAt = &mark
		}
	}
	m.watermarkCalls = append(m.watermarkCalls, copied)
	return nil
}

type mockAuthenticator struct {
	mu    sync.Mutex
	token model.AuthToken
	err   error
	calls []model.Credentials
}

func (m *mockAuthenticator) Authenticate(_ context.Context, creds model.Credentials) (model.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, creds)
	if m.err != nil {
		return model.AuthToken{}, m.err
	}
	return m.token, nil
}

type mockWarehouseClient struct {
	stockChanges []model.StockChange
	stockErr     error
	orderChanges []model.OrderChange
	orderErr     error
	warehouses   []model.Warehouse
	warehouseErr error
	pushErr      error

	mu           sync.Mutex
	pushedOrders []string
}

func (m *mockWarehouseClient) FetchStockChanges(_ context.Context, _ time.Time) ([]model.StockChange, error) {
	return m.stockChanges, m.stockErr
}

func (m *mockWarehouseClient) FetchOrderChanges(_ context.Context, _ time.Time) ([]model.OrderChange, error) {
	return m.orderChanges, m.orderErr
}

func (m *mockWarehouseClient) PushTrackingUpdate(_ context.Context, externalOrderID string, _ model.TrackingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushedOrders = append(m.pushedOrders, externalOrderID)
	return nil
}

func (m *mockWarehouseClient) ListWarehouses(_ context.Context) ([]model.Warehouse, error) {
	return m.warehouses, m.warehouseErr
}

type mockProductStore struct {
	mu       sync.Mutex
	bySKU    map[string]model.Product
	upserts  []model.Product
	upsertAt int // 1-based index of the upsert call that should fail; 0 = never
	err      error
}

func (m *mockProductStore) Upsert(_ context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertAt > 0 && len(m.upserts)+1 == m.upsertAt {
		return m.err
	}
	m.upserts = append(m.upserts, p)
	if m.bySKU == nil {
		m.bySKU = make(map[string]model.Product)
	}
	m.bySKU[p.SKU] = p
	return nil
}

func (m *mockProductStore) GetBySKU(_ context.Context, sku string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil && m.upsertAt == 0 {
		return nil, m.err
	}
	p, ok := m.bySKU[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockProductStore) ListAll(_ context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Product, 0, len(m.bySKU))
	for _, p := range m.bySKU {
		out = append(out, p)
	}
	return out, nil
}

type mockWarehouseStore struct {
	mu       sync.Mutex
	types    map[string]string
	replaced [][]model.Warehouse
	err      error
}

func (m *mockWarehouseStore) ReplaceAll(_ context.Context, warehouses []model.Warehouse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.replaced = append(m.replaced, warehouses)
	m.types = make(map[string]string, len(warehouses))
	for _, wh := range warehouses {
		m.types[wh.ID] = wh.Type
	}
	return nil
}

func (m *mockWarehouseStore) GetType(_ context.Context, warehouseID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.types[warehouseID], nil
}

func (m *mockWarehouseStore) ListAll(_ context.Context) ([]model.Warehouse, error) {
	return nil, nil
}

type mockOrderStore struct {
	mu       sync.Mutex
	upserts  []model.OrderChange
	pending  []model.Order
	pushed   []string
	setCalls []string
	err      error
}

func (m *mockOrderStore) UpsertStatus(_ context.Context, change model.OrderChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.upserts = append(m.upserts, change)
	return nil
}

func (m *mockOrderStore) GetByExternalID(_ context.Context, _ string) (*model.Order, error) {
	return nil, nil
}

func (m *mockOrderStore) SetTracking(_ context.Context, externalID, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, externalID)
	return nil
}

func (m *mockOrderStore) ListUnpushedTracking(_ context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, nil
}

func (m *mockOrderStore) MarkTrackingPushed(_ context.Context, externalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, externalID)
	for i, o := range m.pending {
		if o.ExternalID == externalID {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			break
		}
	}
	return nil
}
