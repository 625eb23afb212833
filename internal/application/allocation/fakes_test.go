package allocation_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/allocation"
	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// storeData estado en memoria compartido por los repositorios falsos.
type storeData struct {
	records map[string]*entity.InventoryRecord
	allocs  map[string]*entity.Allocation
	fuls    map[string]*entity.OrderFulfillment
	adjs    map[string]*entity.LotAdjustment
	entries map[string]*entity.ActivityLogEntry // por clave natural
	order   []string
}

func newStoreData() *storeData {
	return &storeData{
		records: make(map[string]*entity.InventoryRecord),
		allocs:  make(map[string]*entity.Allocation),
		fuls:    make(map[string]*entity.OrderFulfillment),
		adjs:    make(map[string]*entity.LotAdjustment),
		entries: make(map[string]*entity.ActivityLogEntry),
	}
}

func (d *storeData) clone() *storeData {
	nd := newStoreData()
	for k, v := range d.records {
		c := *v
		nd.records[k] = &c
	}
	for k, v := range d.allocs {
		c := *v
		nd.allocs[k] = &c
	}
	for k, v := range d.fuls {
		c := *v
		nd.fuls[k] = &c
	}
	for k, v := range d.adjs {
		c := *v
		nd.adjs[k] = &c
	}
	for k, v := range d.entries {
		c := *v
		c.Metadata = cloneMeta(v.Metadata)
		nd.entries[k] = &c
	}
	nd.order = append(nd.order, d.order...)
	return nd
}

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// naturalKey trunca la fecha a microsegundos igual que TIMESTAMPTZ: una marca
// con nanosegundos debe chocar con la misma fila que su versión almacenada.
func naturalKey(ref entity.InventoryRef, actionTypeID string, at time.Time) string {
	at = at.UTC().Truncate(time.Microsecond)
	return fmt.Sprintf("%s|%s|%s|%s", ref.Scope, ref.InventoryID, actionTypeID, at.Format(time.RFC3339Nano))
}

func fulKey(orderItemID, shipmentID string) string { return orderItemID + "|" + shipmentID }

// fakeStore simula la base: transacciones serializadas y commit todo-o-nada.
type fakeStore struct {
	mu   sync.Mutex
	data *storeData
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: newStoreData()}
}

// RunAllocation implementa allocation.TxRunner.
func (s *fakeStore) RunAllocation(_ context.Context, fn func(
	invRepo repository.InventoryRecordRepository,
	allocRepo repository.AllocationRepository,
	fulRepo repository.OrderFulfillmentRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.data.clone()
	err := fn(
		&fakeInvRepo{d: staged},
		&fakeAllocRepo{d: staged},
		&fakeFulRepo{d: staged},
		&fakeAdjRepo{d: staged},
		&fakeLogRepo{d: staged},
	)
	if err != nil {
		return err
	}
	s.data = staged
	return nil
}

func (s *fakeStore) seedRecord(id string, qty, reserved int64) *entity.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &entity.InventoryRecord{
		ID:               id,
		Scope:            entity.ScopeRef{Scope: entity.ScopeWarehouse, RefID: "wh-1"},
		Batch:            entity.BatchRef{Kind: entity.BatchKindProduct, BatchID: "batch-1"},
		Quantity:         decimal.NewFromInt(qty),
		ReservedQuantity: decimal.NewFromInt(reserved),
		StatusID:         entity.InventoryStatusActive,
		StatusDate:       time.Now(),
	}
	s.data.records[id] = rec
	c := *rec
	return &c
}

// addQuantity simula una reposición directa (fuera del coordinador).
func (s *fakeStore) addQuantity(id string, qty int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.data.records[id]; ok {
		rec.Quantity = rec.Quantity.Add(decimal.NewFromInt(qty))
	}
}

func (s *fakeStore) record(id string) *entity.InventoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.data.records[id]
	return &c
}

func (s *fakeStore) allocation(id string) *entity.Allocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.data.allocs[id]
	return &c
}

func (s *fakeStore) fulfillment(id string) *entity.OrderFulfillment {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.data.fuls[id]
	return &c
}

// entriesFor lista las entradas del libro de un inventario en orden de commit.
func (s *fakeStore) entriesFor(inventoryID string) []*entity.ActivityLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.ActivityLogEntry
	for _, k := range s.data.order {
		e := s.data.entries[k]
		if e.Inventory.InventoryID == inventoryID {
			c := *e
			c.Metadata = cloneMeta(e.Metadata)
			out = append(out, &c)
		}
	}
	return out
}

// adjustmentsFor lista los ajustes de lote de un inventario.
func (s *fakeStore) adjustmentsFor(inventoryID string) []*entity.LotAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.LotAdjustment
	for _, a := range s.data.adjs {
		if a.InventoryID == inventoryID {
			c := *a
			out = append(out, &c)
		}
	}
	return out
}

// ── InventoryRecordRepository ─────────────────────────────────────────────────

type fakeInvRepo struct{ d *storeData }

func (r *fakeInvRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	rec, ok := r.d.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *rec
	return &c, nil
}

func (r *fakeInvRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.InventoryRecord, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvRepo) GetOrCreate(_ context.Context, scope entity.ScopeRef, batch entity.BatchRef) (*entity.InventoryRecord, error) {
	for _, rec := range r.d.records {
		if rec.Scope == scope && rec.Batch == batch {
			c := *rec
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvRepo) UpdateQuantities(_ context.Context, rec *entity.InventoryRecord) error {
	stored, ok := r.d.records[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Quantity = rec.Quantity
	stored.ReservedQuantity = rec.ReservedQuantity
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeInvRepo) ListByScope(_ context.Context, scope entity.ScopeRef, _, _ int) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, rec := range r.d.records {
		if rec.Scope == scope {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── AllocationRepository ──────────────────────────────────────────────────────

type fakeAllocRepo struct{ d *storeData }

func (r *fakeAllocRepo) Create(_ context.Context, a *entity.Allocation) error {
	if _, ok := r.d.allocs[a.ID]; ok {
		return domain.ErrDuplicate
	}
	c := *a
	r.d.allocs[a.ID] = &c
	return nil
}

func (r *fakeAllocRepo) GetByID(_ context.Context, id string) (*entity.Allocation, error) {
	a, ok := r.d.allocs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r *fakeAllocRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Allocation, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAllocRepo) Update(_ context.Context, a *entity.Allocation) error {
	if _, ok := r.d.allocs[a.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *a
	r.d.allocs[a.ID] = &c
	return nil
}

func (r *fakeAllocRepo) ListByOrderItem(_ context.Context, orderItemID string) ([]*entity.Allocation, error) {
	var out []*entity.Allocation
	for _, a := range r.d.allocs {
		if a.OrderItemID == orderItemID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── OrderFulfillmentRepository ────────────────────────────────────────────────

type fakeFulRepo struct{ d *storeData }

func (r *fakeFulRepo) Create(_ context.Context, f *entity.OrderFulfillment) error {
	for _, existing := range r.d.fuls {
		if fulKey(existing.OrderItemID, existing.ShipmentID) == fulKey(f.OrderItemID, f.ShipmentID) {
			return domain.ErrDuplicate
		}
	}
	c := *f
	r.d.fuls[f.ID] = &c
	return nil
}

func (r *fakeFulRepo) GetByID(_ context.Context, id string) (*entity.OrderFulfillment, error) {
	f, ok := r.d.fuls[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *f
	return &c, nil
}

func (r *fakeFulRepo) Update(_ context.Context, f *entity.OrderFulfillment) error {
	if _, ok := r.d.fuls[f.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *f
	r.d.fuls[f.ID] = &c
	return nil
}

func (r *fakeFulRepo) ListByAllocation(_ context.Context, allocationID string) ([]*entity.OrderFulfillment, error) {
	var out []*entity.OrderFulfillment
	for _, f := range r.d.fuls {
		if f.AllocationID == allocationID {
			c := *f
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeFulRepo) SumShippedByOrderItem(_ context.Context, orderItemID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, f := range r.d.fuls {
		if f.OrderItemID == orderItemID && f.Status != entity.FulfillmentStatusCancelled {
			total = total.Add(f.QuantityShipped)
		}
	}
	return total, nil
}

// ── LotAdjustmentRepository ───────────────────────────────────────────────────

type fakeAdjRepo struct{ d *storeData }

func (r *fakeAdjRepo) Create(_ context.Context, adj *entity.LotAdjustment) error {
	c := *adj
	r.d.adjs[adj.ID] = &c
	return nil
}

func (r *fakeAdjRepo) GetByID(_ context.Context, id string) (*entity.LotAdjustment, error) {
	adj, ok := r.d.adjs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *adj
	return &c, nil
}

func (r *fakeAdjRepo) ListByInventory(_ context.Context, inventoryID string, _, _ *time.Time, _, _ int) ([]*entity.LotAdjustment, error) {
	var out []*entity.LotAdjustment
	for _, adj := range r.d.adjs {
		if adj.InventoryID == inventoryID {
			c := *adj
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── ActivityLogRepository ─────────────────────────────────────────────────────

type fakeLogRepo struct{ d *storeData }

func (r *fakeLogRepo) Insert(_ context.Context, e *entity.ActivityLogEntry) error {
	k := naturalKey(e.Inventory, e.ActionTypeID, e.RecordedAt)
	if _, ok := r.d.entries[k]; ok {
		return domain.ErrDuplicate
	}
	c := *e
	c.Metadata = cloneMeta(e.Metadata)
	// La fila almacenada pierde los nanosegundos, como en la base real.
	c.RecordedAt = c.RecordedAt.UTC().Truncate(time.Microsecond)
	r.d.entries[k] = &c
	r.d.order = append(r.d.order, k)
	return nil
}

func (r *fakeLogRepo) GetByNaturalKey(_ context.Context, ref entity.InventoryRef, actionTypeID string, at time.Time) (*entity.ActivityLogEntry, error) {
	e, ok := r.d.entries[naturalKey(ref, actionTypeID, at)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	c.Metadata = cloneMeta(e.Metadata)
	return &c, nil
}

func (r *fakeLogRepo) ListByInventory(_ context.Context, ref entity.InventoryRef, from, to *time.Time, limit, offset int) ([]*entity.ActivityLogEntry, error) {
	var out []*entity.ActivityLogEntry
	for _, k := range r.d.order {
		e := r.d.entries[k]
		if e.Inventory != ref {
			continue
		}
		if from != nil && e.RecordedAt.Before(*from) {
			continue
		}
		if to != nil && e.RecordedAt.After(*to) {
			continue
		}
		c := *e
		c.Metadata = cloneMeta(e.Metadata)
		out = append(out, &c)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLogRepo) CountByInventory(ctx context.Context, ref entity.InventoryRef, from, to *time.Time) (int64, error) {
	all, err := r.ListByInventory(ctx, ref, from, to, 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

// newEnv arma el coordinador contra el almacén falso.
func newEnv() (*fakeStore, *allocation.UseCase) {
	store := newFakeStore()
	uc := allocation.New(
		store,
		ledger.NewRecorder(),
		txretry.Policy{MaxAttempts: 3, Backoff: time.Millisecond},
		logger.New(logger.Config{Env: "test", Level: "error"}),
	)
	return store, uc
}
