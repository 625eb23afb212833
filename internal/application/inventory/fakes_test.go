package inventory_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// storeData es el estado en memoria compartido por los repositorios falsos.
type storeData struct {
	records map[string]*entity.InventoryRecord
	adjs    map[string]*entity.LotAdjustment
	entries map[string]*entity.ActivityLogEntry // por clave natural
	order   []string                            // claves naturales en orden de commit
	whs     map[string]*entity.Warehouse
	locs    map[string]*entity.Location
	batches map[string]*entity.BatchRegistryEntry // por kind|batchID
	seq     int
}

func newStoreData() *storeData {
	return &storeData{
		records: make(map[string]*entity.InventoryRecord),
		adjs:    make(map[string]*entity.LotAdjustment),
		entries: make(map[string]*entity.ActivityLogEntry),
		whs:     make(map[string]*entity.Warehouse),
		locs:    make(map[string]*entity.Location),
		batches: make(map[string]*entity.BatchRegistryEntry),
	}
}

func (d *storeData) clone() *storeData {
	nd := newStoreData()
	for k, v := range d.records {
		c := *v
		nd.records[k] = &c
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
	for k, v := range d.whs {
		c := *v
		nd.whs[k] = &c
	}
	for k, v := range d.locs {
		c := *v
		nd.locs[k] = &c
	}
	for k, v := range d.batches {
		c := *v
		nd.batches[k] = &c
	}
	nd.seq = d.seq
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

// dataSource entrega el estado sobre el que opera un repositorio: el staging
// de una transacción abierta o el estado publicado del almacén.
type dataSource interface {
	acquire() (*storeData, func())
}

type txBound struct{ d *storeData }

func (t txBound) acquire() (*storeData, func()) { return t.d, func() {} }

type storeBound struct{ s *fakeStore }

func (b storeBound) acquire() (*storeData, func()) {
	b.s.mu.Lock()
	return b.s.data, b.s.mu.Unlock
}

// fakeStore simula la base de datos: transacciones serializadas (equivalente
// al bloqueo FOR UPDATE sobre las filas en juego) y commit todo-o-nada.
type fakeStore struct {
	mu   sync.Mutex
	data *storeData
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: newStoreData()}
}

// Run implementa inventory.TxRunner: fn trabaja sobre una copia y los cambios
// solo se publican si fn no falla.
func (s *fakeStore) Run(_ context.Context, fn func(
	invRepo repository.InventoryRecordRepository,
	adjRepo repository.LotAdjustmentRepository,
	logRepo repository.ActivityLogRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.data.clone()
	src := txBound{d: staged}
	if err := fn(&fakeInvRepo{src: src}, &fakeAdjRepo{src: src}, &fakeLogRepo{src: src}); err != nil {
		return err
	}
	s.data = staged
	return nil
}

func (s *fakeStore) invRepo() *fakeInvRepo   { return &fakeInvRepo{src: storeBound{s: s}} }
func (s *fakeStore) adjRepo() *fakeAdjRepo   { return &fakeAdjRepo{src: storeBound{s: s}} }
func (s *fakeStore) logRepo() *fakeLogRepo   { return &fakeLogRepo{src: storeBound{s: s}} }
func (s *fakeStore) batchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{src: storeBound{s: s}}
}
func (s *fakeStore) warehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{src: storeBound{s: s}}
}

// seedRecord publica una fila de inventario lista para los tests.
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

// ── InventoryRecordRepository ─────────────────────────────────────────────────

type fakeInvRepo struct{ src dataSource }

func (r *fakeInvRepo) GetByID(_ context.Context, id string) (*entity.InventoryRecord, error) {
	d, release := r.src.acquire()
	defer release()
	rec, ok := d.records[id]
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
	d, release := r.src.acquire()
	defer release()
	for _, rec := range d.records {
		if rec.Scope == scope && rec.Batch == batch {
			c := *rec
			return &c, nil
		}
	}
	d.seq++
	rec := &entity.InventoryRecord{
		ID:               fmt.Sprintf("inv-%d", d.seq),
		Scope:            scope,
		Batch:            batch,
		Quantity:         decimal.Zero,
		ReservedQuantity: decimal.Zero,
		StatusID:         entity.InventoryStatusActive,
		StatusDate:       time.Now(),
		CreatedAt:        time.Now(),
	}
	d.records[rec.ID] = rec
	c := *rec
	return &c, nil
}

func (r *fakeInvRepo) UpdateQuantities(_ context.Context, rec *entity.InventoryRecord) error {
	d, release := r.src.acquire()
	defer release()
	stored, ok := d.records[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Quantity = rec.Quantity
	stored.ReservedQuantity = rec.ReservedQuantity
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeInvRepo) ListByScope(_ context.Context, scope entity.ScopeRef, limit, offset int) ([]*entity.InventoryRecord, error) {
	d, release := r.src.acquire()
	defer release()
	var out []*entity.InventoryRecord
	for _, rec := range d.records {
		if rec.Scope == scope {
			c := *rec
			out = append(out, &c)
		}
	}
	_ = limit
	_ = offset
	return out, nil
}

// ── LotAdjustmentRepository ───────────────────────────────────────────────────

type fakeAdjRepo struct{ src dataSource }

func (r *fakeAdjRepo) Create(_ context.Context, adj *entity.LotAdjustment) error {
	d, release := r.src.acquire()
	defer release()
	c := *adj
	d.adjs[adj.ID] = &c
	return nil
}

func (r *fakeAdjRepo) GetByID(_ context.Context, id string) (*entity.LotAdjustment, error) {
	d, release := r.src.acquire()
	defer release()
	adj, ok := d.adjs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *adj
	return &c, nil
}

func (r *fakeAdjRepo) ListByInventory(_ context.Context, inventoryID string, _, _ *time.Time, _, _ int) ([]*entity.LotAdjustment, error) {
	d, release := r.src.acquire()
	defer release()
	var out []*entity.LotAdjustment
	for _, adj := range d.adjs {
		if adj.InventoryID == inventoryID {
			c := *adj
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── ActivityLogRepository ─────────────────────────────────────────────────────

type fakeLogRepo struct{ src dataSource }

func (r *fakeLogRepo) Insert(_ context.Context, e *entity.ActivityLogEntry) error {
	d, release := r.src.acquire()
	defer release()
	k := naturalKey(e.Inventory, e.ActionTypeID, e.RecordedAt)
	if _, ok := d.entries[k]; ok {
		return domain.ErrDuplicate
	}
	c := *e
	c.Metadata = cloneMeta(e.Metadata)
	// La fila almacenada pierde los nanosegundos, como en la base real.
	c.RecordedAt = c.RecordedAt.UTC().Truncate(time.Microsecond)
	d.entries[k] = &c
	d.order = append(d.order, k)
	return nil
}

func (r *fakeLogRepo) GetByNaturalKey(_ context.Context, ref entity.InventoryRef, actionTypeID string, at time.Time) (*entity.ActivityLogEntry, error) {
	d, release := r.src.acquire()
	defer release()
	e, ok := d.entries[naturalKey(ref, actionTypeID, at)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	c.Metadata = cloneMeta(e.Metadata)
	return &c, nil
}

func (r *fakeLogRepo) ListByInventory(_ context.Context, ref entity.InventoryRef, from, to *time.Time, limit, offset int) ([]*entity.ActivityLogEntry, error) {
	d, release := r.src.acquire()
	defer release()
	var out []*entity.ActivityLogEntry
	for _, k := range d.order {
		e := d.entries[k]
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

// tamper altera una entrada publicada sin recalcular su huella.
func (r *fakeLogRepo) tamper(ref entity.InventoryRef, actionTypeID string, at time.Time, qty int64) {
	d, release := r.src.acquire()
	defer release()
	if e, ok := d.entries[naturalKey(ref, actionTypeID, at)]; ok {
		e.NewQuantity = decimal.NewFromInt(qty)
	}
}

// ── BatchRegistryRepository ───────────────────────────────────────────────────

type fakeBatchRepo struct{ src dataSource }

func batchKey(ref entity.BatchRef) string { return ref.Kind + "|" + ref.BatchID }

func (r *fakeBatchRepo) Create(_ context.Context, entry *entity.BatchRegistryEntry) error {
	d, release := r.src.acquire()
	defer release()
	k := batchKey(entry.Ref)
	if _, ok := d.batches[k]; ok {
		return domain.ErrDuplicate
	}
	c := *entry
	d.batches[k] = &c
	return nil
}

func (r *fakeBatchRepo) GetByID(_ context.Context, id string) (*entity.BatchRegistryEntry, error) {
	d, release := r.src.acquire()
	defer release()
	for _, e := range d.batches {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeBatchRepo) GetByRef(_ context.Context, ref entity.BatchRef) (*entity.BatchRegistryEntry, error) {
	d, release := r.src.acquire()
	defer release()
	e, ok := d.batches[batchKey(ref)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *e
	return &c, nil
}

// ── WarehouseRepository ───────────────────────────────────────────────────────

type fakeWarehouseRepo struct{ src dataSource }

func (r *fakeWarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	d, release := r.src.acquire()
	defer release()
	c := *w
	d.whs[w.ID] = &c
	return nil
}

func (r *fakeWarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	d, release := r.src.acquire()
	defer release()
	w, ok := d.whs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *w
	return &c, nil
}

func (r *fakeWarehouseRepo) List(_ context.Context, _, _ int) ([]*entity.Warehouse, error) {
	d, release := r.src.acquire()
	defer release()
	var out []*entity.Warehouse
	for _, w := range d.whs {
		c := *w
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakeWarehouseRepo) CreateLocation(_ context.Context, l *entity.Location) error {
	d, release := r.src.acquire()
	defer release()
	c := *l
	d.locs[l.ID] = &c
	return nil
}

func (r *fakeWarehouseRepo) GetLocationByID(_ context.Context, id string) (*entity.Location, error) {
	d, release := r.src.acquire()
	defer release()
	l, ok := d.locs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *l
	return &c, nil
}

func (r *fakeWarehouseRepo) ListLocations(_ context.Context, warehouseID string) ([]*entity.Location, error) {
	d, release := r.src.acquire()
	defer release()
	var out []*entity.Location
	for _, l := range d.locs {
		if l.WarehouseID == warehouseID {
			c := *l
			out = append(out, &c)
		}
	}
	return out, nil
}

// ── AdjustmentTypeRepository ──────────────────────────────────────────────────

type fakeAdjTypeRepo struct {
	mu    sync.Mutex
	types map[string]*entity.AdjustmentType
}

func newFakeAdjTypeRepo(ids ...string) *fakeAdjTypeRepo {
	r := &fakeAdjTypeRepo{types: make(map[string]*entity.AdjustmentType)}
	for _, id := range ids {
		r.types[id] = &entity.AdjustmentType{ID: id, Name: id}
	}
	return r
}

func (r *fakeAdjTypeRepo) Upsert(_ context.Context, at *entity.AdjustmentType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *at
	r.types[at.ID] = &c
	return nil
}

func (r *fakeAdjTypeRepo) GetByID(_ context.Context, id string) (*entity.AdjustmentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := *at
	return &c, nil
}

func (r *fakeAdjTypeRepo) List(_ context.Context) ([]*entity.AdjustmentType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AdjustmentType
	for _, at := range r.types {
		c := *at
		out = append(out, &c)
	}
	return out, nil
}
