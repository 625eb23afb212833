package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.BatchRegistryRepository = (*BatchRegistryRepo)(nil)

// BatchRegistryRepo implementación sobre PostgreSQL (usable con pool o tx).
type BatchRegistryRepo struct {
	q Querier
}

// NewBatchRegistryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBatchRegistryRepository(q Querier) *BatchRegistryRepo {
	return &BatchRegistryRepo{q: q}
}

// Create persiste el alta de un lote. Un alta repetida de la misma referencia
// (tipo, lote) retorna domain.ErrDuplicate.
func (r *BatchRegistryRepo) Create(ctx context.Context, entry *entity.BatchRegistryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batch_registry (id, batch_kind, batch_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.Ref.Kind, entry.Ref.BatchID, entry.CreatedBy, entry.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create batch entry: %w", err)
	}
	return nil
}

// GetByID obtiene un alta por ID.
func (r *BatchRegistryRepo) GetByID(ctx context.Context, id string) (*entity.BatchRegistryEntry, error) {
	query := `
		SELECT id, batch_kind, batch_id, created_by, created_at
		FROM batch_registry WHERE id = $1`
	var entry entity.BatchRegistryEntry
	err := r.q.QueryRow(ctx, query, id).Scan(
		&entry.ID, &entry.Ref.Kind, &entry.Ref.BatchID, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get batch entry: %w", err)
	}
	return &entry, nil
}

// GetByRef obtiene el alta de una referencia lógica (tipo, lote).
func (r *BatchRegistryRepo) GetByRef(ctx context.Context, ref entity.BatchRef) (*entity.BatchRegistryEntry, error) {
	query := `
		SELECT id, batch_kind, batch_id, created_by, created_at
		FROM batch_registry WHERE batch_kind = $1 AND batch_id = $2`
	var entry entity.BatchRegistryEntry
	err := r.q.QueryRow(ctx, query, ref.Kind, ref.BatchID).Scan(
		&entry.ID, &entry.Ref.Kind, &entry.Ref.BatchID, &entry.CreatedBy, &entry.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get batch entry: %w", err)
	}
	return &entry, nil
}
