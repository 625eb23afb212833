package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Recorder escribe entradas del libro de actividades con huella calculada e
// inserción idempotente: un duplicado sobre la clave natural (inventario,
// tipo de acción, fecha) con la misma huella es un reintento y se responde
// con la entrada ya almacenada; con huella distinta es corrupción y se
// propaga ErrLedgerIntegrity.
type Recorder struct {
	sums *ChecksumService
}

// NewRecorder crea el registrador del libro.
func NewRecorder() *Recorder {
	return &Recorder{sums: NewChecksumService()}
}

// Checksums expone el servicio de huellas (verificación fuera de banda).
func (r *Recorder) Checksums() *ChecksumService {
	return r.sums
}

// AlreadyRecorded busca una entrada previa con la misma clave natural. Si
// existe y su huella verifica, la operación lógica ya quedó asentada y el
// llamador debe tratar el reintento como éxito sin re-aplicar cantidades.
// Si existe con huella inválida, retorna ErrLedgerIntegrity.
func (r *Recorder) AlreadyRecorded(ctx context.Context, repo repository.ActivityLogRepository, ref entity.InventoryRef, actionTypeID string, recordedAt time.Time) (*entity.ActivityLogEntry, error) {
	existing, err := repo.GetByNaturalKey(ctx, ref, actionTypeID, CanonicalTime(recordedAt))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("consultar entrada previa del libro: %w", err)
	}
	if existing == nil {
		return nil, nil
	}
	ok, err := r.sums.Verify(existing)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("entrada %s con huella inválida: %w", existing.ID, domain.ErrLedgerIntegrity)
	}
	return existing, nil
}

// Record calcula la huella, asigna ID si falta e inserta la entrada. Ante un
// duplicado de clave natural recupera la entrada almacenada y contrasta
// huellas: iguales es un reintento (no-op, retorna la almacenada); distintas
// es ErrLedgerIntegrity. Nunca sobrescribe. La marca se canonicaliza a la
// resolución de almacenamiento antes de hashear e insertar, de modo que la
// entrada devuelta es la misma que quedó en la base.
func (r *Recorder) Record(ctx context.Context, repo repository.ActivityLogRepository, e *entity.ActivityLogEntry) (*entity.ActivityLogEntry, error) {
	if e == nil {
		return nil, domain.ErrInvalidInput
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.RecordedAt = CanonicalTime(e.RecordedAt)
	sum, err := r.sums.ComputeForEntry(e)
	if err != nil {
		return nil, err
	}
	e.Checksum = sum

	err = repo.Insert(ctx, e)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, domain.ErrDuplicate) {
		return nil, fmt.Errorf("insertar entrada del libro: %w", err)
	}

	existing, lookupErr := repo.GetByNaturalKey(ctx, e.Inventory, e.ActionTypeID, e.RecordedAt)
	if lookupErr != nil {
		return nil, fmt.Errorf("recuperar entrada duplicada del libro: %w", lookupErr)
	}
	if existing == nil {
		return nil, fmt.Errorf("insertar entrada del libro: %w", err)
	}
	if existing.Checksum != e.Checksum {
		return nil, fmt.Errorf("clave natural repetida con huella distinta (entrada %s): %w",
			existing.ID, domain.ErrLedgerIntegrity)
	}
	return existing, nil
}
