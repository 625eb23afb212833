package entity

import (
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

// Tipos concretos de lote que respaldan una referencia lógica.
const (
	BatchKindProduct   = "PRODUCT"            // lote de producto
	BatchKindPackaging = "PACKAGING_MATERIAL" // lote de material de empaque
)

// BatchRef identifica un lote lógico. Exactamente un tipo concreto respalda
// cada referencia: el discriminador Kind indica cuál y BatchID es el lote físico.
type BatchRef struct {
	Kind    string
	BatchID string
}

// NewBatchRef construye una referencia de lote válida o retorna
// ErrInvalidBatchReference si el tipo es desconocido o el id está vacío.
func NewBatchRef(kind, batchID string) (BatchRef, error) {
	ref := BatchRef{Kind: kind, BatchID: batchID}
	if err := ref.Validate(); err != nil {
		return BatchRef{}, err
	}
	return ref, nil
}

// Validate verifica el invariante del tipo etiquetado: un tipo conocido y un lote presente.
func (r BatchRef) Validate() error {
	if r.Kind != BatchKindProduct && r.Kind != BatchKindPackaging {
		return domain.ErrInvalidBatchReference
	}
	if r.BatchID == "" {
		return domain.ErrInvalidBatchReference
	}
	return nil
}

// BatchRegistryEntry es el alta inmutable de un lote lógico en el registro.
// La crea el subsistema que originó el lote físico (recepción o producción);
// un lote nunca se reclasifica después de creado.
type BatchRegistryEntry struct {
	ID        string
	Ref       BatchRef
	CreatedBy string
	CreatedAt time.Time
}
