// Package ledger: cálculo y verificación del checksum de las entradas del
// libro de inventario. Algoritmo: SHA-384 sobre una cadena canónica con los
// campos en orden estricto. La huella detecta duplicados reintentados y
// alteraciones fuera de banda; no es una frontera criptográfica ni una cadena
// de bloques (no enlaza con la entrada anterior).

package ledger

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// Separador de campos de la cadena canónica. Evita ambigüedad entre campos
// contiguos (p. ej. "1"+"23" vs "12"+"3").
const fieldSeparator = "|"

// CanonicalTime normaliza una marca lógica a UTC truncada a microsegundos,
// la resolución de TIMESTAMPTZ. Una marca con nanosegundos volvería de la
// base distinta de la que se asentó y rompería clave natural y huella; toda
// marca que participa en el libro pasa por aquí antes de usarse.
func CanonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// ChecksumInput contiene los campos que participan en la huella, en el orden
// estricto de la cadena canónica.
type ChecksumInput struct {
	PreviousQuantity decimal.Decimal
	QuantityChange   decimal.Decimal
	NewQuantity      decimal.Decimal
	ActionTypeID     string
	Inventory        entity.InventoryRef
	RecordedAt       time.Time
}

// ChecksumService calcula la huella de las entradas del libro.
type ChecksumService struct{}

// NewChecksumService crea el servicio.
func NewChecksumService() *ChecksumService {
	return &ChecksumService{}
}

// Compute genera el checksum (hash hexadecimal SHA-384) de una entrada.
// Cadena canónica (separador '|', orden estricto):
//
//	previousQuantity|quantityChange|newQuantity|actionTypeId|scope|inventoryId|recordedAt
//
// Cantidades con punto decimal, sin separador de miles, redondeadas a 3
// decimales (ej: 100.000, -12.000). Fecha en RFC3339Nano normalizada a UTC y
// truncada a microsegundos, igual que la almacena TIMESTAMPTZ: la huella
// recomputada desde la fila persistida debe coincidir con la original.
func (s *ChecksumService) Compute(in ChecksumInput) (string, error) {
	actionType := strings.TrimSpace(in.ActionTypeID)
	if actionType == "" {
		return "", fmt.Errorf("ledger: ActionTypeID es obligatorio")
	}
	if err := in.Inventory.Validate(); err != nil {
		return "", fmt.Errorf("ledger: referencia de inventario inválida: %w", err)
	}
	if in.RecordedAt.IsZero() {
		return "", fmt.Errorf("ledger: RecordedAt es obligatorio")
	}

	cadena := strings.Join([]string{
		formatQuantity(in.PreviousQuantity),
		formatQuantity(in.QuantityChange),
		formatQuantity(in.NewQuantity),
		actionType,
		in.Inventory.Scope,
		in.Inventory.InventoryID,
		formatTimestamp(in.RecordedAt),
	}, fieldSeparator)

	hash := sha512.Sum384([]byte(cadena))
	return hex.EncodeToString(hash[:]), nil
}

// ComputeForEntry calcula la huella a partir de los campos de una entrada.
func (s *ChecksumService) ComputeForEntry(e *entity.ActivityLogEntry) (string, error) {
	if e == nil {
		return "", fmt.Errorf("ledger: la entrada es obligatoria")
	}
	return s.Compute(ChecksumInput{
		PreviousQuantity: e.PreviousQuantity,
		QuantityChange:   e.QuantityChange,
		NewQuantity:      e.NewQuantity,
		ActionTypeID:     e.ActionTypeID,
		Inventory:        e.Inventory,
		RecordedAt:       e.RecordedAt,
	})
}

// Verify recomputa la huella desde los campos almacenados y la compara con la
// persistida. Lo usan los trabajos periódicos de consistencia y los tests de
// integración.
func (s *ChecksumService) Verify(e *entity.ActivityLogEntry) (bool, error) {
	got, err := s.ComputeForEntry(e)
	if err != nil {
		return false, err
	}
	return got == e.Checksum, nil
}

// formatQuantity formatea cantidades para la cadena canónica: punto decimal,
// sin separador de miles, 3 decimales (ej: 1500.000).
func formatQuantity(d decimal.Decimal) string {
	return d.Round(3).StringFixed(3)
}

// formatTimestamp normaliza a UTC truncado a microsegundos para que la
// huella no dependa de la zona horaria de la sesión ni de precisión que el
// almacenamiento no conserva.
func formatTimestamp(t time.Time) string {
	return CanonicalTime(t).Format(time.RFC3339Nano)
}
