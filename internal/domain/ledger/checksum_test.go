package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// TestChecksum_VectorExacto valida que el cálculo SHA-384 produce el hash
// exacto esperado para una entrada conocida.
//
// Este test es el canario del libro de inventario: si alguien modifica la
// cadena canónica, el orden de los campos, el algoritmo o el formato de las
// cantidades, el test falla de inmediato. De esa huella depende la detección
// de reintentos duplicados y de alteraciones fuera de banda.
//
// Vector de prueba calculado manualmente con SHA-384:
//
//	Cadena = prev|change|new|actionType|scope|inventoryId|recordedAt
//	       = "100.000|-12.000|88.000|ADJUSTMENT|WAREHOUSE|" +
//	         "c1a7e2d4-9b3f-4f6a-8e2d-5b9c0a1f3e72|2025-03-18T14:05:09Z"
// ──────────────────────────────────────────────────────────────────────────────

const (
	testChecksumExpected = "0fc5b9e3d8dc05fc72b39f6e9f5ef453adae5fa9c9854254a7c3ad96c4ad842688c25178220a0d147cd236874070a156"

	testInventoryID = "c1a7e2d4-9b3f-4f6a-8e2d-5b9c0a1f3e72"
)

var testRecordedAt = time.Date(2025, 3, 18, 14, 5, 9, 0, time.UTC)

func buildTestInput() ledger.ChecksumInput {
	return ledger.ChecksumInput{
		PreviousQuantity: decimal.NewFromInt(100),
		QuantityChange:   decimal.NewFromInt(-12),
		NewQuantity:      decimal.NewFromInt(88),
		ActionTypeID:     entity.ActionTypeAdjustment,
		Inventory:        entity.InventoryRef{Scope: entity.ScopeWarehouse, InventoryID: testInventoryID},
		RecordedAt:       testRecordedAt,
	}
}

func TestChecksum_VectorExacto(t *testing.T) {
	svc := ledger.NewChecksumService()

	got, err := svc.Compute(buildTestInput())
	require.NoError(t, err, "Compute no debe retornar error con una entrada válida")
	assert.Equal(t, testChecksumExpected, got,
		"El checksum debe coincidir exactamente con el vector SHA-384 de referencia")
}

// TestChecksum_Determinista verifica que el mismo input produce siempre la
// misma huella (condición necesaria para la idempotencia de reintentos).
func TestChecksum_Determinista(t *testing.T) {
	svc := ledger.NewChecksumService()

	c1, err1 := svc.Compute(buildTestInput())
	c2, err2 := svc.Compute(buildTestInput())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, c1, c2, "El mismo input siempre debe producir el mismo checksum")
}

// TestChecksum_SensibleACadaCampo verifica que mutar cualquier campo de la
// entrada cambia la huella.
func TestChecksum_SensibleACadaCampo(t *testing.T) {
	svc := ledger.NewChecksumService()
	base, err := svc.Compute(buildTestInput())
	require.NoError(t, err)

	cases := []struct {
		name   string
		mutate func(*ledger.ChecksumInput)
	}{
		{"cantidad previa", func(in *ledger.ChecksumInput) { in.PreviousQuantity = decimal.NewFromInt(101) }},
		{"delta", func(in *ledger.ChecksumInput) { in.QuantityChange = decimal.NewFromInt(-13) }},
		{"cantidad nueva", func(in *ledger.ChecksumInput) { in.NewQuantity = decimal.NewFromInt(87) }},
		{"tipo de acción", func(in *ledger.ChecksumInput) { in.ActionTypeID = entity.ActionTypeSale }},
		{"ámbito", func(in *ledger.ChecksumInput) { in.Inventory.Scope = entity.ScopeLocation }},
		{"inventario", func(in *ledger.ChecksumInput) {
			in.Inventory.InventoryID = "3d1f0a9b-2c4e-45d7-9a8b-6e5f4c3d2b1a"
		}},
		{"fecha", func(in *ledger.ChecksumInput) { in.RecordedAt = testRecordedAt.Add(time.Second) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := buildTestInput()
			tc.mutate(&in)
			got, err := svc.Compute(in)
			require.NoError(t, err)
			assert.NotEqual(t, base, got,
				"cambiar el campo %q debe producir un checksum distinto", tc.name)
		})
	}
}

// TestChecksum_NormalizaZonaHoraria verifica que el mismo instante expresado
// en otra zona horaria produce la misma huella.
func TestChecksum_NormalizaZonaHoraria(t *testing.T) {
	svc := ledger.NewChecksumService()

	bogota := time.FixedZone("America/Bogota", -5*60*60)
	in := buildTestInput()
	in.RecordedAt = testRecordedAt.In(bogota)

	got, err := svc.Compute(in)
	require.NoError(t, err)
	assert.Equal(t, testChecksumExpected, got,
		"El mismo instante en otra zona horaria debe producir la misma huella")
}

// TestCanonicalTime_NormalizaAUTCYMicrosegundos verifica la canonicalización
// de marcas lógicas: UTC y truncado a microsegundos, la resolución de
// TIMESTAMPTZ.
func TestCanonicalTime_NormalizaAUTCYMicrosegundos(t *testing.T) {
	bogota := time.FixedZone("America/Bogota", -5*60*60)
	marca := time.Date(2025, 3, 18, 9, 5, 9, 123456789, bogota)

	got := ledger.CanonicalTime(marca)

	assert.Equal(t, time.UTC, got.Location(), "la marca canónica debe quedar en UTC")
	assert.Equal(t, 123456000, got.Nanosecond(),
		"la marca canónica debe truncarse a microsegundos")
	assert.True(t, got.Equal(time.Date(2025, 3, 18, 14, 5, 9, 123456000, time.UTC)))
}

// TestChecksum_MarcaSubSegundoSobreviveElViajePorLaBase: TIMESTAMPTZ almacena
// microsegundos, así que una entrada asentada con marca de nanosegundos
// vuelve de la base con la fecha truncada. La huella recomputada desde la
// fila leída debe seguir coincidiendo con la persistida.
func TestChecksum_MarcaSubSegundoSobreviveElViajePorLaBase(t *testing.T) {
	svc := ledger.NewChecksumService()

	entry := &entity.ActivityLogEntry{
		Inventory:        entity.InventoryRef{Scope: entity.ScopeWarehouse, InventoryID: testInventoryID},
		ActionTypeID:     entity.ActionTypeAdjustment,
		PreviousQuantity: decimal.NewFromInt(100),
		QuantityChange:   decimal.NewFromInt(-12),
		NewQuantity:      decimal.NewFromInt(88),
		RecordedAt:       testRecordedAt.Add(123456789 * time.Nanosecond),
	}
	sum, err := svc.ComputeForEntry(entry)
	require.NoError(t, err)
	entry.Checksum = sum

	// Ida y vuelta por la base: los nanosegundos no se conservan.
	entry.RecordedAt = entry.RecordedAt.Truncate(time.Microsecond)

	ok, err := svc.Verify(entry)
	require.NoError(t, err)
	assert.True(t, ok, "la huella no debe depender de precisión que la base no conserva")
}

// ── Errores de validación ─────────────────────────────────────────────────────

func TestChecksum_ErrorSiSinTipoAccion(t *testing.T) {
	svc := ledger.NewChecksumService()
	in := buildTestInput()
	in.ActionTypeID = "  "
	_, err := svc.Compute(in)
	assert.Error(t, err, "Compute sin tipo de acción debe retornar error")
}

func TestChecksum_ErrorSiReferenciaInvalida(t *testing.T) {
	svc := ledger.NewChecksumService()
	in := buildTestInput()
	in.Inventory.Scope = "PASILLO"
	_, err := svc.Compute(in)
	assert.Error(t, err, "Compute con ámbito desconocido debe retornar error")
}

func TestChecksum_ErrorSiSinFecha(t *testing.T) {
	svc := ledger.NewChecksumService()
	in := buildTestInput()
	in.RecordedAt = time.Time{}
	_, err := svc.Compute(in)
	assert.Error(t, err, "Compute sin fecha debe retornar error")
}

// TestChecksum_LongitudHash valida que la huella SHA-384 tenga exactamente
// 96 caracteres hexadecimales.
func TestChecksum_LongitudHash(t *testing.T) {
	svc := ledger.NewChecksumService()
	got, err := svc.Compute(buildTestInput())
	require.NoError(t, err)
	assert.Len(t, got, 96, "El checksum debe tener 96 caracteres hexadecimales (SHA-384)")
}

// ── Verify ────────────────────────────────────────────────────────────────────

// TestVerify_RoundTrip verifica que una entrada cuyo checksum fue calculado
// desde sus propios campos siempre verifica.
func TestVerify_RoundTrip(t *testing.T) {
	svc := ledger.NewChecksumService()

	entry := &entity.ActivityLogEntry{
		Inventory:        entity.InventoryRef{Scope: entity.ScopeWarehouse, InventoryID: testInventoryID},
		ActionTypeID:     entity.ActionTypeAdjustment,
		PreviousQuantity: decimal.NewFromInt(100),
		QuantityChange:   decimal.NewFromInt(-12),
		NewQuantity:      decimal.NewFromInt(88),
		RecordedAt:       testRecordedAt,
	}
	sum, err := svc.ComputeForEntry(entry)
	require.NoError(t, err)
	entry.Checksum = sum

	ok, err := svc.Verify(entry)
	require.NoError(t, err)
	assert.True(t, ok, "una entrada íntegra debe verificar")
}

// TestVerify_DetectaAlteracion verifica que mutar un campo persistido sin
// recalcular la huella hace fallar la verificación.
func TestVerify_DetectaAlteracion(t *testing.T) {
	svc := ledger.NewChecksumService()

	entry := &entity.ActivityLogEntry{
		Inventory:        entity.InventoryRef{Scope: entity.ScopeWarehouse, InventoryID: testInventoryID},
		ActionTypeID:     entity.ActionTypeAdjustment,
		PreviousQuantity: decimal.NewFromInt(100),
		QuantityChange:   decimal.NewFromInt(-12),
		NewQuantity:      decimal.NewFromInt(88),
		RecordedAt:       testRecordedAt,
	}
	sum, err := svc.ComputeForEntry(entry)
	require.NoError(t, err)
	entry.Checksum = sum

	entry.NewQuantity = decimal.NewFromInt(880) // alteración fuera de banda

	ok, err := svc.Verify(entry)
	require.NoError(t, err)
	assert.False(t, ok, "una entrada alterada no debe verificar")
}
