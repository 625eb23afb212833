package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de validación: se rechazan antes de escribir nada.
var (
	ErrInvalidBatchReference = errors.New("referencia de lote inválida: debe indicar exactamente un tipo de lote")
	ErrZeroDelta             = errors.New("el ajuste debe ser distinto de cero")
)

// Errores de regla de negocio: se detectan con la fila bloqueada y se
// devuelven con la cantidad vigente para que el llamador concilie.
var (
	ErrInsufficientQuantity  = errors.New("cantidad insuficiente en inventario")
	ErrInsufficientAvailable = errors.New("cantidad disponible insuficiente para reservar")
	ErrOverShipment          = errors.New("la cantidad enviada excede la cantidad asignada")
	ErrInvalidTransition     = errors.New("transición de estado no permitida")
)

// Errores transitorios de concurrencia: el caso de uso reintenta la misma
// operación lógica un número acotado de veces antes de propagarlos.
var (
	ErrStaleRead        = errors.New("lectura obsoleta: la cantidad cambió antes de tomar el bloqueo")
	ErrTxConflict       = errors.New("conflicto transitorio de transacción")
	ErrTxRetryExhausted = errors.New("reintentos de transacción agotados")
)

// ErrLedgerIntegrity es fatal: indica corrupción de datos o un error en el
// cálculo del checksum. Nunca se reintenta ni se sobrescribe.
var ErrLedgerIntegrity = errors.New("violación de integridad del libro de inventario")
