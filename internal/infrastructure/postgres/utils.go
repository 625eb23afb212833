package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Kardex-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// Códigos de PostgreSQL que marcan conflictos transitorios: la transacción
// puede reintentarse entera con posibilidad de éxito.
//
//	40001 serialization_failure
//	40P01 deadlock_detected
//	55P03 lock_not_available
func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}

// translateTransient envuelve conflictos transitorios de PostgreSQL en
// domain.ErrTxConflict para que la política de reintentos los reconozca.
// Los demás errores pasan sin tocar.
func translateTransient(err error) error {
	if err == nil || !isTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrTxConflict, err)
}
