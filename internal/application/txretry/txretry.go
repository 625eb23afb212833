// Package txretry reintenta operaciones transaccionales ante conflictos
// transitorios (lectura obsoleta, fallo de serialización, bloqueo no
// disponible). La misma operación lógica se vuelve a ejecutar completa; la
// idempotencia del libro hace seguros los reintentos.
package txretry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// Policy define cuántos intentos y con qué espera base se reintenta.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy política usada si la configuración no define otra.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Backoff: 50 * time.Millisecond}
}

// Retryable indica si el error es un conflicto transitorio de concurrencia.
// Los errores de validación, de regla de negocio y de integridad no lo son:
// se propagan al primer intento.
func Retryable(err error) bool {
	return errors.Is(err, domain.ErrStaleRead) || errors.Is(err, domain.ErrTxConflict)
}

// Do ejecuta op y la reintenta con espera lineal mientras el error sea
// transitorio. Agotados los intentos retorna ErrTxRetryExhausted envolviendo
// el último error observado.
func (p Policy) Do(ctx context.Context, log *logger.Logger, name string, op func() error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var last error
	for i := 1; i <= attempts; i++ {
		err := op()
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		last = err
		if i == attempts {
			break
		}
		if log != nil {
			log.Warn().Err(err).Str("operacion", name).Int("intento", i).
				Msg("conflicto transitorio, reintentando")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i) * p.Backoff):
		}
	}
	return fmt.Errorf("%w tras %d intentos: %v", domain.ErrTxRetryExhausted, attempts, last)
}
