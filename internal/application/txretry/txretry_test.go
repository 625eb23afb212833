package txretry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Kardex-api/internal/application/txretry"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

func policy() txretry.Policy {
	return txretry.Policy{MaxAttempts: 3, Backoff: time.Millisecond}
}

func TestDo_ExitoAlPrimerIntento(t *testing.T) {
	calls := 0
	err := policy().Do(context.Background(), nil, "op", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ReintentaConflictoTransitorio(t *testing.T) {
	calls := 0
	err := policy().Do(context.Background(), nil, "op", func() error {
		calls++
		if calls < 3 {
			return domain.ErrStaleRead
		}
		return nil
	})

	require.NoError(t, err, "el tercer intento debe prosperar")
	assert.Equal(t, 3, calls)
}

func TestDo_AgotaIntentos(t *testing.T) {
	calls := 0
	err := policy().Do(context.Background(), nil, "op", func() error {
		calls++
		return domain.ErrTxConflict
	})

	assert.ErrorIs(t, err, domain.ErrTxRetryExhausted)
	assert.Equal(t, 3, calls, "debe respetar el máximo de intentos")
}

func TestDo_NoReintentaErroresDeNegocio(t *testing.T) {
	calls := 0
	err := policy().Do(context.Background(), nil, "op", func() error {
		calls++
		return domain.ErrInsufficientQuantity
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientQuantity)
	assert.Equal(t, 1, calls, "los errores de regla de negocio se propagan al primer intento")
}

func TestDo_NoReintentaIntegridad(t *testing.T) {
	calls := 0
	err := policy().Do(context.Background(), nil, "op", func() error {
		calls++
		return domain.ErrLedgerIntegrity
	})

	assert.ErrorIs(t, err, domain.ErrLedgerIntegrity)
	assert.Equal(t, 1, calls, "un error de integridad es fatal, jamás se reintenta")
}

func TestDo_RespetaCancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := policy().Do(ctx, nil, "op", func() error {
		return domain.ErrStaleRead
	})

	assert.True(t, errors.Is(err, context.Canceled),
		"con el contexto cancelado no debe seguir reintentando")
}
