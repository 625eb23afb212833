// seed aplica el esquema de base de datos y puebla los catálogos de tipos de
// acción y tipos de ajuste. Es idempotente: puede ejecutarse en cada despliegue.
//
// Uso: go run ./cmd/seed [ruta/tipos_ajuste.csv]
// El CSV opcional agrega tipos de ajuste propios de la operación (formato
// id;nombre;descripción, codificado en ISO-8859-1 como lo exportan los ERP
// legados de los clientes).
package main

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

var actionTypes = []entity.ActionType{
	{ID: entity.ActionTypeAdjustment, Name: "Ajuste de lote", Description: "Cambio manual de cantidad con motivo tipificado"},
	{ID: entity.ActionTypeSale, Name: "Venta", Description: "Salida directa por venta sin reserva previa"},
	{ID: entity.ActionTypeTransferIn, Name: "Entrada por traslado", Description: "Recepción de cantidad desde otro ámbito"},
	{ID: entity.ActionTypeTransferOut, Name: "Salida por traslado", Description: "Envío de cantidad hacia otro ámbito"},
	{ID: entity.ActionTypeAllocationConfirmed, Name: "Asignación confirmada", Description: "Reserva de cantidad disponible para un pedido"},
	{ID: entity.ActionTypeAllocationFulfilled, Name: "Asignación despachada", Description: "Consumo de reserva por envío de pedido"},
	{ID: entity.ActionTypeAllocationCancelled, Name: "Asignación cancelada", Description: "Liberación de reserva por cancelación"},
}

var adjustmentTypes = []entity.AdjustmentType{
	{ID: entity.AdjustmentTypeDamaged, Name: "Mercancía dañada", Description: "Baja por deterioro o avería"},
	{ID: entity.AdjustmentTypeLost, Name: "Pérdida", Description: "Baja por extravío o faltante"},
	{ID: entity.AdjustmentTypeReturned, Name: "Devolución", Description: "Reingreso de mercancía devuelta"},
	{ID: entity.AdjustmentTypeCorrection, Name: "Corrección manual", Description: "Corrección de error de digitación o conteo"},
	{ID: entity.AdjustmentTypeCycleCount, Name: "Conteo cíclico", Description: "Ajuste por inventario físico periódico"},
	{ID: entity.AdjustmentTypeShipment, Name: "Envío de pedido", Description: "Salida registrada por el flujo de despacho"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar esquema")
	}
	log.Info().Msg("esquema aplicado")

	extra, err := loadExtraAdjustmentTypes(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV de tipos de ajuste")
	}

	actionRepo := postgres.NewActionTypeRepository(pool)
	for _, at := range actionTypes {
		if err := actionRepo.Upsert(ctx, &at); err != nil {
			log.Fatal().Err(err).Str("id", at.ID).Msg("sembrar tipo de acción")
		}
	}

	adjTypeRepo := postgres.NewAdjustmentTypeRepository(pool)
	for _, at := range append(adjustmentTypes, extra...) {
		if err := adjTypeRepo.Upsert(ctx, &at); err != nil {
			log.Fatal().Err(err).Str("id", at.ID).Msg("sembrar tipo de ajuste")
		}
	}

	log.Info().
		Int("tipos_accion", len(actionTypes)).
		Int("tipos_ajuste", len(adjustmentTypes)+len(extra)).
		Msg("catálogos sembrados")
}

// loadExtraAdjustmentTypes lee el CSV opcional de tipos de ajuste adicionales.
// Sin argumento retorna vacío sin error.
func loadExtraAdjustmentTypes(args []string) ([]entity.AdjustmentType, error) {
	if len(args) == 0 {
		return nil, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	r.Comma = ';'
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	var out []entity.AdjustmentType
	for _, row := range rows {
		id := strings.ToUpper(strings.TrimSpace(row[0]))
		if id == "" || strings.EqualFold(id, "id") {
			continue
		}
		out = append(out, entity.AdjustmentType{
			ID:          id,
			Name:        strings.TrimSpace(row[1]),
			Description: strings.TrimSpace(row[2]),
		})
	}
	return out, nil
}
