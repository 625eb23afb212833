package entity

// ActionType es una fila del catálogo de tipos de acción del libro.
// El ID es el código estable (p. ej. ADJUSTMENT) que referencian las entradas.
type ActionType struct {
	ID          string
	Name        string
	Description string
}

// AdjustmentType es una fila del catálogo de tipos de ajuste de lote.
type AdjustmentType struct {
	ID          string
	Name        string
	Description string
}
