package sqlite

import (
	"database/sql"

	"threatforge/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToFloatPtr safely converts sql.NullFloat64 to *float64
func nullToFloatPtr(nf sql.NullFloat64) *float64 {
	if nf.Valid {
		v := nf.Float64
		return &v
	}
	return nil
}

// floatPtrToNull safely converts *float64 to sql.NullFloat64
func floatPtrToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// ============================================================================
// Layout Node Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between:
// - nodeColumns constant
// - scanArgs() return slice
// - nodeInsertArgs() return slice

// nodeColumns lists the layout_nodes columns read into nodeRow
const nodeColumns = "node_id, x, y, width, height"

// nodeRow holds all columns from a layout node query for scanning
type nodeRow struct {
	ID     string
	X      float64
	Y      float64
	Width  sql.NullFloat64
	Height sql.NullFloat64
}

// scanArgs returns pointers to all fields for sql.Rows.Scan
func (r *nodeRow) scanArgs() []any {
	return []any{&r.ID, &r.X, &r.Y, &r.Width, &r.Height}
}

// toDomain converts the row to a layout entry
func (r *nodeRow) toDomain() domain.NodePosition {
	return domain.NodePosition{
		ID:     r.ID,
		X:      r.X,
		Y:      r.Y,
		Width:  nullToFloatPtr(r.Width),
		Height: nullToFloatPtr(r.Height),
	}
}

// nodeInsertArgs returns the column values of a layout entry in nodeColumns order
func nodeInsertArgs(n domain.NodePosition) []any {
	return []any{n.ID, n.X, n.Y, floatPtrToNull(n.Width), floatPtrToNull(n.Height)}
}
