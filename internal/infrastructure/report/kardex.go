package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// KardexSheet nombre de la hoja con los movimientos.
const KardexSheet = "Kardex"

var kardexHeader = []interface{}{
	"fecha", "tipo", "cantidad", "antes", "despues", "lote", "motivo", "referencia", "usuario",
}

// KardexData registro de inventario y sus movimientos (en el orden en que se imprimen).
type KardexData struct {
	Record        *entity.InventoryRecord
	WarehouseName string
	MaterialName  string
	Movements     []*entity.InventoryMovement
}

// KardexXLSX exporta el kardex de un registro a un libro XLSX.
// Las filas 1-3 resumen el registro; la cabecera de movimientos va en la fila 5.
func KardexXLSX(d KardexData) ([]byte, error) {
	if d.Record == nil {
		return nil, fmt.Errorf("xlsx: kardex sin registro")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), KardexSheet); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	summary := [][]interface{}{
		{"bodega", d.WarehouseName, d.Record.WarehouseID},
		{"material", d.MaterialName, d.Record.MaterialTypeID},
		{"stock", d.Record.Quantity.InexactFloat64(), "min", d.Record.MinStock.InexactFloat64(), "max", d.Record.MaxStock.InexactFloat64()},
	}
	for i, values := range summary {
		if err := setRow(f, 1, i+1, values); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx: estilo: %w", err)
	}
	const headerRow = 5
	if err := setRow(f, 1, headerRow, kardexHeader); err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(KardexSheet, headerRow, headerRow, bold); err != nil {
		return nil, fmt.Errorf("xlsx: estilo cabecera: %w", err)
	}

	for i, m := range d.Movements {
		values := []interface{}{
			m.Date.Format("2006-01-02 15:04:05"),
			string(m.Type),
			m.Delta().InexactFloat64(),
			m.QuantityBefore.InexactFloat64(),
			m.QuantityAfter.InexactFloat64(),
			m.LotID,
			m.Reason,
			m.Reference,
			m.CreatedBy,
		}
		if err := setRow(f, 1, headerRow+1+i, values); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(KardexSheet, "A", "A", 20); err != nil {
		return nil, fmt.Errorf("xlsx: ancho de columna: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("xlsx: escribir: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, col, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx: celda: %w", err)
	}
	if err := f.SetSheetRow(KardexSheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: fila %d: %w", row, err)
	}
	return nil
}
