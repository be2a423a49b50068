package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// catalogTable describe una tabla del catálogo: columnas esperadas en el CSV y validación por fila.
type catalogTable struct {
	name     string
	columns  []string
	validate func(row map[string]string) error
}

var warehouseTable = catalogTable{
	name:    "warehouses",
	columns: []string{"id", "name", "address", "max_capacity", "state"},
	validate: func(row map[string]string) error {
		if err := nonNegative(row, "max_capacity"); err != nil {
			return err
		}
		_, err := entity.ParseWarehouseState(row["state"])
		return err
	},
}

var materialTable = catalogTable{
	name:    "material_types",
	columns: []string{"id", "name", "category", "unit", "base_price", "shrink_threshold", "active"},
	validate: func(row map[string]string) error {
		if _, err := entity.ParseMaterialCategory(row["category"]); err != nil {
			return err
		}
		if _, err := entity.ParseUnitOfMeasure(row["unit"]); err != nil {
			return err
		}
		if err := nonNegative(row, "base_price"); err != nil {
			return err
		}
		if err := nonNegative(row, "shrink_threshold"); err != nil {
			return err
		}
		if d, _ := decimal.NewFromString(row["shrink_threshold"]); d.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("shrink_threshold %s mayor a 100", d)
		}
		switch strings.ToLower(row["active"]) {
		case "true", "false":
			return nil
		}
		return fmt.Errorf("active debe ser true o false, no %q", row["active"])
	},
}

var supplierTable = catalogTable{
	name:     "suppliers",
	columns:  []string{"id", "first_name", "last_name", "document_number", "phone", "email"},
	validate: func(map[string]string) error { return nil },
}

// literal columnas que van sin comillas en el SQL.
var literal = map[string]bool{"max_capacity": true, "base_price": true, "shrink_threshold": true, "active": true}

// writeSQL lee el CSV (con cabecera) y escribe un INSERT ... ON CONFLICT por fila.
// Si el archivo no es UTF-8 válido se decodifica como ISO-8859-1.
func writeSQL(w io.Writer, r io.Reader, table catalogTable) (int, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("leer CSV: %w", err)
	}
	if len(records) < 2 {
		return 0, fmt.Errorf("el CSV de %s requiere cabecera y al menos una fila", table.name)
	}
	header := records[0]
	if !sameColumns(header, table.columns) {
		return 0, fmt.Errorf("cabecera de %s esperada %v, obtenida %v", table.name, table.columns, header)
	}

	fmt.Fprintf(w, "\n-- %s\n", table.name)
	for i, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for j, col := range header {
			row[col] = strings.TrimSpace(rec[j])
		}
		if row["id"] == "" {
			return 0, fmt.Errorf("fila %d: id vacío", i+2)
		}
		if err := table.validate(row); err != nil {
			return 0, fmt.Errorf("fila %d: %w", i+2, err)
		}
		writeInsert(w, table, row)
	}
	return len(records) - 1, nil
}

func writeInsert(w io.Writer, table catalogTable, row map[string]string) {
	values := make([]string, len(table.columns))
	updates := make([]string, 0, len(table.columns)-1)
	for i, col := range table.columns {
		if literal[col] {
			values[i] = strings.ToLower(row[col])
		} else {
			values[i] = "'" + escapeSQL(row[col]) + "'"
		}
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s)\nON CONFLICT (id) DO UPDATE SET %s;\n",
		table.name, strings.Join(table.columns, ", "), strings.Join(values, ", "), strings.Join(updates, ", "))
}

func nonNegative(row map[string]string, col string) error {
	d, err := decimal.NewFromString(row[col])
	if err != nil {
		return fmt.Errorf("%s no numérico: %q", col, row[col])
	}
	if d.IsNegative() {
		return fmt.Errorf("%s negativo: %s", col, d)
	}
	return nil
}

func sameColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(strings.ToLower(got[i])) != want[i] {
			return false
		}
	}
	return true
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
