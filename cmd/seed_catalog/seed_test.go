package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestWriteSQL_Bodegas(t *testing.T) {
	csv := "id,name,address,max_capacity,state\nW1,Central,Calle 10 # 4-21,1500.5,ACTIVE\nW2,Taller O'Neil,,300,MAINTENANCE\n"
	var out bytes.Buffer

	n, err := writeSQL(&out, strings.NewReader(csv), warehouseTable)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	sql := out.String()
	assert.Contains(t, sql, "INSERT INTO warehouses (id, name, address, max_capacity, state) VALUES ('W1', 'Central', 'Calle 10 # 4-21', 1500.5, 'ACTIVE')")
	assert.Contains(t, sql, "'Taller O''Neil'")
	assert.Contains(t, sql, "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name")
}

func TestWriteSQL_Latin1(t *testing.T) {
	utf := "id,first_name,last_name,document_number,phone,email\nS1,José,Muñoz,123,,\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(utf)
	require.NoError(t, err)
	var out bytes.Buffer

	_, err = writeSQL(&out, strings.NewReader(latin1), supplierTable)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "'José', 'Muñoz'")
}

func TestWriteSQL_Errores(t *testing.T) {
	tests := []struct {
		name  string
		csv   string
		table catalogTable
	}{
		{"cabecera distinta", "id,nombre\nW1,Central\n", warehouseTable},
		{"sin filas", "id,name,address,max_capacity,state\n", warehouseTable},
		{"estado desconocido", "id,name,address,max_capacity,state\nW1,Central,,10,OPEN\n", warehouseTable},
		{"capacidad negativa", "id,name,address,max_capacity,state\nW1,Central,,-1,ACTIVE\n", warehouseTable},
		{"umbral mayor a 100", "id,name,category,unit,base_price,shrink_threshold,active\nPET,PET,PLASTIC,KILOGRAM,1200,120,true\n", materialTable},
		{"active inválido", "id,name,category,unit,base_price,shrink_threshold,active\nPET,PET,PLASTIC,KILOGRAM,1200,8,si\n", materialTable},
		{"id vacío", "id,first_name,last_name,document_number,phone,email\n,Ana,,,,\n", supplierTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := writeSQL(&bytes.Buffer{}, strings.NewReader(tt.csv), tt.table)
			assert.Error(t, err)
		})
	}
}
