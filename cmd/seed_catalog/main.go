// seed_catalog genera un script SQL para poblar bodegas, tipos de material y proveedores
// a partir de archivos CSV exportados por la administración (UTF-8 o Latin-1).
//
// Uso: go run ./cmd/seed_catalog -warehouses bodegas.csv -materials materiales.csv -suppliers proveedores.csv [-out seed.sql]
// Sin -out escribe en la salida estándar. El script es idempotente (ON CONFLICT DO UPDATE).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	var (
		warehouses = flag.String("warehouses", "", "CSV de bodegas: id,name,address,max_capacity,state")
		materials  = flag.String("materials", "", "CSV de materiales: id,name,category,unit,base_price,shrink_threshold,active")
		suppliers  = flag.String("suppliers", "", "CSV de proveedores: id,first_name,last_name,document_number,phone,email")
		outPath    = flag.String("out", "", "archivo SQL de salida (por defecto stdout)")
	)
	flag.Parse()

	inputs := []struct {
		path  string
		table catalogTable
	}{
		{*warehouses, warehouseTable},
		{*materials, materialTable},
		{*suppliers, supplierTable},
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)
	defer w.Flush()

	fmt.Fprintln(w, "-- Catálogo de trazabilidad (generado por seed_catalog)")
	total := 0
	for _, in := range inputs {
		if in.path == "" {
			continue
		}
		n, err := seedFile(w, in.path, in.table)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", in.path, err)
			os.Exit(1)
		}
		total += n
	}
	if total == 0 {
		fmt.Fprintln(os.Stderr, "ningún CSV indicado; use -warehouses, -materials o -suppliers")
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "Generadas %d filas\n", total)
}

func seedFile(w io.Writer, path string, table catalogTable) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return writeSQL(w, f, table)
}
