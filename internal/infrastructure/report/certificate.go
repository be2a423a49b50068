// Package report genera los documentos de trazabilidad: certificado PDF de un lote
// y kardex XLSX de un registro de inventario.
package report

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 22, Green: 101, Blue: 52}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWarn    = &props.Color{Red: 180, Green: 40, Blue: 40}
)

const dateLayout = "02/01/2006 15:04"

// CertificateData todo lo que se imprime en el certificado de trazabilidad de un lote.
type CertificateData struct {
	Lot           *entity.Lot
	Lineage       []*entity.Lot // raíz primero, termina en Lot
	Children      []*entity.Lot
	Stages        []*entity.ProcessingStage
	Movements     []*entity.InventoryMovement
	TotalShrink   decimal.Decimal
	LineageShrink decimal.Decimal
	MaterialName  string
	WarehouseName string
	SupplierName  string
	GeneratedAt   time.Time
}

// CertificateGenerator genera el certificado con Maroto v2.
type CertificateGenerator struct {
	issuer string
}

// NewCertificateGenerator issuer aparece como autor y en el encabezado.
func NewCertificateGenerator(issuer string) *CertificateGenerator {
	return &CertificateGenerator{issuer: issuer}
}

// Generate devuelve los bytes del PDF.
func (g *CertificateGenerator) Generate(_ context.Context, d CertificateData) ([]byte, error) {
	if d.Lot == nil {
		return nil, fmt.Errorf("pdf: certificado sin lote")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Certificado de trazabilidad "+d.Lot.Code, true).
		WithAuthor(g.issuer, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(d))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(lotRows(d)...)

	m.AddRows(sectionRow("LINAJE (ORIGEN → LOTE)"))
	m.AddRows(lotTable(d.Lineage)...)
	if len(d.Children) > 0 {
		m.AddRows(sectionRow("LOTES DERIVADOS"))
		m.AddRows(lotTable(d.Children)...)
	}

	m.AddRows(sectionRow("ETAPAS DE PROCESAMIENTO"))
	m.AddRows(stageTable(d.Stages)...)
	m.AddRows(shrinkRow(d))

	m.AddRows(sectionRow("MOVIMIENTOS DE INVENTARIO"))
	m.AddRows(movementTable(d.Movements)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Generado el %s por %s.", d.GeneratedAt.Format(dateLayout), g.issuer),
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar certificado: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *CertificateGenerator) headerRow(d CertificateData) core.Row {
	return row.New(30).Add(
		col.New(8).Add(
			text.New("CERTIFICADO DE TRAZABILIDAD", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(g.issuer, props.Text{Size: 9, Top: 9, Color: colorGray}),
			text.New(d.Lot.Code, props.Text{Style: fontstyle.Bold, Size: 14, Top: 16}),
		),
		col.New(4).Add(code.NewQr(d.Lot.Code, props.Rect{Percent: 90, Center: true})),
	)
}

func lotRows(d CertificateData) []core.Row {
	l := d.Lot
	field := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 7, Color: colorGray, Top: 1}),
			text.New(nonEmpty(value, "-"), props.Text{Size: 9, Top: 5}),
		)
	}
	return []core.Row{
		row.New(12).Add(
			field("Material", d.MaterialName),
			field("Bodega", d.WarehouseName),
			field("Proveedor", d.SupplierName),
			field("Estado", string(l.State)),
		),
		row.New(12).Add(
			field("Peso bruto (kg)", l.GrossWeight.StringFixed(2)),
			field("Tara (kg)", l.Tare.StringFixed(2)),
			field("Peso neto (kg)", l.NetWeight.StringFixed(2)),
			field("Calidad", string(l.Quality)),
		),
		row.New(12).Add(
			field("Origen", l.Origin),
			field("Ingreso", l.CreatedAt.Format(dateLayout)),
			field("Registrado por", l.CreatedBy),
			field("Peso restante (kg)", l.RemainingWeight.StringFixed(2)),
		),
	}
}

func sectionRow(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

func headRow(cols ...headCol) core.Row {
	r := row.New(6)
	for _, c := range cols {
		r.Add(col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: c.align, Top: 1,
		})))
	}
	return r
}

type headCol struct {
	label string
	size  int
	align align.Type
}

func cell(size int, s string, a align.Type) core.Col {
	return col.New(size).Add(text.New(s, props.Text{Size: 7.5, Align: a, Top: 1}))
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(text.New(msg, props.Text{Size: 7.5, Color: colorGray, Top: 1})))
}

func lotTable(lots []*entity.Lot) []core.Row {
	if len(lots) == 0 {
		return []core.Row{emptyRow("Sin registros.")}
	}
	rows := []core.Row{headRow(
		headCol{"Código", 4, align.Left},
		headCol{"Material", 2, align.Left},
		headCol{"Neto (kg)", 2, align.Right},
		headCol{"Calidad", 2, align.Center},
		headCol{"Estado", 2, align.Center},
	)}
	for _, l := range lots {
		rows = append(rows, row.New(5).Add(
			cell(4, l.Code, align.Left),
			cell(2, l.MaterialTypeID, align.Left),
			cell(2, l.NetWeight.StringFixed(2), align.Right),
			cell(2, string(l.Quality), align.Center),
			cell(2, string(l.State), align.Center),
		))
	}
	return rows
}

func stageTable(stages []*entity.ProcessingStage) []core.Row {
	if len(stages) == 0 {
		return []core.Row{emptyRow("El lote no registra etapas.")}
	}
	rows := []core.Row{headRow(
		headCol{"Etapa", 2, align.Left},
		headCol{"Inicio", 2, align.Left},
		headCol{"Fin", 2, align.Left},
		headCol{"Entrada", 1, align.Right},
		headCol{"Salida", 1, align.Right},
		headCol{"Merma %", 2, align.Right},
		headCol{"Acumulada %", 2, align.Right},
	)}
	for _, s := range stages {
		end, out, partial, cumulative := "abierta", "-", "-", "-"
		if s.IsClosed() {
			end = s.EndedAt.Format(dateLayout)
			out = s.OutputWeight.StringFixed(2)
			partial = s.PartialShrink.StringFixed(2)
			cumulative = s.CumulativeShrink.StringFixed(2)
		}
		partialCol := cell(2, partial, align.Right)
		if s.ShrinkExceeded {
			partialCol = col.New(2).Add(text.New(partial+" !", props.Text{
				Size: 7.5, Align: align.Right, Top: 1, Style: fontstyle.Bold, Color: colorWarn,
			}))
		}
		rows = append(rows, row.New(5).Add(
			cell(2, string(s.Type), align.Left),
			cell(2, s.StartedAt.Format(dateLayout), align.Left),
			cell(2, end, align.Left),
			cell(1, s.InputWeight.StringFixed(2), align.Right),
			cell(1, out, align.Right),
			partialCol,
			cell(2, cumulative, align.Right),
		))
	}
	return rows
}

func shrinkRow(d CertificateData) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(
			text.New(fmt.Sprintf("Merma total del lote: %s %%", d.TotalShrink.StringFixed(2)),
				props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1}),
			text.New(fmt.Sprintf("Merma compuesta del linaje: %s %%", d.LineageShrink.StringFixed(2)),
				props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 5, Color: colorPrimary}),
		),
	)
}

func movementTable(movements []*entity.InventoryMovement) []core.Row {
	if len(movements) == 0 {
		return []core.Row{emptyRow("Sin movimientos asociados.")}
	}
	rows := []core.Row{headRow(
		headCol{"Fecha", 3, align.Left},
		headCol{"Tipo", 2, align.Center},
		headCol{"Bodega", 2, align.Left},
		headCol{"Cantidad", 2, align.Right},
		headCol{"Motivo", 3, align.Left},
	)}
	for _, m := range movements {
		rows = append(rows, row.New(5).Add(
			cell(3, m.Date.Format(dateLayout), align.Left),
			cell(2, string(m.Type), align.Center),
			cell(2, m.WarehouseID, align.Left),
			cell(2, m.Delta().StringFixed(2), align.Right),
			cell(3, m.Reason, align.Left),
		))
	}
	return rows
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
