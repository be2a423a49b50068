package report_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/report"
)

var t0 = time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)

func kg(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func movements() []*entity.InventoryMovement {
	return []*entity.InventoryMovement{
		{ID: "m2", Type: entity.MovementTypeOUT, Quantity: kg("30"), QuantityBefore: kg("100"), QuantityAfter: kg("70"),
			Reason: "venta", Date: t0.Add(time.Hour), LotID: "l1"},
		{ID: "m1", Type: entity.MovementTypeIN, Quantity: kg("100"), QuantityBefore: kg("0"), QuantityAfter: kg("100"),
			Reason: "ingreso", Date: t0, LotID: "l1"},
	}
}

func TestKardexXLSX(t *testing.T) {
	data, err := report.KardexXLSX(report.KardexData{
		Record:        &entity.InventoryRecord{ID: "r1", WarehouseID: "W", MaterialTypeID: "PET", Quantity: kg("70"), MinStock: kg("50")},
		WarehouseName: "Central",
		MaterialName:  "PET",
		Movements:     movements(),
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(report.KardexSheet)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"bodega", "Central", "W"}, rows[0])
	assert.Equal(t, "fecha", rows[4][0])
	assert.Equal(t, "OUT", rows[5][1])
	assert.Equal(t, "-30", rows[5][2])
	assert.Equal(t, "IN", rows[6][1])
	assert.Equal(t, "100", rows[6][4])
}

func TestKardexXLSX_SinRegistro(t *testing.T) {
	_, err := report.KardexXLSX(report.KardexData{})
	assert.Error(t, err)
}

func TestCertificate(t *testing.T) {
	end := t0.Add(time.Hour)
	parent := &entity.Lot{ID: "p", Code: "LOT-20260504-000001", NetWeight: kg("100"), State: entity.LotProcessed,
		Quality: entity.QualityHigh, MaterialTypeID: "PET", CreatedAt: t0}
	lot := &entity.Lot{ID: "l1", Code: "LOT-20260504-000002", GrossWeight: kg("90"), NetWeight: kg("90"),
		RemainingWeight: kg("90"), State: entity.LotAvailable, Quality: entity.QualityHigh, MaterialTypeID: "PET",
		ParentID: "p", CreatedAt: t0}

	pdf, err := report.NewCertificateGenerator("Recicladora Andina").Generate(context.Background(), report.CertificateData{
		Lot:     lot,
		Lineage: []*entity.Lot{parent, lot},
		Stages: []*entity.ProcessingStage{{
			ID: "s1", LotID: "l1", Type: entity.StageWashing, StartedAt: t0, EndedAt: &end,
			InputWeight: kg("100"), OutputWeight: kg("90"), PartialShrink: kg("10"), CumulativeShrink: kg("10"),
			ShrinkExceeded: true,
		}},
		Movements:     movements(),
		TotalShrink:   kg("10"),
		LineageShrink: kg("10"),
		MaterialName:  "PET",
		WarehouseName: "Central",
		GeneratedAt:   t0,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestCertificate_SinLote(t *testing.T) {
	_, err := report.NewCertificateGenerator("x").Generate(context.Background(), report.CertificateData{})
	assert.Error(t, err)
}
