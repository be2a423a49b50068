package codegen_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/codegen"
)

func TestSequential_FormatoYReinicioDiario(t *testing.T) {
	ctx := context.Background()
	g := codegen.NewSequential(" rec ")
	day1 := time.Date(2026, 5, 14, 23, 0, 0, 0, time.UTC)

	c1, err := g.Next(ctx, day1)
	require.NoError(t, err)
	c2, err := g.Next(ctx, day1)
	require.NoError(t, err)
	c3, err := g.Next(ctx, day1.Add(2*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "REC-20260514-000001", c1)
	assert.Equal(t, "REC-20260514-000002", c2)
	assert.Equal(t, "REC-20260515-000001", c3)
}

func TestFormat_PrefijoPorDefecto(t *testing.T) {
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "LOT-20260102-000042", codegen.Format("", at, 42))
}
