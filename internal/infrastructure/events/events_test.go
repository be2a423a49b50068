package events_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports/mocks"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/infrastructure/events"
)

var shrinkEvent = entity.Event{
	Type:       entity.EventShrinkExceeded,
	EntityType: entity.EntityProcessingStage,
	EntityID:   "st1",
	OccurredAt: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
	Attributes: map[string]string{"partial_shrink": "10", "threshold": "8"},
}

func TestMulti_EntregaATodosAunqueUnoFalle(t *testing.T) {
	ctrl := gomock.NewController(t)
	failing := mocks.NewMockEventPublisher(ctrl)
	ok := mocks.NewMockEventPublisher(ctrl)
	boom := errors.New("cola caída")

	failing.EXPECT().Publish(gomock.Any(), shrinkEvent).Return(boom)
	ok.EXPECT().Publish(gomock.Any(), shrinkEvent).Return(nil)

	err := events.Multi{failing, ok}.Publish(context.Background(), shrinkEvent)
	require.ErrorIs(t, err, boom)
}

func TestMulti_Vacio(t *testing.T) {
	assert.NoError(t, events.Multi(nil).Publish(context.Background(), shrinkEvent))
}

func TestLogPublisher_AdvertenciaPorMerma(t *testing.T) {
	var buf bytes.Buffer
	p := events.NewLogPublisher(zerolog.New(&buf))

	require.NoError(t, p.Publish(context.Background(), shrinkEvent))
	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"event":"stage.shrink_exceeded"`)
	assert.Contains(t, out, `"partial_shrink":"10"`)
}
