// Package metrics expone contadores Prometheus alimentados por los eventos del motor.
package metrics

import (
	"context"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
)

const namespace = "trazabilidad"

var _ ports.EventPublisher = (*Collector)(nil)

// Collector observador del motor que actualiza métricas; nunca falla.
type Collector struct {
	events         *prometheus.CounterVec
	movements      *prometheus.CounterVec
	movedKg        *prometheus.CounterVec
	partialShrink  *prometheus.HistogramVec
	shrinkExceeded *prometheus.CounterVec
	stock          *prometheus.GaugeVec
}

// NewCollector registra las métricas en reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Eventos emitidos por el motor, por tipo.",
		}, []string{"type"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_movements_total",
			Help:      "Movimientos de inventario registrados, por tipo.",
		}, []string{"movement_type"}),
		movedKg: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_moved_quantity_total",
			Help:      "Cantidad movida, por tipo de movimiento y material.",
		}, []string{"movement_type", "material_type_id"}),
		partialShrink: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_partial_shrink_percent",
			Help:      "Merma parcial de etapas cerradas, en porcentaje.",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15, 20, 30, 50, 100},
		}, []string{"stage_type"}),
		shrinkExceeded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_shrink_exceeded_total",
			Help:      "Etapas cerradas con merma por encima del umbral del material.",
		}, []string{"stage_type"}),
		stock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_stock_quantity",
			Help:      "Stock tras el último movimiento, por bodega y material.",
		}, []string{"warehouse_id", "material_type_id"}),
	}
	reg.MustRegister(c.events, c.movements, c.movedKg, c.partialShrink, c.shrinkExceeded, c.stock)
	return c
}

func (c *Collector) Publish(_ context.Context, e entity.Event) error {
	c.events.WithLabelValues(string(e.Type)).Inc()
	a := e.Attributes
	switch e.Type {
	case entity.EventStockMoved:
		c.movements.WithLabelValues(a["movement_type"]).Inc()
		if q, ok := parse(a["quantity"]); ok {
			c.movedKg.WithLabelValues(a["movement_type"], a["material_type_id"]).Add(q)
		}
		if after, ok := parse(a["quantity_after"]); ok {
			c.stock.WithLabelValues(a["warehouse_id"], a["material_type_id"]).Set(after)
		}
	case entity.EventStageClosed:
		if p, ok := parse(a["partial_shrink"]); ok {
			c.partialShrink.WithLabelValues(a["stage_type"]).Observe(p)
		}
	case entity.EventShrinkExceeded:
		c.shrinkExceeded.WithLabelValues(a["stage_type"]).Inc()
	}
	return nil
}

func parse(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
