// Package memory implementa los puertos de persistencia en proceso.
// Cada unidad de trabajo opera sobre una copia del estado que solo reemplaza al original si fn no falla.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/trazabilidad-api/internal/application/ports"
	"github.com/jhoicas/trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/trazabilidad-api/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	warehouses map[string]*entity.Warehouse
	materials  map[string]*entity.MaterialType
	suppliers  map[string]*entity.Supplier
	lots       map[string]*entity.Lot
	lotCodes   map[string]string
	stages     map[string]*entity.ProcessingStage
	stageOrder []string
	records    map[string]*entity.InventoryRecord
	recordKeys map[string]string
	movements  []*entity.InventoryMovement
}

func newState() *state {
	return &state{
		warehouses: map[string]*entity.Warehouse{},
		materials:  map[string]*entity.MaterialType{},
		suppliers:  map[string]*entity.Supplier{},
		lots:       map[string]*entity.Lot{},
		lotCodes:   map[string]string{},
		stages:     map[string]*entity.ProcessingStage{},
		records:    map[string]*entity.InventoryRecord{},
		recordKeys: map[string]string{},
	}
}

// clone copia las tablas mutables. Movimientos y catálogo son inmutables dentro de una unidad de trabajo,
// por lo que se comparten los punteros.
func (s *state) clone() *state {
	c := &state{
		warehouses: maps.Clone(s.warehouses),
		materials:  maps.Clone(s.materials),
		suppliers:  maps.Clone(s.suppliers),
		lots:       make(map[string]*entity.Lot, len(s.lots)),
		lotCodes:   maps.Clone(s.lotCodes),
		stages:     make(map[string]*entity.ProcessingStage, len(s.stages)),
		stageOrder: slices.Clone(s.stageOrder),
		records:    make(map[string]*entity.InventoryRecord, len(s.records)),
		recordKeys: maps.Clone(s.recordKeys),
		movements:  slices.Clone(s.movements),
	}
	for id, l := range s.lots {
		c.lots[id] = copyLot(l)
	}
	for id, st := range s.stages {
		c.stages[id] = copyStage(st)
	}
	for id, r := range s.records {
		c.records[id] = copyRecord(r)
	}
	return c
}

// view abstrae el acceso al estado: directo dentro de una transacción, con bloqueo fuera de ella.
type view interface {
	read(fn func(st *state))
	write(fn func(st *state))
}

type txView struct{ st *state }

func (v txView) read(fn func(st *state))  { fn(v.st) }
func (v txView) write(fn func(st *state)) { fn(v.st) }

type storeView struct{ s *Store }

func (v storeView) read(fn func(st *state)) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	fn(v.s.st)
}

func (v storeView) write(fn func(st *state)) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	fn(v.s.st)
}

// Store almacén en memoria con transacciones por instantánea. Las unidades de trabajo se serializan.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado y la confirma solo si fn no devuelve error.
// Los repositorios entregados a fn no deben usarse fuera de ella.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(newRepositories(txView{st: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.st = work
	return nil
}

// Repositories repositorios fuera de transacción: cada llamada lee o escribe el estado confirmado.
func (s *Store) Repositories() repository.Repositories {
	return newRepositories(storeView{s: s})
}

// PutWarehouse registra o reemplaza una bodega (administración externa al motor).
func (s *Store) PutWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.warehouses[w.ID] = &w
}

// PutMaterialType registra o reemplaza un tipo de material.
func (s *Store) PutMaterialType(m entity.MaterialType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.materials[m.ID] = &m
}

// PutSupplier registra o reemplaza un proveedor.
func (s *Store) PutSupplier(p entity.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.suppliers[p.ID] = &p
}

func newRepositories(v view) repository.Repositories {
	return repository.Repositories{
		Warehouses:    &WarehouseRepo{v: v},
		MaterialTypes: &MaterialTypeRepo{v: v},
		Suppliers:     &SupplierRepo{v: v},
		Lots:          &LotRepo{v: v},
		Stages:        &ProcessingStageRepo{v: v},
		Records:       &InventoryRecordRepo{v: v},
		Movements:     &InventoryMovementRepo{v: v},
	}
}

func copyLot(l *entity.Lot) *entity.Lot {
	c := *l
	return &c
}

func copyStage(s *entity.ProcessingStage) *entity.ProcessingStage {
	c := *s
	if s.EndedAt != nil {
		end := *s.EndedAt
		c.EndedAt = &end
	}
	return &c
}

func copyRecord(r *entity.InventoryRecord) *entity.InventoryRecord {
	c := *r
	return &c
}
