package repository

// Repositories agrupa los puertos atados a una misma unidad de trabajo.
// Dentro de TxRunner.Run todos comparten la transacción; fuera de ella leen el estado confirmado.
type Repositories struct {
	Warehouses    WarehouseRepository
	MaterialTypes MaterialTypeRepository
	Suppliers     SupplierRepository
	Lots          LotRepository
	Stages        ProcessingStageRepository
	Records       InventoryRecordRepository
	Movements     InventoryMovementRepository
}
