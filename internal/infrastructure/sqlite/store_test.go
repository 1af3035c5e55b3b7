package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	domstock "github.com/jhoicas/acms-stock/internal/domain/stock"
	"github.com/jhoicas/acms-stock/internal/infrastructure/sqlite"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests de integración sobre SQLite en memoria: repos reales, transacciones
// reales, mismo flujo que el backend Postgres pero sin servidor.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type testStore struct {
	itemRepo repository.StockItemRepository
	movRepo  repository.StockMovementRepository
	movUC    *stock.RegisterMovementUseCase
}

func setupStore(t *testing.T) *testStore {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &testStore{
		itemRepo: sqlite.NewStockItemRepository(db),
		movRepo:  sqlite.NewStockMovementRepository(db),
		movUC:    stock.NewRegisterMovementUseCase(sqlite.NewTxRunner(db)),
	}
}

func createItem(t *testing.T, s *testStore, id, name string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, s.itemRepo.Create(&entity.StockItem{
		ID:              id,
		Name:            name,
		Unit:            "saco",
		ReorderLevel:    dec("20"),
		CurrentQuantity: decimal.Zero,
		UnitCost:        decimal.Zero,
		Currency:        "USD",
		CreatedAt:       now,
		UpdatedAt:       now,
	}))
}

func record(t *testing.T, s *testStore, itemID, typ, qty string, cost *string, date time.Time) {
	t.Helper()
	in := stock.MovementInput{
		ActorID:      "user-1",
		ItemID:       itemID,
		Type:         typ,
		Quantity:     dec(qty),
		MovementDate: date,
	}
	if cost != nil {
		c := dec(*cost)
		in.UnitCost = &c
	}
	_, err := s.movUC.RegisterMovement(context.Background(), in)
	require.NoError(t, err)
}

func strptr(s string) *string { return &s }

// Conservación: tras una serie de entradas y salidas, la cantidad cacheada y
// el saldo reconstruido desde el ledger deben coincidir exactamente.
func TestStore_ConservacionCacheVsLedger(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	record(t, s, "arroz", entity.MovementTypeEntry, "100", strptr("1.40"), d)
	record(t, s, "arroz", entity.MovementTypeExit, "30", nil, d.AddDate(0, 0, 1))
	record(t, s, "arroz", entity.MovementTypeEntry, "10", strptr("1.40"), d.AddDate(0, 0, 2))
	record(t, s, "arroz", entity.MovementTypeExit, "25", nil, d.AddDate(0, 0, 3))

	item, err := s.itemRepo.GetByID("arroz")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.CurrentQuantity.Equal(dec("55")), "cache: %s", item.CurrentQuantity)

	movs, err := s.movRepo.List(repository.MovementFilter{ItemID: "arroz"})
	require.NoError(t, err)
	require.Len(t, movs, 4)

	_, totals := domstock.Replay(movs)
	assert.True(t, totals["arroz"].Available.Equal(item.CurrentQuantity),
		"ledger reconstruido (%s) debe conciliar con la cache (%s)",
		totals["arroz"].Available, item.CurrentQuantity)
}

// Escenario de valuación: 100 sacos a 1.40, salida de 30. El valor reconstruido
// y el cacheado deben dar 98.00 exacto (decimal, no float).
func TestStore_ValuacionExacta(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	record(t, s, "arroz", entity.MovementTypeEntry, "100", strptr("1.40"), d)

	totals, err := s.itemRepo.ValuationSummary()
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals[0].TotalValue.Equal(dec("140.00")), "100 × 1.40 = 140.00 exacto, obtenido %s", totals[0].TotalValue)

	record(t, s, "arroz", entity.MovementTypeExit, "30", nil, d.AddDate(0, 0, 1))

	totals, err = s.itemRepo.ValuationSummary()
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, "USD", totals[0].Currency)
	assert.True(t, totals[0].TotalQuantity.Equal(dec("70")))
	assert.True(t, totals[0].TotalValue.Equal(dec("98.00")), "70 × 1.40 = 98.00 exacto, obtenido %s", totals[0].TotalValue)
}

// Una salida que excede el saldo no deja rastro: ni movimiento en el ledger ni
// cambio en la cantidad cacheada (rollback real de la transacción).
func TestStore_SalidaInsuficienteSinEfecto(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	record(t, s, "arroz", entity.MovementTypeEntry, "10", strptr("1.40"), d)

	_, err := s.movUC.RecordExit(context.Background(), stock.MovementInput{
		ActorID:      "user-1",
		ItemID:       "arroz",
		Quantity:     dec("11"),
		MovementDate: d.AddDate(0, 0, 1),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, err := s.itemRepo.GetByID("arroz")
	require.NoError(t, err)
	assert.True(t, item.CurrentQuantity.Equal(dec("10")))

	movs, err := s.movRepo.List(repository.MovementFilter{ItemID: "arroz"})
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo la entrada inicial")
}

// El listado del ledger respeta el orden (movement_date, created_at) aun cuando
// los movimientos se insertan con fechas de negocio desordenadas.
func TestStore_OrdenDeterministaDelLedger(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	// Entrada registrada hoy pero con fecha de negocio anterior a la salida.
	record(t, s, "arroz", entity.MovementTypeEntry, "100", strptr("1.40"), d)
	record(t, s, "arroz", entity.MovementTypeEntry, "5", strptr("1.40"), d.AddDate(0, 0, -5))

	movs, err := s.movRepo.List(repository.MovementFilter{ItemID: "arroz"})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.True(t, movs[0].MovementDate.Before(movs[1].MovementDate),
		"el ledger sale ordenado por fecha de negocio, no por inserción")
}

// Búsqueda insensible a acentos vía la columna name_search.
func TestStore_BusquedaSinAcentos(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "frijol", "Fríjol rojo")
	createItem(t, s, "aceite", "Aceite vegetal")

	items, err := s.itemRepo.List(repository.ItemFilter{SearchText: "frijol"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "frijol", items[0].ID)

	items, err = s.itemRepo.List(repository.ItemFilter{SearchText: "FRÍJOL"})
	require.NoError(t, err)
	require.Len(t, items, 1, "mayúsculas y acentos no afectan la búsqueda")
}

// El filtro de stock bajo evalúa el predicado antes de paginar: un artículo
// con stock bajo al final del orden alfabético no se pierde aunque caiga
// fuera de la primera página SQL.
func TestStore_StockBajoPaginadoNoPierdeArticulos(t *testing.T) {
	s := setupStore(t)
	now := time.Now().UTC()
	for i := 0; i < 25; i++ {
		require.NoError(t, s.itemRepo.Create(&entity.StockItem{
			ID:              fmt.Sprintf("sano-%02d", i),
			Name:            fmt.Sprintf("Artículo sano %02d", i),
			Unit:            "saco",
			ReorderLevel:    decimal.Zero, // alerta desactivada
			CurrentQuantity: decimal.Zero,
			UnitCost:        decimal.Zero,
			Currency:        "USD",
			CreatedAt:       now,
			UpdatedAt:       now,
		}))
	}
	// ReorderLevel 20 con saldo cero: stock bajo, último en orden alfabético.
	createItem(t, s, "zz-lona", "ZZ Lona impermeable")

	items, err := s.itemRepo.List(repository.ItemFilter{LowStockOnly: true, Limit: 20})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "zz-lona", items[0].ID)

	// Un offset más allá de los resultados filtrados devuelve vacío.
	items, err = s.itemRepo.List(repository.ItemFilter{LowStockOnly: true, Limit: 20, Offset: 20})
	require.NoError(t, err)
	assert.Empty(t, items)
}

// Soft delete: el artículo desaparece de listados y valuación, pero su
// historial sigue en el ledger.
func TestStore_SoftDeleteConservaHistorial(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	record(t, s, "arroz", entity.MovementTypeEntry, "100", strptr("1.40"), d)

	require.NoError(t, s.itemRepo.SoftDelete("arroz"))

	items, err := s.itemRepo.List(repository.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	totals, err := s.itemRepo.ValuationSummary()
	require.NoError(t, err)
	assert.Empty(t, totals, "los eliminados no participan de la valuación")

	movs, err := s.movRepo.List(repository.MovementFilter{ItemID: "arroz"})
	require.NoError(t, err)
	assert.Len(t, movs, 1, "el ledger es inmutable: el historial queda")
}

// La búsqueda por número de referencia no distingue mayúsculas, igual que en
// el backend Postgres.
func TestStore_BusquedaPorReferenciaSinMayusculas(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.movUC.RegisterMovement(context.Background(), stock.MovementInput{
		ActorID:      "user-1",
		ItemID:       "arroz",
		Type:         entity.MovementTypeEntry,
		Quantity:     dec("100"),
		Reference:    "REM-2026-001",
		MovementDate: d,
	})
	require.NoError(t, err)

	movs, err := s.movRepo.List(repository.MovementFilter{SearchText: "rem-2026"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "REM-2026-001", movs[0].Reference)
}

// El traslado persiste el par de registros con el mismo transaction_id.
func TestStore_TrasladoParConTransactionID(t *testing.T) {
	s := setupStore(t)
	createItem(t, s, "arroz", "Arroz 25kg")

	d := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	record(t, s, "arroz", entity.MovementTypeEntry, "100", strptr("1.40"), d)

	_, err := s.movUC.RegisterMovement(context.Background(), stock.MovementInput{
		ActorID:        "user-1",
		ItemID:         "arroz",
		Type:           entity.MovementTypeTransfer,
		Quantity:       dec("20"),
		FromLocationID: "",
		ToLocationID:   "",
		MovementDate:   d.AddDate(0, 0, 1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "traslado sin ubicaciones es inválido")

	_, err = s.movUC.RegisterMovement(context.Background(), stock.MovementInput{
		ActorID:        "user-1",
		ItemID:         "arroz",
		Type:           entity.MovementTypeTransfer,
		Quantity:       dec("20"),
		FromLocationID: "bodega-central",
		ToLocationID:   "terreno-norte",
		MovementDate:   d.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	movs, err := s.movRepo.List(repository.MovementFilter{ItemID: "arroz", Type: entity.MovementTypeTransfer})
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, movs[0].TransactionID, movs[1].TransactionID)
	assert.NotEqual(t, movs[0].LocationID, movs[1].LocationID)

	item, err := s.itemRepo.GetByID("arroz")
	require.NoError(t, err)
	assert.True(t, item.CurrentQuantity.Equal(dec("100")), "el traslado no cambia el saldo único")
}
