package stock_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func setupMovementUC(t *testing.T) (*stock.RegisterMovementUseCase, *fakeItemRepo, *fakeMovementRepo) {
	t.Helper()
	itemRepo := newFakeItemRepo()
	movRepo := &fakeMovementRepo{}
	runner := &fakeTxRunner{itemRepo: itemRepo, movRepo: movRepo}
	return stock.NewRegisterMovementUseCase(runner), itemRepo, movRepo
}

func seedItem(t *testing.T, repo *fakeItemRepo, id, qty, cost string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, repo.Create(&entity.StockItem{
		ID:              id,
		Name:            "Arroz 25kg",
		Unit:            "saco",
		CurrentQuantity: dec(qty),
		UnitCost:        dec(cost),
		Currency:        "USD",
		CreatedAt:       now,
		UpdatedAt:       now,
	}))
}

func baseInput(itemID, qty string) stock.MovementInput {
	return stock.MovementInput{
		ActorID:      "user-1",
		ItemID:       itemID,
		Quantity:     dec(qty),
		MovementDate: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas
// ──────────────────────────────────────────────────────────────────────────────

// Una entrada suma al saldo cacheado y persiste el movimiento con el actor.
func TestRecordEntry_SumaAlSaldo(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "0", "0")

	id, err := uc.RecordEntry(context.Background(), baseInput("arroz", "100"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("100")))

	require.Len(t, movRepo.movements, 1)
	m := movRepo.movements[0]
	assert.Equal(t, entity.MovementTypeEntry, m.Type)
	assert.Equal(t, "user-1", m.PerformedBy)
	assert.NotEmpty(t, m.TransactionID)
}

// Entrada con costo propio: recalcula el costo promedio ponderado del artículo.
// 100 @ 1.40 + 50 @ 2.00 → promedio 1.60.
func TestRecordEntry_RecalculaCostoPromedio(t *testing.T) {
	uc, itemRepo, _ := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	cost := dec("2.00")
	in := baseInput("arroz", "50")
	in.UnitCost = &cost
	_, err := uc.RecordEntry(context.Background(), in)
	require.NoError(t, err)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("150")))
	assert.True(t, item.UnitCost.Equal(dec("1.60")), "costo promedio esperado 1.60, obtenido %s", item.UnitCost)
}

// Entrada sin costo: el costo promedio del artículo no cambia y el movimiento
// queda registrado al costo vigente.
func TestRecordEntry_SinCostoConservaPromedio(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	_, err := uc.RecordEntry(context.Background(), baseInput("arroz", "20"))
	require.NoError(t, err)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.UnitCost.Equal(dec("1.40")))
	assert.True(t, movRepo.movements[0].UnitCost.Equal(dec("1.40")))
}

// ──────────────────────────────────────────────────────────────────────────────
// Salidas — no-negatividad
// ──────────────────────────────────────────────────────────────────────────────

// Una salida dentro del saldo disponible resta y registra el movimiento.
func TestRecordExit_RestaDelSaldo(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	_, err := uc.RecordExit(context.Background(), baseInput("arroz", "30"))
	require.NoError(t, err)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("70")))
	require.Len(t, movRepo.movements, 1)
	assert.Equal(t, entity.MovementTypeExit, movRepo.movements[0].Type)
}

// Salida mayor al disponible: falla con InsufficientStockError informando el
// saldo disponible, y no deja ningún efecto (ni saldo ni movimiento).
func TestRecordExit_StockInsuficiente(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "10", "1.40")

	_, err := uc.RecordExit(context.Background(), baseInput("arroz", "11"))
	require.Error(t, err)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(dec("10")))
	assert.True(t, insufficient.Requested.Equal(dec("11")))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("10")), "el saldo no debe cambiar")
	assert.Empty(t, movRepo.movements, "no debe quedar movimiento registrado")
}

// Salida exacta del saldo completo: permitida, el saldo queda en cero.
func TestRecordExit_SaldoExacto(t *testing.T) {
	uc, itemRepo, _ := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "10", "1.40")

	_, err := uc.RecordExit(context.Background(), baseInput("arroz", "10"))
	require.NoError(t, err)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.IsZero())
}

// Dos salidas concurrentes que juntas exceden el saldo: exactamente una debe
// tener éxito. El runner serializa las transacciones, así que la segunda ve el
// saldo ya descontado y falla el check-then-act.
func TestRecordExit_SalidasConcurrentes(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "10", "1.40")

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RecordExit(context.Background(), baseInput("arroz", "10"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var okCount, insufficientCount int
	for err := range results {
		if err == nil {
			okCount++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInsufficientStock)
		insufficientCount++
	}
	assert.Equal(t, 1, okCount, "exactamente una salida debe tener éxito")
	assert.Equal(t, 1, insufficientCount, "la otra debe fallar por stock insuficiente")

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.IsZero(), "el saldo nunca queda negativo")
	assert.Len(t, movRepo.movements, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes y traslados
// ──────────────────────────────────────────────────────────────────────────────

// Ajuste negativo que dejaría el saldo bajo cero: rechazado con el mismo
// límite de no-negatividad que una salida.
func TestRegisterMovement_AjusteNegativoExcesivo(t *testing.T) {
	uc, itemRepo, _ := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "5", "1.40")

	in := baseInput("arroz", "-6")
	in.Type = entity.MovementTypeAdjustment
	_, err := uc.RegisterMovement(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("5")))
}

// Ajuste válido con signo: aplica la cantidad tal cual.
func TestRegisterMovement_AjusteConSigno(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	in := baseInput("arroz", "-3")
	in.Type = entity.MovementTypeAdjustment
	_, err := uc.RegisterMovement(context.Background(), in)
	require.NoError(t, err)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("97")))
	require.Len(t, movRepo.movements, 1)
	assert.True(t, movRepo.movements[0].Quantity.Equal(dec("-3")), "el ajuste guarda la cantidad con signo")
}

// Traslado: registra el par salida/entrada con el mismo TransactionID y las
// ubicaciones origen/destino; el saldo único del artículo no cambia.
func TestRegisterMovement_Traslado(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	in := baseInput("arroz", "20")
	in.Type = entity.MovementTypeTransfer
	in.FromLocationID = "bodega-central"
	in.ToLocationID = "terreno-norte"
	_, err := uc.RegisterMovement(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, movRepo.movements, 2)
	out, dst := movRepo.movements[0], movRepo.movements[1]
	assert.Equal(t, out.TransactionID, dst.TransactionID)
	assert.Equal(t, "bodega-central", out.LocationID)
	assert.Equal(t, "terreno-norte", dst.LocationID)

	item, _ := itemRepo.GetByID("arroz")
	assert.True(t, item.CurrentQuantity.Equal(dec("100")))
}

// Traslado mayor al disponible: rechazado, sin registros.
func TestRegisterMovement_TrasladoInsuficiente(t *testing.T) {
	uc, itemRepo, movRepo := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "10", "1.40")

	in := baseInput("arroz", "20")
	in.Type = entity.MovementTypeTransfer
	in.FromLocationID = "a"
	in.ToLocationID = "b"
	_, err := uc.RegisterMovement(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, movRepo.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_Validaciones(t *testing.T) {
	uc, itemRepo, _ := setupMovementUC(t)
	seedItem(t, itemRepo, "arroz", "100", "1.40")

	cases := []struct {
		name  string
		input stock.MovementInput
	}{
		{"cantidad cero en salida", func() stock.MovementInput {
			in := baseInput("arroz", "0")
			in.Type = entity.MovementTypeExit
			return in
		}()},
		{"cantidad negativa en entrada", func() stock.MovementInput {
			in := baseInput("arroz", "-5")
			in.Type = entity.MovementTypeEntry
			return in
		}()},
		{"ajuste cero", func() stock.MovementInput {
			in := baseInput("arroz", "0")
			in.Type = entity.MovementTypeAdjustment
			return in
		}()},
		{"tipo desconocido", func() stock.MovementInput {
			in := baseInput("arroz", "5")
			in.Type = "robo"
			return in
		}()},
		{"traslado a la misma ubicación", func() stock.MovementInput {
			in := baseInput("arroz", "5")
			in.Type = entity.MovementTypeTransfer
			in.FromLocationID = "a"
			in.ToLocationID = "a"
			return in
		}()},
		{"sin fecha de negocio", func() stock.MovementInput {
			in := baseInput("arroz", "5")
			in.Type = entity.MovementTypeEntry
			in.MovementDate = time.Time{}
			return in
		}()},
		{"costo negativo en entrada", func() stock.MovementInput {
			in := baseInput("arroz", "5")
			in.Type = entity.MovementTypeEntry
			neg := dec("-1")
			in.UnitCost = &neg
			return in
		}()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RegisterMovement(context.Background(), tc.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// Movimiento contra un artículo inexistente o eliminado: ErrNotFound.
func TestRegisterMovement_ArticuloInexistente(t *testing.T) {
	uc, itemRepo, _ := setupMovementUC(t)

	in := baseInput("fantasma", "5")
	in.Type = entity.MovementTypeEntry
	_, err := uc.RegisterMovement(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	seedItem(t, itemRepo, "borrado", "10", "1.00")
	require.NoError(t, itemRepo.SoftDelete("borrado"))
	in2 := baseInput("borrado", "5")
	in2.Type = entity.MovementTypeEntry
	_, err = uc.RegisterMovement(context.Background(), in2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
