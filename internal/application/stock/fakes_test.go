package stock_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/acms-stock/internal/application/stock"
	"github.com/jhoicas/acms-stock/internal/domain/entity"
	"github.com/jhoicas/acms-stock/internal/domain/repository"
	"github.com/jhoicas/acms-stock/pkg/textutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria — implementan los puertos de dominio para los tests de
// casos de uso sin base de datos real.
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

type fakeItemRepo struct {
	items map[string]*entity.StockItem
}

var _ repository.StockItemRepository = (*fakeItemRepo)(nil)

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: make(map[string]*entity.StockItem)}
}

func (r *fakeItemRepo) Create(item *entity.StockItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) GetByID(id string) (*entity.StockItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *fakeItemRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	// El bloqueo real lo simula el mutex del fakeTxRunner.
	return r.GetByID(id)
}

func (r *fakeItemRepo) Update(item *entity.StockItem) error {
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeItemRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	it := r.items[id]
	it.CurrentQuantity = quantity
	it.UpdatedAt = time.Now()
	return nil
}

func (r *fakeItemRepo) UpdateCost(id string, cost decimal.Decimal) error {
	it := r.items[id]
	it.UnitCost = cost
	it.UpdatedAt = time.Now()
	return nil
}

func (r *fakeItemRepo) List(filter repository.ItemFilter) ([]*entity.StockItem, error) {
	out := make([]*entity.StockItem, 0, len(r.items))
	for _, it := range r.items {
		if it.DeletedAt != nil {
			continue
		}
		if filter.CategoryID != "" && it.CategoryID != filter.CategoryID {
			continue
		}
		if filter.SearchText != "" && !textutil.Contains(it.Name, filter.SearchText) {
			continue
		}
		if filter.LowStockOnly && !it.IsLowStock() {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeItemRepo) SoftDelete(id string) error {
	now := time.Now()
	r.items[id].DeletedAt = &now
	return nil
}

func (r *fakeItemRepo) ValuationSummary() ([]repository.ValuationTotal, error) {
	byCurrency := make(map[string]*repository.ValuationTotal)
	for _, it := range r.items {
		if it.DeletedAt != nil || !it.CurrentQuantity.GreaterThan(decimal.Zero) {
			continue
		}
		tot, ok := byCurrency[it.Currency]
		if !ok {
			tot = &repository.ValuationTotal{Currency: it.Currency}
			byCurrency[it.Currency] = tot
		}
		tot.Items++
		tot.TotalQuantity = tot.TotalQuantity.Add(it.CurrentQuantity)
		tot.TotalValue = tot.TotalValue.Add(it.TotalValue())
	}
	out := make([]repository.ValuationTotal, 0, len(byCurrency))
	for _, tot := range byCurrency {
		out = append(out, *tot)
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*entity.StockMovement
}

var _ repository.StockMovementRepository = (*fakeMovementRepo)(nil)

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) {
	for _, m := range r.movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) List(filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	out := make([]*entity.StockMovement, 0, len(r.movements))
	for _, m := range r.movements {
		if filter.ItemID != "" && m.ItemID != filter.ItemID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

// fakeTxRunner serializa los callbacks con un mutex, igual que lo haría el
// bloqueo de fila de la base: dos movimientos concurrentes sobre el mismo
// artículo nunca ven el mismo saldo inicial.
//
// Nota: los fakes mutan en memoria, así que aquí no hay rollback; los tests
// que esperan "sin ningún efecto" dependen de que el caso de uso valide antes
// de escribir, que es justamente lo que se quiere comprobar.
type fakeTxRunner struct {
	mu       sync.Mutex
	itemRepo *fakeItemRepo
	movRepo  *fakeMovementRepo
}

var _ stock.TxRunner = (*fakeTxRunner)(nil)

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	itemRepo repository.StockItemRepository,
) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.movRepo, r.itemRepo)
}
