package checkout

import (
	"github.com/ariefcatur/freshpodd-orders/internal/cart"
	"github.com/ariefcatur/freshpodd-orders/internal/catalog"
	"github.com/ariefcatur/freshpodd-orders/internal/orders"
)

// StockView is what planning needs from the catalog. Both *catalog.Store and
// *catalog.Tx satisfy it; only the Tx gives a consistent view.
type StockView interface {
	Levels(productID string) []catalog.Level
}

type LinePlan struct {
	ProductID   string              `json:"product_id"`
	Requested   int                 `json:"requested"`
	Allocations []orders.Allocation `json:"allocations"`
}

// Plan is the per-line warehouse allocation for one checkout attempt.
type Plan struct {
	Lines []LinePlan `json:"lines"`
}

func (p Plan) Allocations() []orders.Allocation {
	var out []orders.Allocation
	for _, l := range p.Lines {
		out = append(out, l.Allocations...)
	}
	return out
}

// BuildPlan checks every line first; any shortfall fails the whole plan.
func BuildPlan(view StockView, lines []cart.Line) (Plan, error) {
	var short []Shortfall
	levels := make([][]catalog.Level, len(lines))
	for i, l := range lines {
		levels[i] = view.Levels(l.ProductID)
		if avail := total(levels[i]); avail < l.Quantity {
			short = append(short, Shortfall{ProductID: l.ProductID, Requested: l.Quantity, Available: avail})
		}
	}
	if len(short) > 0 {
		return Plan{}, &InsufficientStockError{Shortfalls: short}
	}

	plan := Plan{Lines: make([]LinePlan, 0, len(lines))}
	for i, l := range lines {
		plan.Lines = append(plan.Lines, LinePlan{
			ProductID:   l.ProductID,
			Requested:   l.Quantity,
			Allocations: allocate(l.ProductID, levels[i], l.Quantity),
		})
	}
	return plan, nil
}

// allocate prefers the first warehouse that can ship everything alone,
// otherwise drains warehouses in insertion order. Caller guarantees
// total(levels) >= qty.
func allocate(productID string, levels []catalog.Level, qty int) []orders.Allocation {
	for _, lv := range levels {
		if lv.Quantity >= qty {
			return []orders.Allocation{{WarehouseID: lv.WarehouseID, ProductID: productID, Quantity: qty}}
		}
	}
	var out []orders.Allocation
	left := qty
	for _, lv := range levels {
		if left == 0 {
			break
		}
		if lv.Quantity <= 0 {
			continue
		}
		n := min(lv.Quantity, left)
		out = append(out, orders.Allocation{WarehouseID: lv.WarehouseID, ProductID: productID, Quantity: n})
		left -= n
	}
	return out
}

func total(levels []catalog.Level) int {
	n := 0
	for _, lv := range levels {
		n += lv.Quantity
	}
	return n
}
