package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
)

// StockLookup resolves the available balance of a product on a store.
type StockLookup func(ctx context.Context, productID, storeID string) (float64, error)

// Shortfall is one material whose balance cannot cover the required
// quantity.
type Shortfall struct {
	Name    string
	Missing float64
}

// CheckAvailability verifies that the tech card's materials cover
// producing target units on the given store. Each material requires its
// per-unit quantity multiplied by target. An empty result means
// production can proceed. A plan without expanded materials is treated
// as having nothing to check.
func CheckAvailability(ctx context.Context, plan *domain.ProcessingPlan, target float64, storeID string, lookup StockLookup) ([]Shortfall, error) {
	var shortfalls []Shortfall

	for _, material := range plan.MaterialRows() {
		required := material.Quantity * target

		materialID := material.Product.EntityID()
		available, err := lookup(ctx, materialID, storeID)
		if err != nil {
			return nil, fmt.Errorf("check material %q: %w", materialName(material), err)
		}

		if available < required {
			shortfalls = append(shortfalls, Shortfall{
				Name:    materialName(material),
				Missing: required - available,
			})
		}
	}

	return shortfalls, nil
}

// FormatShortfalls renders shortfalls for result messages, e.g.
// "Leg: missing 6, Screw: missing 2.5".
func FormatShortfalls(shortfalls []Shortfall) string {
	parts := make([]string, 0, len(shortfalls))
	for _, s := range shortfalls {
		parts = append(parts, fmt.Sprintf("%s: missing %s", s.Name, strconv.FormatFloat(s.Missing, 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}

func materialName(row domain.PlanRow) string {
	if row.Product.Name != "" {
		return row.Product.Name
	}
	if row.Assortment.Name != "" {
		return row.Assortment.Name
	}
	return "unknown"
}
