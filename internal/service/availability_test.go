package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegEV/moysklad-autoproduction/internal/domain"
)

func planWithMaterials(rows ...domain.PlanRow) *domain.ProcessingPlan {
	return &domain.ProcessingPlan{
		ID:        "plan-1",
		Name:      "Chair Assembly",
		Materials: &domain.PlanRows{Rows: rows},
	}
}

func materialRow(id, name string, perUnit float64) domain.PlanRow {
	return domain.PlanRow{
		Product: domain.EntityRef{
			Meta: domain.Meta{Href: "https://example.test/entity/product/" + id},
			Name: name,
		},
		Quantity: perUnit,
	}
}

func fixedStock(stocks map[string]float64) StockLookup {
	return func(ctx context.Context, productID, storeID string) (float64, error) {
		return stocks[productID], nil
	}
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("all materials covered", func(t *testing.T) {
		plan := planWithMaterials(
			materialRow("mat-1", "Leg", 4),
			materialRow("mat-2", "Seat", 1),
		)
		lookup := fixedStock(map[string]float64{"mat-1": 8, "mat-2": 2})

		shortfalls, err := CheckAvailability(ctx, plan, 2, "store-1", lookup)
		require.NoError(t, err)
		assert.Empty(t, shortfalls)
	})

	t.Run("reports missing quantity per material", func(t *testing.T) {
		plan := planWithMaterials(
			materialRow("mat-1", "Leg", 4),
			materialRow("mat-2", "Seat", 1),
		)
		lookup := fixedStock(map[string]float64{"mat-1": 2, "mat-2": 5})

		shortfalls, err := CheckAvailability(ctx, plan, 2, "store-1", lookup)
		require.NoError(t, err)
		require.Len(t, shortfalls, 1)
		assert.Equal(t, "Leg", shortfalls[0].Name)
		assert.Equal(t, 6.0, shortfalls[0].Missing)
	})

	t.Run("plan without expanded materials passes", func(t *testing.T) {
		plan := &domain.ProcessingPlan{ID: "plan-1", Name: "No Materials"}

		shortfalls, err := CheckAvailability(ctx, plan, 5, "store-1", fixedStock(nil))
		require.NoError(t, err)
		assert.Empty(t, shortfalls)
	})

	t.Run("lookup failure aborts the check", func(t *testing.T) {
		plan := planWithMaterials(materialRow("mat-1", "Leg", 4))
		lookup := func(ctx context.Context, productID, storeID string) (float64, error) {
			return 0, errors.New("report unavailable")
		}

		_, err := CheckAvailability(ctx, plan, 1, "store-1", lookup)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Leg")
	})
}

func TestFormatShortfalls(t *testing.T) {
	out := FormatShortfalls([]Shortfall{
		{Name: "Leg", Missing: 6},
		{Name: "Screw", Missing: 2.5},
	})
	assert.Equal(t, "Leg: missing 6, Screw: missing 2.5", out)
}
