package catalog

import (
	"context"
	"github.com/shopspring/decimal"
)

// Seed loads the FreshPodd demo line-up. FP004 starts out of stock on purpose.
func Seed(ctx context.Context, s *Store) error {
	warehouses := []Warehouse{
		{ID: "WH-CHI", Name: "Chicago Hub", Location: "Chicago, USA", Country: "USA"},
		{ID: "WH-BLR", Name: "Bengaluru Hub", Location: "Bengaluru, India", Country: "India"},
		{ID: "WH-RTM", Name: "Rotterdam Hub", Location: "Rotterdam, Netherlands", Country: "Netherlands"},
	}
	for _, w := range warehouses {
		if err := s.AddWarehouse(w); err != nil {
			return err
		}
	}

	products := []Product{
		{
			ID:          "FP004",
			Name:        "FreshPodd Go 75L",
			Description: "Compact, lightweight cooler for day trips, the beach or the car.",
			PriceUSD:    decimal.RequireFromString("799.99"),
			Features:    []string{"Detachable 50W Solar Panel", "48-Hour Cooling on Full Charge", "Shoulder Strap"},
			Specs:       map[string]string{"Capacity": "75 Liters", "Weight": "15 kg", "Battery": "25,000mAh Lithium-ion"},
			Rating:      4.7, ReviewsCount: 115,
		},
		{
			ID:          "FP001",
			Name:        "FreshPodd Basic 150L",
			Description: "Dependable ice-free cooling for families and adventurers.",
			PriceUSD:    decimal.RequireFromString("1299.99"),
			Features:    []string{"Integrated 100W Solar Panel", "72-Hour Cooling on Full Charge", "USB Charging Ports"},
			Specs:       map[string]string{"Capacity": "150 Liters", "Weight": "25 kg", "Battery": "45,000mAh Lithium-ion"},
			Rating:      4.8, ReviewsCount: 88,
		},
		{
			ID:          "FP002",
			Name:        "FreshPodd Adventurer 300L",
			Description: "More space and app-synced controls for extended off-grid trips.",
			PriceUSD:    decimal.RequireFromString("1899.99"),
			Features:    []string{"Integrated 150W Solar Panel", "80-Hour Cooling on Full Charge", "Internal LED Lighting"},
			Specs:       map[string]string{"Capacity": "300 Liters", "Weight": "35 kg", "Battery": "60,000mAh Lithium-ion"},
			Rating:      4.9, ReviewsCount: 62,
		},
		{
			ID:          "FP003",
			Name:        "FreshPodd Pro 600L (AI-Powered)",
			Description: "600L commercial-grade mobile cold storage with smart cooling.",
			PriceUSD:    decimal.RequireFromString("2999.99"),
			Features:    []string{"AI-Powered Smart Cooling", "Integrated 200W Solar Panel", "96-Hour Cooling on Full Charge"},
			Specs:       map[string]string{"Capacity": "600 Liters", "Weight": "55 kg", "Battery": "90,000mAh Lithium-ion"},
			Rating:      4.9, ReviewsCount: 45,
		},
	}
	for _, p := range products {
		if err := s.UpsertProduct(p); err != nil {
			return err
		}
	}

	stock := []struct {
		warehouse, product string
		qty                int
	}{
		{"WH-CHI", "FP001", 30}, {"WH-BLR", "FP001", 20},
		{"WH-CHI", "FP002", 15}, {"WH-BLR", "FP002", 15}, {"WH-RTM", "FP002", 10},
		{"WH-CHI", "FP003", 10}, {"WH-RTM", "FP003", 15},
	}
	for _, st := range stock {
		if err := s.SetStock(ctx, st.warehouse, st.product, st.qty); err != nil {
			return err
		}
	}
	return nil
}
