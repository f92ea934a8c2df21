// Package fixture registers the store and warehouse fixture types and builds sample graphs.
package fixture

import (
	"time"

	"caster/internal/fixture/store"
	"caster/internal/fixture/warehouse"
	"caster/schema"
)

// Register declares the store status enum and its warehouse mapping on s.
// Under "partner" the statuses map to single letter codes instead.
func Register(s *schema.Schema) error {
	return schema.Enum[store.OrderStatus](s,
		schema.Member("StatusPending", store.StatusPending,
			schema.MapTo("", warehouse.StatusOpen), schema.MapTo("partner", "N")),
		schema.Member("StatusPaid", store.StatusPaid,
			schema.MapTo("", warehouse.StatusReady), schema.MapDefault("partner", "P")),
		schema.Member("StatusShipped", store.StatusShipped,
			schema.MapTo("", warehouse.StatusSent), schema.MapTo("partner", "S")),
		schema.Member("StatusCancelled", store.StatusCancelled,
			schema.MapTo("", warehouse.StatusVoid), schema.MapTo("partner", "X")),
	)
}

// Order builds a paid order of two items placed by a customer who has no other orders.
// Both items and the customer point back at the order.
func Order() *store.Order {
	addr := "1 Main St"
	customer := &store.Customer{ID: 7, Email: "ann@example.com", FullName: "Ann Lee", Address: &addr, IsActive: true}

	pen := &store.Product{ID: 1, SKU: "PEN-1", Name: "Pen", PriceCents: 150, Inventory: 40, Tags: []string{"office", "write"}}
	pad := &store.Product{ID: 2, SKU: "PAD-1", Name: "Pad", PriceCents: 300, Inventory: 12}

	order := &store.Order{
		ID:         1001,
		Customer:   customer,
		Status:     store.StatusPaid,
		TotalCents: 600,
		OrderedAt:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Note:       "leave at door",
	}

	order.Items = []*store.OrderItem{
		{Order: order, Product: pen, Quantity: 2, UnitPrice: 150},
		{Order: order, Product: pad, Quantity: 1, UnitPrice: 300},
	}
	customer.Orders = []*store.Order{order}

	return order
}
