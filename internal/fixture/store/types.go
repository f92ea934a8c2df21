// Package store is the storefront side of the mapping fixtures: a small order graph with
// back references and a string enum.
package store

import (
	"time"
)

// Product is an item available for sale. Prices are in cents.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Inventory   int
	Tags        []string
	CreatedAt   time.Time
}

// Customer places orders. Orders refer back to their customer.
type Customer struct {
	ID       int64
	Email    string
	FullName string
	Address  *string
	IsActive bool
	Orders   []*Order
}

// Order is a transaction made by a customer.
type Order struct {
	ID         int64
	Customer   *Customer
	Status     OrderStatus
	TotalCents int64
	Items      []*OrderItem
	OrderedAt  time.Time
	Note       string
}

// OrderItem is one product line of an order. It snapshots the price at purchase time.
type OrderItem struct {
	Order     *Order
	Product   *Product
	Quantity  int
	UnitPrice int64
}

// OrderStatus is the storefront status of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
