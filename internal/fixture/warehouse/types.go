// Package warehouse is the fulfillment side of the mapping fixtures. Its names and
// representations differ from package store on purpose.
package warehouse

import (
	"time"

	"caster/internal/common"
)

// Address is a shipping address.
type Address struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}

// Customer is a known recipient.
type Customer struct {
	ID        uint
	Email     string
	Name      string `cast:"FullName"`
	Shipping  *Address
	Active    bool `cast:"IsActive"`
	Orders    []*Order
	UpdatedAt time.Time
}

// Product is a stocked item.
type Product struct {
	ID    uint
	SKU   string
	Name  string
	Price int64
	Stock int
	Tags  map[string]struct{}
}

// Order is a shipment to prepare.
type Order struct {
	ID          uint
	OrderNumber string
	Customer    *Customer
	Status      OrderStatus
	TotalAmount int64
	Currency    string
	Items       []*OrderItem
	PlacedAt    *time.Time
	Note        string
}

// OrderItem is one line of a shipment.
type OrderItem struct {
	Order     *Order
	Product   *Product
	Quantity  int
	UnitPrice int64
}

// OrderStatus is the fulfillment state of an order.
type OrderStatus int

const (
	StatusUnknown OrderStatus = iota
	StatusOpen
	StatusReady
	StatusSent
	StatusVoid
)

var statusNames = [...]string{"Unknown", "Open", "Ready", "Sent", "Void"}

func (s OrderStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return common.UnknownStr
	}

	return statusNames[s]
}
