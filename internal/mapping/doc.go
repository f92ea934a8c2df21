// Package mapping provides the YAML profile document: its types, parsing, normalization
// and structural validation against a loaded type graph.
//
// A profile declares enum value mappings and per type pair member wiring that would
// otherwise be written as Go options. Package profile turns a parsed document into
// schema registrations and mapper options.
//
// # Schema Overview
//
//	version: "1"
//	configuration: partner
//	enums:
//	  - type: store.OrderStatus
//	    members:
//	      - name: StatusPaid
//	        value: PAID
//	        values:
//	          - {config: partner, value: P, default: true}
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    # source member -> target member (highest priority)
//	    121:
//	      TotalCents: TotalAmount
//	    fields:
//	      - target: Currency
//	        default: USD
//	      - target: Email
//	        source: Customer.Email
//	      - target: Note
//	        expr: 'src.Note + " #" + string(src.ID)'
//	    ignore:
//	      - UpdatedAt
//
// # Priority Order
//
// When a target member is named more than once, the first of these wins:
//  1. "121" shorthand mappings
//  2. "fields" explicit mappings
//  3. "ignore" list
//
// Members not named at all are paired by the mapper's own name matching.
//
// # Path Syntax
//
// Source paths are dotted member chains ("Customer.Email"); pointers on the way are
// followed and a nil pointer yields the zero value. Target paths name one member.
package mapping
