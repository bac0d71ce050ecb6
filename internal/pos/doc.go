// Package pos holds the domain model for the point of sale: products,
// sales with their line items, the in-memory cart, money formatting and
// payment-method display rules.
//
// Everything in this package is pure data and arithmetic. Persistence
// lives in internal/store, network reconciliation in internal/sync and
// printer output in internal/escpos.
package pos
