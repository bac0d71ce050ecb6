// Package store provides SQLite-backed durable storage for the product
// catalog and completed sales.
//
// Two record families live here:
//   - Products: replaced wholesale on each successful catalog pull
//   - Sales (+ line items): created locally, immutable except for the
//     synced flag
//
// # Atomicity
//
// Every multi-statement operation (sale + items write, full catalog
// replace, sale delete) runs inside one transaction. A failure partway
// through rolls back and the previous state stays authoritative; a
// partial write (sale without items, half a catalog) is never
// observable.
//
// # Ordering
//
// Sales carry a canonical RFC 3339 UTC created_at used for all
// ordering. The locale-formatted date/time strings on a sale are
// display-only fields for the receipt.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are forward-only migrations sequenced by
// PRAGMA user_version; each migration introspects the live schema
// before altering it, so reruns are safe.
package store
