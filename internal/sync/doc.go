// Package sync reconciles the local store with the remote backend
// under intermittent connectivity.
//
// Two independent directions, each idempotent:
//
//   - Pull: the product catalog is paginated down from the backend,
//     validated, and swapped into the store as one atomic replace. A
//     failed page fetch aborts the pull with no local mutation.
//   - Push: pending sales are submitted oldest-first; each success is
//     marked synced immediately, so a mid-batch failure never causes
//     an accepted sale to be resent. Sales are create-only and keyed
//     by client-generated id, so the backend's upsert-by-id makes
//     retries naturally idempotent (at-least-once delivery).
//
// The Engine runs both on triggers: a periodic timer, connectivity
// restoration, manual sync requests, and sale completion (push only).
package sync
