// Package operation provides the shared framework for connector operations.
//
// The framework handles:
//   - The Connector interface and the Result each operation returns
//   - Classified errors (validation, not found, not implemented, upstream)
//   - Optional jq response transforms
//   - Operation metrics
//
// Transport concerns (HTTP, auth headers, rate limiting) live in the
// transport subpackage. Requests are never retried.
//
// Integrations (internal/integration) implement Connector on top of this
// package and api.BaseProvider, and are created by name through
// integration.New.
package operation
