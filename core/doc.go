// Package core contains the canonical gateway domain contracts, entities, and
// dispatch logic. Lower-level adapters (manifest loading, storage, transports,
// connectors) must depend on this package; core must not depend on
// connector-specific or transport-specific adapters.
package core
