// Package models holds persistence models that deliberately do not
// reuse a domain type. The ledger aggregates map to their tables
// directly, but the outbox row is a transport detail: the domain's
// OutboxEntry stays free of GORM concerns and is converted at the
// repository boundary instead.
package models
