package types

// Status is a type for the status of a persisted resource (e.g. limit rule, sku).
// Only active resources take part in limit evaluation.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)
