package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_REQUEST    = "req"
	UUID_PREFIX_LIMIT_RULE = "lrule"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex req_01HZX3T8J8M1Q6V0W2KQ7Y5N9C
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
