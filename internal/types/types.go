// Package types provides the condition model and domain types shared across
// jsoncond components.
//
// The condition tree is wire-format agnostic: JSON, YAML and structpb payloads
// all decode into the same sealed Condition variants via FromValue. Backends
// (internal/rules, internal/sqlgen) consume trees read-only.
package types

// ConditionID represents a UUIDv7 identifier for a stored condition.
// String alias enables type safety while maintaining JSON string serialization.
type ConditionID string

// Resource limits enforced at the service boundary.
const (
	// MaxPayloadSize limits request payloads (condition plus data) accepted by
	// the gRPC service and CLI readers.
	MaxPayloadSize = 1024 * 1024

	// MaxConditionNameLength bounds stored condition names.
	MaxConditionNameLength = 128
)

// PathSegment represents one component of a dotted field path.
// Numeric segments set IsIndex so they can address array elements; they still
// match object keys spelled the same way.
type PathSegment struct {
	Key     string // object key as written
	Index   int    // array index (valid only if IsIndex)
	IsIndex bool   // true when Key is a non-negative decimal integer
}
