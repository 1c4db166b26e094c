package types

import "github.com/google/uuid"

// NewConditionID generates a UUIDv7 condition identifier.
// Time-ordered IDs keep inserts clustered in B-tree pages.
// Panics on clock regression (uuid.Must).
func NewConditionID() ConditionID {
	return ConditionID(uuid.Must(uuid.NewV7()).String())
}

// ParseConditionID validates and converts a string to ConditionID.
func ParseConditionID(s string) (ConditionID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return ConditionID(s), nil
}
