package common

import "strings"

// UnknownStr is returned by String methods for out-of-range enum values.
const UnknownStr = "unknown"

// JoinScope joins a scope path with the C++ scope separator.
// Returns empty string if parts is empty.
func JoinScope(parts []string) string {
	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, "::")
}
