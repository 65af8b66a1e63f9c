package sync

import "strings"

// MapKey maps a relative file path and an optional key prefix to the remote
// object key. Backslash separators are normalized to forward slashes and the
// prefix is trimmed of surrounding slashes before joining, so the resulting
// key never starts with "/" and never contains a doubled slash at the join.
// The function is pure and accepts any string input.
func MapKey(relPath, prefix string) string {
	key := strings.ReplaceAll(relPath, `\`, "/")

	trimmed := strings.Trim(prefix, "/")
	if trimmed == "" {
		return key
	}

	return trimmed + "/" + key
}
