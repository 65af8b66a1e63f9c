package sync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapKey(t *testing.T) {
	tests := []struct {
		name    string
		relPath string
		prefix  string
		want    string
	}{
		{"no prefix", "a.txt", "", "a.txt"},
		{"nested path", "sub/b.jpg", "", "sub/b.jpg"},
		{"backslash separators", `sub\b.jpg`, "backup/", "backup/sub/b.jpg"},
		{"prefix trailing slash", "a.txt", "backup/", "backup/a.txt"},
		{"prefix leading slash", "a.txt", "/backup", "backup/a.txt"},
		{"prefix both slashes", "a.txt", "/backup/", "backup/a.txt"},
		{"multi-segment prefix", "a.txt", "backup/2024", "backup/2024/a.txt"},
		{"prefix of only slashes", "a.txt", "///", "a.txt"},
		{"mixed separators", `dir\sub/file.bin`, "p", "p/dir/sub/file.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapKey(tt.relPath, tt.prefix))
		})
	}
}

func TestMapKeyProperties(t *testing.T) {
	paths := []string{"a.txt", `sub\b.jpg`, "x/y/z", "", "weird name.txt"}
	prefixes := []string{"", "p", "/p/", "a/b", "//"}

	for _, p := range paths {
		for _, x := range prefixes {
			key := MapKey(p, x)

			assert.False(t, strings.HasPrefix(key, "/"), "key %q starts with slash", key)
			assert.NotContains(t, key, "//", "key %q has doubled slash", key)

			// Mapping an already-mapped key with no prefix is a fixed point
			assert.Equal(t, key, MapKey(key, ""))
		}
	}
}
