package staticfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestPath(t *testing.T) {
	testCases := []struct {
		raw  string
		want string
	}{
		{"/", "/index.html"},
		{"/index.html", "/index.html"},
		{"/My%20Game/index.html", "/My Game/index.html"},
		{"/caf%C3%A9.js", "/café.js"},
		{"/bad%zzescape", "/bad%zzescape"},
		{"/%2F", "//"},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, RequestPath(tc.raw))
		})
	}
}

func TestPathResolver_RootEqualsIndex(t *testing.T) {
	pr := NewPathResolver(t.TempDir())
	assert.Equal(t, pr.Resolve("/index.html"), pr.Resolve("/"))
}

func TestPathResolver_Resolve(t *testing.T) {
	root := t.TempDir()
	pr := NewPathResolver(root)

	assert.Equal(t, filepath.Join(root, "Build", "app.wasm"), pr.Resolve("/Build/app.wasm"))
	assert.Equal(t, filepath.Join(root, "a b.txt"), pr.Resolve("/a%20b.txt"))

	// No normalisation happens at resolve time.
	assert.Equal(t, root+filepath.FromSlash("/../secret"), pr.Resolve("/../secret"))
}

func TestPathResolver_Contains(t *testing.T) {
	root := t.TempDir()
	pr := NewPathResolver(root)

	testCases := []struct {
		raw  string
		want bool
	}{
		{"/index.html", true},
		{"/sub/../index.html", true},
		{"/../secret", false},
		{"/%2e%2e/secret", false},
		{"/sub/../../secret", false},
		{"/..", false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, pr.Contains(pr.Resolve(tc.raw)))
		})
	}

	// A sibling directory sharing the root as a name prefix is outside.
	assert.False(t, pr.Contains(root+"-other"+string(filepath.Separator)+"x"))
}
