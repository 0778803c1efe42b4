package staticfile

import (
	"net/url"
	"path/filepath"
	"strings"
)

// DefaultDocument replaces a request for "/".
const DefaultDocument = "/index.html"

// PathResolver maps request paths onto the served root folder.
type PathResolver struct {
	root string
}

// NewPathResolver serves from root, which should be absolute.
func NewPathResolver(root string) PathResolver {
	return PathResolver{root: filepath.Clean(root)}
}

// RequestPath percent-decodes rawURLPath and applies the default document
// rule. A path that fails to decode is used as is.
func RequestPath(rawURLPath string) string {
	decoded, err := url.PathUnescape(rawURLPath)
	if err != nil {
		decoded = rawURLPath
	}
	if decoded == "/" {
		return DefaultDocument
	}
	return decoded
}

// Resolve returns the candidate file path for rawURLPath: the decoded request
// path appended to the root with no further normalisation. The result is
// untrusted until checked with Contains and an existence check.
func (pr PathResolver) Resolve(rawURLPath string) string {
	return pr.Join(RequestPath(rawURLPath))
}

// Join appends an already decoded request path to the root.
func (pr PathResolver) Join(requestPath string) string {
	return pr.root + filepath.FromSlash(requestPath)
}

// Contains reports whether candidate, once cleaned, still lies inside the
// root. Dot-dot segments that climb out of the root fail this check.
func (pr PathResolver) Contains(candidate string) bool {
	cleaned := filepath.Clean(candidate)
	if cleaned == pr.root {
		return true
	}
	prefix := pr.root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(cleaned, prefix)
}
