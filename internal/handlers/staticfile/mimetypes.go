package staticfile

import (
	"fmt"
	"mime"
	"path"
	"strings"
)

// defaultMimeTypes supplements Go's mime.TypeByExtension, whose table depends
// on the host's /etc/mime.types and differs between machines.
var defaultMimeTypes = map[string]string{
	".css":   "text/css; charset=utf-8",
	".csv":   "text/csv; charset=utf-8",
	".gif":   "image/gif",
	".glb":   "model/gltf-binary",
	".gltf":  "model/gltf+json",
	".htm":   "text/html; charset=utf-8",
	".html":  "text/html; charset=utf-8",
	".ico":   "image/vnd.microsoft.icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".map":   "application/json; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".ogg":   "audio/ogg",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".ttf":   "font/ttf",
	".txt":   "text/plain; charset=utf-8",
	".wav":   "audio/wav",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "application/xml; charset=utf-8",
}

// MimeTypeResolver picks a content type from the file extension. It only
// runs when the content policy left the type unset.
type MimeTypeResolver struct {
	customMimeTypes map[string]string
}

// NewMimeTypeResolver takes user overrides keyed by extension with a leading dot.
func NewMimeTypeResolver(custom map[string]string) (*MimeTypeResolver, error) {
	r := &MimeTypeResolver{customMimeTypes: make(map[string]string, len(custom))}
	for ext, mimeType := range custom {
		if !strings.HasPrefix(ext, ".") {
			return nil, fmt.Errorf("invalid extension %q: must start with a '.'", ext)
		}
		if mimeType == "" {
			return nil, fmt.Errorf("empty MIME type for extension %q", ext)
		}
		r.customMimeTypes[strings.ToLower(ext)] = mimeType
	}
	return r, nil
}

// GetMimeType returns the type for requestPath, or "" to let the transport
// sniff the body. Precedence: custom, built-in table, mime.TypeByExtension.
func (r *MimeTypeResolver) GetMimeType(requestPath string) string {
	ext := strings.ToLower(path.Ext(requestPath))
	if ext == "" {
		return ""
	}
	if mimeType, ok := r.customMimeTypes[ext]; ok {
		return mimeType
	}
	if mimeType, ok := defaultMimeTypes[ext]; ok {
		return mimeType
	}
	return mime.TypeByExtension(ext)
}
