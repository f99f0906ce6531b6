package filesystem

import (
	"path/filepath"
	"strings"
)

// ContentType derives a MIME type from the file extension. The table
// is fixed; unknown extensions fall back to application/octet-stream.
func ContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
