package http

import (
	"html"
	"strings"

	"github.com/R366Y/async-http-server/filesystem"
)

// RenderListing renders a directory's immediate children as an HTML
// page. Directories get a trailing slash; the parent link is omitted at
// the serving root.
func RenderListing(urlPath string, entries []filesystem.Entry, atRoot bool) []byte {
	title := html.EscapeString(urlPath)

	var b strings.Builder
	b.WriteString("<html><head><title>Index of ")
	b.WriteString(title)
	b.WriteString("</title></head><body><h1>Index of ")
	b.WriteString(title)
	b.WriteString("</h1>\n<ul>\n")

	if !atRoot {
		b.WriteString(`<li><a href="../">../</a></li>` + "\n")
	}

	for _, entry := range entries {
		name := entry.Name
		if entry.IsDir {
			name += "/"
		}
		escaped := html.EscapeString(name)
		b.WriteString(`<li><a href="`)
		b.WriteString(escaped)
		b.WriteString(`">`)
		b.WriteString(escaped)
		b.WriteString("</a></li>\n")
	}

	b.WriteString("</ul>\n</body></html>")
	return []byte(b.String())
}
