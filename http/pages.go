package http

// Builtin pages are fixed process-wide data; they are never backed by
// the filesystem.
const (
	homePage = `<html><body><h1>Welcome to Async Server</h1>
<ul>
<li><a href="/">Home</a></li>
<li><a href="/about">About</a></li>
<li><a href="/files/">Files</a></li>
</ul>
</body></html>`

	aboutPage = `<html><body><h1>About Page</h1></body></html>`

	notFoundPage = `<html><body><h1>404: Page not found</h1></body></html>`

	forbiddenPage = `<html><body><h1>403: Forbidden</h1></body></html>`

	internalErrorPage = `<html><body><h1>500: Internal server error</h1></body></html>`
)
