package http

import "strings"

const filesPrefix = "/files/"

type RouteKind uint8

const (
	RouteBuiltin RouteKind = iota
	RouteFile
	RouteNotFound
)

// RouteDecision is a pure function of the request path. For RouteFile
// the FilePath carries the path with the /files/ prefix stripped.
type RouteDecision struct {
	Kind     RouteKind
	Status   uint16
	Body     string
	FilePath string
}

func Route(path string) RouteDecision {
	switch path {
	case "/":
		return RouteDecision{Kind: RouteBuiltin, Status: StatusOK, Body: homePage}
	case "/about":
		return RouteDecision{Kind: RouteBuiltin, Status: StatusOK, Body: aboutPage}
	}

	if rest, found := strings.CutPrefix(path, filesPrefix); found {
		return RouteDecision{Kind: RouteFile, FilePath: rest}
	}

	return RouteDecision{Kind: RouteNotFound, Status: StatusNotFound, Body: notFoundPage}
}
