package http

import (
	"errors"
	"strings"
)

var (
	// ErrMalformedRequest reports bytes that cannot be an HTTP request.
	ErrMalformedRequest = errors.New("http: malformed request")
	// ErrIncompleteRequest reports a valid but unterminated prefix of a
	// request; the single-read design never waits for the rest.
	ErrIncompleteRequest = errors.New("http: incomplete request")
)

// Request is the parsed view of one request. It is built once per
// connection and never mutated afterwards.
type Request struct {
	Method  string
	Path    string
	Proto   string
	Headers Headers
}

// ParseRequest parses the request line and headers out of a single
// socket read. Any payload after the blank line is ignored; bodies are
// not supported.
func ParseRequest(buf []byte) (*Request, error) {
	raw := string(buf)

	head, complete := raw, false
	if end := strings.Index(raw, "\r\n\r\n"); end >= 0 {
		head, complete = raw[:end], true
	}

	lines := strings.Split(head, "\n")

	// Without at least one full line nothing can be judged yet.
	if !complete && len(lines) == 1 {
		return nil, ErrIncompleteRequest
	}

	method, path, proto, err := parseRequestLine(strings.TrimSuffix(lines[0], "\r"))
	if err != nil {
		return nil, err
	}

	headerLines := lines[1:]
	if !complete {
		// The last line may have been cut mid-byte; it cannot be
		// validated, only the full ones can.
		headerLines = headerLines[:len(headerLines)-1]
	}

	var headers Headers
	for _, line := range headerLines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			break
		}
		name, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		headers.Add(name, value)
		if len(headers) > MaxRequestHeaders {
			return nil, ErrMalformedRequest
		}
	}

	if !complete {
		return nil, ErrIncompleteRequest
	}

	return &Request{
		Method:  method,
		Path:    path,
		Proto:   proto,
		Headers: headers,
	}, nil
}

func parseRequestLine(line string) (method, path, proto string, err error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", ErrMalformedRequest
	}
	method, path, proto = parts[0], parts[1], parts[2]
	if method == "" || !strings.HasPrefix(path, "/") || !strings.HasPrefix(proto, "HTTP/") {
		return "", "", "", ErrMalformedRequest
	}
	return method, path, proto, nil
}

func parseHeaderLine(line string) (name, value string, err error) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return "", "", ErrMalformedRequest
	}
	name = line[:i]
	if strings.ContainsAny(name, " \t") {
		return "", "", ErrMalformedRequest
	}
	return name, strings.TrimSpace(line[i+1:]), nil
}
