package http

import (
	"bufio"
	"strconv"
	"strings"
)

// Response is assembled in memory and written out in one pass. The
// writer owns Content-Length and Connection; callers cannot produce a
// body/length mismatch.
type Response struct {
	Status  uint16
	Headers Headers
	Body    []byte
}

func NewResponse(status uint16) *Response {
	return &Response{Status: status}
}

func (res *Response) WithStatus(status uint16) *Response {
	res.Status = status
	return res
}

func (res *Response) WithText(payload string) *Response {
	res.Headers.Set("Content-Type", "text/plain")
	res.Body = []byte(payload)
	return res
}

func (res *Response) WithHTML(payload string) *Response {
	res.Headers.Set("Content-Type", "text/html")
	res.Body = []byte(payload)
	return res
}

func (res *Response) WithBytes(payload []byte, contentType string) *Response {
	res.Headers.Set("Content-Type", contentType)
	res.Body = payload
	return res
}

// Write emits the wire form: status line, headers, Content-Length
// computed from the exact body length, Connection: close, blank line,
// body.
func (res *Response) Write(bw *bufio.Writer) error {
	bw.Write(statusLineProto)
	bw.WriteString(strconv.Itoa(int(res.Status)))
	bw.WriteByte(' ')
	bw.WriteString(StatusText(res.Status))
	bw.Write(crlf)

	for _, h := range res.Headers {
		if strings.EqualFold(h.Name, "Content-Length") || strings.EqualFold(h.Name, "Connection") {
			continue
		}
		bw.WriteString(h.Name)
		bw.Write(headerSep)
		bw.WriteString(h.Value)
		bw.Write(crlf)
	}

	bw.Write(contentLengthPrefix)
	bw.WriteString(strconv.Itoa(len(res.Body)))
	bw.Write(crlf)
	bw.Write(connectionClose)
	bw.Write(crlf)

	if _, err := bw.Write(res.Body); err != nil {
		return err
	}
	return bw.Flush()
}
