package http

import "time"

const (
	// MaxRequestSize bounds the single read taken from the socket. A
	// request whose line and headers do not fit is never serviced.
	MaxRequestSize = 8 * 1024 // 8kB

	MaxRequestHeaders      = 64
	DefaultWriteBufferSize = 4 * 1024 // 4kB

	// DefaultConnDeadline covers the whole connection, measured from
	// accept: read, handling and write all happen under it.
	DefaultConnDeadline = 30 * time.Second
)

const MethodGet = "GET"

var (
	crlf                = []byte("\r\n")
	statusLineProto     = []byte("HTTP/1.1 ")
	connectionClose     = []byte("Connection: close\r\n")
	contentLengthPrefix = []byte("Content-Length: ")
	headerSep           = []byte(": ")
)
