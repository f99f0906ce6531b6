package http

const (
	StatusOK                  uint16 = 200
	StatusBadRequest          uint16 = 400
	StatusForbidden           uint16 = 403
	StatusNotFound            uint16 = 404
	StatusMethodNotAllowed    uint16 = 405
	StatusInternalServerError uint16 = 500
)

// StatusText returns the reason phrase for the codes this server emits.
func StatusText(code uint16) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusBadRequest:
		return "Bad Request"
	case StatusForbidden:
		return "Forbidden"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}
