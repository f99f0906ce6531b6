package http

import "strings"

// Header is a single name/value pair.
type Header struct {
	Name  string
	Value string
}

// Headers preserves insertion order, unlike a map. Lookup is
// case-insensitive per RFC 9110.
type Headers []Header

func (h *Headers) Add(name, value string) {
	*h = append(*h, Header{Name: name, Value: value})
}

// Set replaces the first header with the given name, or appends.
func (h *Headers) Set(name, value string) {
	for i := range *h {
		if strings.EqualFold((*h)[i].Name, name) {
			(*h)[i].Value = value
			return
		}
	}
	h.Add(name, value)
}

func (h Headers) Get(name string) (string, bool) {
	for i := range h {
		if strings.EqualFold(h[i].Name, name) {
			return h[i].Value, true
		}
	}
	return "", false
}
