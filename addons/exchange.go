package addons

import "net/http"

// Response is the mutable part of an intercepted exchange. Header keys
// follow net/http canonicalization, so lookups and deletes are
// case-insensitive while unrelated headers keep their stored form.
type Response struct {
	StatusCode int
	Reason     string
	Header     http.Header
	Body       []byte
}

// Exchange is one intercepted request/response pair. The transport builds
// it when an upstream response arrives, the pipeline mutates it, and the
// transport writes the result back to the wire. Response is nil when the
// upstream never answered.
type Exchange struct {
	Method   string
	Response *Response
}

// NewExchange builds an exchange for a completed response. The body must
// already be fully buffered by the transport.
func NewExchange(method string, resp *Response) *Exchange {
	return &Exchange{Method: method, Response: resp}
}
