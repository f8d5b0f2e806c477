package sender

import (
	"context"
	"net/http"

	"github.com/keboola/go-utils/pkg/orderedmap"
)

// Request is an immutable definition of one API call: an HTTP verb,
// a path relative to the sender base URL and an optional argument
// mapping. The verb decides where the arguments travel, see
// RequestSender.SendRequest.
//
// Requests are sent using the Sender interface.
// RequestSender is the default implementation.
type Request struct {
	method string
	uri    string
	args   *orderedmap.OrderedMap
}

// Sender sends request definitions, the RequestSender is a default
// implementation using the standard net/http package.
type Sender interface {
	// SendRequest sends the request and returns the parsed response body.
	SendRequest(ctx context.Context, request Request) (result *orderedmap.OrderedMap, err error)
}

// Sendable is anything the batch helpers can dispatch,
// a Request or a Parallel wrapper.
type Sendable interface {
	SendOrErr(ctx context.Context, sender Sender) error
}

// NewRequest creates an immutable request definition.
// The method should be one of the net/http method constants.
func NewRequest(method, uri string) Request {
	return Request{method: method, uri: uri}
}

// Get is shortcut for NewRequest(http.MethodGet, uri).
func Get(uri string) Request {
	return NewRequest(http.MethodGet, uri)
}

// Post is shortcut for NewRequest(http.MethodPost, uri).
func Post(uri string) Request {
	return NewRequest(http.MethodPost, uri)
}

// Put is shortcut for NewRequest(http.MethodPut, uri).
func Put(uri string) Request {
	return NewRequest(http.MethodPut, uri)
}

// Delete is shortcut for NewRequest(http.MethodDelete, uri).
func Delete(uri string) Request {
	return NewRequest(http.MethodDelete, uri)
}

// Head is shortcut for NewRequest(http.MethodHead, uri).
func Head(uri string) Request {
	return NewRequest(http.MethodHead, uri)
}

// Connect is shortcut for NewRequest(http.MethodConnect, uri).
func Connect(uri string) Request {
	return NewRequest(http.MethodConnect, uri)
}

// Method returns the HTTP verb.
func (r Request) Method() string {
	return r.method
}

// URI returns the relative path.
func (r Request) URI() string {
	return r.uri
}

// Args returns the argument mapping, nil if there are no arguments.
func (r Request) Args() *orderedmap.OrderedMap {
	return r.args
}

// AndArg returns a clone of the Request with one argument appended.
// Argument values are cast to string when the request is encoded.
func (r Request) AndArg(key string, value any) Request {
	r.args = cloneArgs(r.args)
	r.args.Set(key, value)
	return r
}

// WithArgs returns a clone of the Request with the argument mapping replaced.
func (r Request) WithArgs(args *orderedmap.OrderedMap) Request {
	r.args = args
	return r
}

// Send sends the request by the sender and waits for the parsed response.
func (r Request) Send(ctx context.Context, sender Sender) (*orderedmap.OrderedMap, error) {
	return sender.SendRequest(ctx, r)
}

// SendOrErr sends the request by the sender, it implements the Sendable interface.
func (r Request) SendOrErr(ctx context.Context, sender Sender) error {
	_, err := r.Send(ctx, sender)
	return err
}

// ReqDefinitionError can be used as the Sendable interface.
// So the error will be returned when you try to send the request.
// This simplifies usage, the error is checked only once, in one place.
type ReqDefinitionError struct {
	error
}

func NewReqDefinitionError(err error) Sendable {
	return ReqDefinitionError{error: err}
}

func (v ReqDefinitionError) SendOrErr(_ context.Context, _ Sender) error {
	return v
}

func (v ReqDefinitionError) Unwrap() error {
	return v.error
}

func cloneArgs(in *orderedmap.OrderedMap) (out *orderedmap.OrderedMap) {
	out = orderedmap.New()
	if in == nil {
		return out
	}
	for _, key := range in.Keys() {
		value, _ := in.Get(key)
		out.Set(key, value)
	}
	return out
}
