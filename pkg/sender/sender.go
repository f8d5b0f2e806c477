// Package sender provides a minimal helper for exercising a JSON REST
// API during testing: it builds a well-formed request from an HTTP verb,
// a relative path and a set of key/value arguments, sends it and parses
// the response body as a JSON object.
//
// Use Request to define immutable requests, see NewRequest function.
// Requests are sent using the Sender interface.
//
// RequestSender is a default implementation of the Sender interface.
// It is bound to a sanitized base URL and routes each verb to one of
// two strategies: POST, PUT and CONNECT carry the form-encoded
// arguments in the request body, all other verbs carry them in the
// URL query string.
//
// WaitGroup and RunGroup are helpers for concurrent requests.
package sender

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"
)

// RequestSender is a configurable implementation of the Sender interface
// by Go native http.Client.
//
// The zero value is not usable, see New. The value is immutable, the
// With* methods return modified clones, so a single RequestSender can
// be shared by concurrent goroutines without locking.
type RequestSender struct {
	baseURL      string
	transport    http.RoundTripper
	header       http.Header
	readString   ReadString
	traceFactory TraceFactory
}

// New creates a RequestSender bound to the given base URL.
// The base URL is trimmed down to its alphanumeric boundary, stray
// whitespace or separators supplied by the caller are dropped.
// A base URL without any letter or digit returns an InvalidURIError.
func New(baseURL string) (RequestSender, error) {
	portion, err := SanitizeURI(strings.TrimSpace(baseURL))
	if err != nil {
		return RequestSender{}, err
	}
	s := RequestSender{
		baseURL:    portion,
		transport:  DefaultTransport(),
		header:     make(http.Header),
		readString: DefaultReadString,
	}
	s.header.Set("User-Agent", "apiprobe-go-client")
	s.header.Set("Accept-Encoding", "gzip, br")
	return s, nil
}

// BaseURL returns the sanitized base URL all requests are resolved against.
func (s RequestSender) BaseURL() string {
	return s.baseURL
}

// WithTransport returns a clone of the RequestSender with a HTTP transport set.
func (s RequestSender) WithTransport(transport http.RoundTripper) RequestSender {
	if transport == nil || transport == http.RoundTripper(nil) {
		panic(fmt.Errorf("transport cannot be nil"))
	}
	s.transport = transport
	return s
}

// WithUserAgent returns a clone of the RequestSender with user agent set.
func (s RequestSender) WithUserAgent(v string) RequestSender {
	s.header = s.header.Clone()
	s.header.Set("User-Agent", v)
	return s
}

// WithHeader returns a clone of the RequestSender with common header set.
func (s RequestSender) WithHeader(key, value string) RequestSender {
	s.header = s.header.Clone()
	s.header.Set(key, value)
	return s
}

// WithHeaders returns a clone of the RequestSender with common headers set.
func (s RequestSender) WithHeaders(headers map[string]string) RequestSender {
	s.header = s.header.Clone()
	for k, v := range headers {
		s.header.Set(k, v)
	}
	return s
}

// WithReadString returns a clone of the RequestSender with the
// stream-to-string reader replaced. The reader is an explicitly passed
// capability, so the response path can be tested with in-memory streams.
func (s RequestSender) WithReadString(fn ReadString) RequestSender {
	if fn == nil {
		panic(fmt.Errorf("read function cannot be nil"))
	}
	s.readString = fn
	return s
}

// WithTrace returns a clone of the RequestSender with Trace hooks set.
func (s RequestSender) WithTrace(fn TraceFactory) RequestSender {
	s.traceFactory = fn
	return s
}

// AndTrace returns a clone of the RequestSender with additional Trace hooks.
func (s RequestSender) AndTrace(fn TraceFactory) RequestSender {
	old := s.traceFactory
	if old == nil {
		return s.WithTrace(fn)
	}
	s.traceFactory = func() *Trace {
		t := fn()
		if t == nil {
			return old()
		}
		t.compose(old())
		return t
	}
	return s
}

// SendRequest sends the request and waits for the parsed response,
// it implements the Sender interface.
//
// The call blocks for the full round trip. Each call opens exactly one
// connection, performs at most one write and one read and does not
// retain or reuse the connection. All failures are surfaced to the
// caller, there are no retries and no redirect handling beyond the
// transport defaults.
func (s RequestSender) SendRequest(ctx context.Context, request Request) (result *orderedmap.OrderedMap, err error) {
	// Method cannot be called on an empty value
	if s.transport == nil {
		panic(fmt.Errorf("sender value is not initialized"))
	}

	// Init trace
	var trace *Trace
	if s.traceFactory != nil {
		trace = s.traceFactory()
		if trace != nil {
			ctx = httptrace.WithClientTrace(ctx, &trace.ClientTrace)
		}
	}
	if trace != nil && trace.GotRequest != nil {
		trace.GotRequest(request)
	}
	if trace != nil && trace.RequestProcessed != nil {
		defer func() {
			trace.RequestProcessed(result, err)
		}()
	}

	switch strategyFor(request.Method()) {
	case bodyCarrying:
		return s.sendOutputRequest(ctx, request, trace)
	default:
		return s.sendURIRequest(ctx, request, trace)
	}
}

// sendURIRequest sends a request with the encoded arguments appended
// to the URL as a query string and no body.
func (s RequestSender) sendURIRequest(ctx context.Context, request Request, trace *Trace) (*orderedmap.OrderedMap, error) {
	endpoint, err := s.buildURL(request.URI(), request.Args())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, request.Method(), endpoint, nil)
	if err != nil {
		return nil, &TransportError{Method: request.Method(), URL: endpoint, Err: err}
	}
	return s.do(req, trace)
}

// sendOutputRequest sends a request with the encoded arguments written
// to the request body and no query string. The body is written as one
// unchunked write and the output is closed before the response is read.
func (s RequestSender) sendOutputRequest(ctx context.Context, request Request, trace *Trace) (*orderedmap.OrderedMap, error) {
	uri, err := ValidURI(request.URI())
	if err != nil {
		return nil, err
	}
	endpoint := s.baseURL + uri
	data, err := EncodeArgs(request.Args())
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, request.Method(), endpoint, strings.NewReader(data))
	if err != nil {
		return nil, &TransportError{Method: request.Method(), URL: endpoint, Err: err}
	}
	req.ContentLength = int64(len(data))
	req.Header.Set("Content-Type", ContentTypeApplicationForm)
	return s.do(req, trace)
}

// buildURL composes base URL + valid URI + optional query string.
func (s RequestSender) buildURL(uri string, args *orderedmap.OrderedMap) (string, error) {
	validURI, err := ValidURI(uri)
	if err != nil {
		return "", err
	}
	query, err := EncodeArgs(args)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(s.baseURL)
	b.WriteString(validURI)
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	return b.String(), nil
}

func (s RequestSender) do(req *http.Request, trace *Trace) (*orderedmap.OrderedMap, error) {
	// Common headers, request specific values win
	for k, values := range s.header {
		if req.Header.Get(k) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Set(k, v)
		}
	}

	// One connection per call, no reuse
	req.Close = true

	nativeClient := http.Client{
		Transport: roundTripper{trace: trace, wrapped: s.transport},
	}

	res, err := nativeClient.Do(req)
	if err != nil {
		return nil, sendError(req, err)
	}

	return s.ReadResponse(req.Method, req.URL.String(), NewHTTPConnection(res))
}

func sendError(req *http.Request, err error) error {
	// Unwrap the url.Error added by http.Client, method and URL context
	// is carried by the TransportError itself.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return &TransportError{Method: req.Method, URL: req.URL.String(), Err: err}
}

// roundTripper wraps a http.RoundTripper and adds trace functionality.
type roundTripper struct {
	trace   *Trace
	wrapped http.RoundTripper
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.trace != nil && rt.trace.HTTPRequestStart != nil {
		rt.trace.HTTPRequestStart(req)
	}
	res, err := rt.wrapped.RoundTrip(req)
	if rt.trace != nil && rt.trace.HTTPRequestDone != nil {
		rt.trace.HTTPRequestDone(res, err)
	}
	return res, err
}
