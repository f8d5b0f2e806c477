package sender

import (
	"fmt"
	"io"
	"net/http"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/apiprobe/go-client/pkg/sender/decode"
)

// ReadString slurps a byte stream into a string.
// The default implementation reads the whole stream into memory,
// tests can supply an in-memory implementation instead, see
// RequestSender.WithReadString.
type ReadString func(r io.Reader) (string, error)

// DefaultReadString reads the whole stream into a string.
func DefaultReadString(r io.Reader) (string, error) {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Connection is one open HTTP exchange ready to be read.
//
// Primary returns the success response stream and fails when the
// exchange has no such stream, typically because the server answered
// with a failure status. ErrorStream hands out the failure channel
// stream instead, so an error body can still be parsed.
type Connection interface {
	Primary() (io.ReadCloser, error)
	ErrorStream() (io.ReadCloser, error)
	// ContentType returns the Content-Type response header.
	ContentType() string
	// ContentEncoding returns the Content-Encoding response header.
	ContentEncoding() string
}

// httpConnection adapts *http.Response to the Connection interface.
type httpConnection struct {
	response *http.Response
}

// NewHTTPConnection wraps a received response as a Connection.
func NewHTTPConnection(response *http.Response) Connection {
	return httpConnection{response: response}
}

func (c httpConnection) Primary() (io.ReadCloser, error) {
	code := c.response.StatusCode
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("%d %s", code, http.StatusText(code))
	}
	if c.response.Body == nil {
		return nil, fmt.Errorf("response has no body")
	}
	return c.response.Body, nil
}

func (c httpConnection) ErrorStream() (io.ReadCloser, error) {
	if c.response.Body == nil {
		return nil, fmt.Errorf("response has no error body")
	}
	return c.response.Body, nil
}

func (c httpConnection) ContentType() string {
	return c.response.Header.Get("Content-Type")
}

func (c httpConnection) ContentEncoding() string {
	return c.response.Header.Get("Content-Encoding")
}

// ReadResponse reads the connection and parses the body as a JSON object.
//
// The success stream is tried first. If it cannot be read, the error
// stream is read instead, so a failure status with a JSON error body
// yields a parsed object rather than a transport failure. Only when
// neither stream is available does the primary failure propagate.
//
// It is exported so the response path can be exercised with custom
// Connection implementations backed by in-memory streams.
func (s RequestSender) ReadResponse(method, url string, conn Connection) (*orderedmap.OrderedMap, error) {
	stream, primaryErr := conn.Primary()
	if primaryErr != nil {
		var errStreamErr error
		stream, errStreamErr = conn.ErrorStream()
		if errStreamErr != nil {
			// Neither stream can be read, the primary failure wins.
			return nil, &TransportError{Method: method, URL: url, Err: primaryErr}
		}
	}
	defer stream.Close()

	decoded, err := decode.Decode(stream, conn.ContentEncoding())
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	text, err := s.readString(decoded)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}

	result := orderedmap.New()
	if err := json.UnmarshalFromString(text, result); err != nil {
		return nil, &ResponseParseError{ContentType: conn.ContentType(), Body: text, Err: err}
	}
	return result, nil
}
