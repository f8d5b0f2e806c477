package sender

import (
	"fmt"
)

const parseErrorBodyMaxLength = 256

// InvalidURIError is returned when a base URL or a request path
// contains no letter or digit, so no meaningful URI can be built from it.
type InvalidURIError struct {
	Value string
}

func (e InvalidURIError) Error() string {
	return fmt.Sprintf(`invalid URI "%s"`, e.Value)
}

// EncodingError is returned when a request argument cannot be form-encoded,
// for example a key or value that is not valid UTF-8.
type EncodingError struct {
	Key string
	Err error
}

func (e EncodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(`cannot encode argument "%s": %s`, e.Key, e.Err)
	}
	return fmt.Sprintf(`cannot encode argument "%s": value is not valid UTF-8`, e.Key)
}

func (e EncodingError) Unwrap() error {
	return e.Err
}

// TransportError is returned when the connection, write or read fails
// at the network layer.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e TransportError) Error() string {
	return fmt.Sprintf(`request %s "%s" failed: %s`, e.Method, e.URL, e.Err)
}

func (e TransportError) Unwrap() error {
	return e.Err
}

// ResponseParseError is returned when a retrieved response body is not
// a valid JSON object. The body is kept so the caller can inspect what
// the server actually returned.
type ResponseParseError struct {
	ContentType string
	Body        string
	Err         error
}

func (e ResponseParseError) Error() string {
	body := e.Body
	if len(body) > parseErrorBodyMaxLength {
		body = body[:parseErrorBodyMaxLength] + "..."
	}
	if e.ContentType != "" && !isJSONContentType(e.ContentType) {
		return fmt.Sprintf(`cannot parse response body "%s" as JSON, content type is "%s": %s`, body, e.ContentType, e.Err)
	}
	return fmt.Sprintf(`cannot parse response body "%s" as JSON: %s`, body, e.Err)
}

func (e ResponseParseError) Unwrap() error {
	return e.Err
}
