package sender

import (
	"os"

	"github.com/jarcoal/httpmock"
)

var testTransport = DefaultTransport() //nolint:gochecknoglobals

// NewTestSender creates the RequestSender for tests.
//
// If the TEST_HTTP_SENDER_VERBOSE environment variable is set to "true",
// then all HTTP requests and responses are dumped to stdout.
//
// Output may contain unmasked tokens, do not use it in production.
func NewTestSender(baseURL string) (RequestSender, error) {
	s, err := New(baseURL)
	if err != nil {
		return RequestSender{}, err
	}
	s = s.WithTransport(testTransport)
	if os.Getenv("TEST_HTTP_SENDER_VERBOSE") == "true" {
		s = s.WithTrace(DumpTracer(os.Stdout))
	}
	return s, nil
}

// NewMockedSender creates the RequestSender with mocked HTTP transport.
func NewMockedSender(baseURL string) (RequestSender, *httpmock.MockTransport, error) {
	s, err := NewTestSender(baseURL)
	if err != nil {
		return RequestSender{}, nil, err
	}
	mockTransport := httpmock.NewMockTransport()
	return s.WithTransport(mockTransport), mockTransport, nil
}
