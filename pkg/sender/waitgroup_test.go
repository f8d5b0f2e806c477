package sender_test

import (
	"context"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/apiprobe/go-client/pkg/sender"
)

func TestWaitGroup(t *testing.T) {
	t.Parallel()

	s, transport, err := sender.NewMockedSender("http://example.com")
	assert.NoError(t, err)
	transport.RegisterResponder("GET", `=~^http://example.com/`, httpmock.NewStringResponder(200, "{}"))

	// Create wait group
	g := sender.NewWaitGroup(context.Background(), s)

	// Send requests
	g.Send(sender.Get("foo1"))
	g.Send(sender.Get("foo2"))
	g.Send(sender.Get("foo3").AndArg("id", "1"))

	// Requests are sent immediately
	time.Sleep(100 * time.Millisecond)
	assert.Greater(t, transport.GetTotalCallCount(), 0)

	// Wait for all requests
	assert.NoError(t, g.Wait())

	// No new request
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET http://example.com/foo1"])
	assert.Equal(t, 1, transport.GetCallCountInfo()["GET http://example.com/foo2"])
	assert.Equal(t, 3, transport.GetTotalCallCount())
}

func TestWaitGroup_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	s, transport, err := sender.NewMockedSender("http://example.com")
	assert.NoError(t, err)
	// Plain text body, each request fails with a parse error
	transport.RegisterResponder("GET", `=~^http://example.com/`, httpmock.NewStringResponder(200, "not json"))

	// Create wait group
	g := sender.NewWaitGroup(context.Background(), s)

	// Send requests
	requestsCount := 100
	assert.Greater(t, requestsCount, sender.WaitGroupConcurrencyLimit)
	for i := 1; i <= requestsCount; i++ {
		g.Send(sender.Get("foo"))
	}

	// All errors are returned
	err = g.Wait()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `100 errors occurred:`)

	// All requests have been sent
	assert.Equal(t, 100, transport.GetTotalCallCount())
}

func TestWaitGroup_SingleErrorIsUnwrapped(t *testing.T) {
	t.Parallel()

	s, transport, err := sender.NewMockedSender("http://example.com")
	assert.NoError(t, err)
	transport.RegisterResponder("GET", "http://example.com/ok", httpmock.NewStringResponder(200, "{}"))
	transport.RegisterResponder("GET", "http://example.com/bad", httpmock.NewStringResponder(200, "not json"))

	g := sender.NewWaitGroup(context.Background(), s)
	g.Send(sender.Get("ok"))
	g.Send(sender.Get("bad"))

	err = g.Wait()
	assert.Error(t, err)
	var parseErr *sender.ResponseParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParallel(t *testing.T) {
	t.Parallel()

	s, transport, err := sender.NewMockedSender("http://example.com")
	assert.NoError(t, err)
	transport.RegisterResponder("GET", `=~^http://example.com/`, httpmock.NewStringResponder(200, "{}"))

	requests := sender.Parallel(
		sender.Get("foo1"),
		sender.Get("foo2"),
		sender.Get("foo3"),
	)
	assert.NoError(t, requests.SendOrErr(context.Background(), s))
	assert.Equal(t, 3, transport.GetTotalCallCount())
}
