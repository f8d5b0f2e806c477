package sender

import (
	"net/http"
)

// strategy selects where the encoded request arguments travel.
type strategy int

const (
	// uriCarrying appends the arguments to the URL as a query string.
	uriCarrying strategy = iota
	// bodyCarrying writes the arguments to the request body.
	bodyCarrying
)

// methodStrategy is the closed verb to strategy table. Only write-type
// methods and CONNECT carry a body, some transports cannot write a body
// for other verbs, DELETE being the usual offender, so those carry the
// arguments in the URL instead. Methods missing from the table default
// to uriCarrying.
var methodStrategy = map[string]strategy{ //nolint:gochecknoglobals
	http.MethodPost:    bodyCarrying,
	http.MethodPut:     bodyCarrying,
	http.MethodConnect: bodyCarrying,
}

func strategyFor(method string) strategy {
	return methodStrategy[method]
}
