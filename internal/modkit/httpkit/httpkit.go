// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "callrec/internal/platform/net/http"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router

	// ListBody is the success body for retrieval responses
	ListBody = phttp.ListBody

	// Pagination describes continuation state for a page of results
	Pagination = phttp.Pagination
)

// OK returns a 200 response
func OK(body any) Response { return phttp.OK(body) }

// Error returns a response that maps an error to status and wire body
func Error(err error) Response { return phttp.Error(err) }

// Get registers a Response-returning handler under GET
func Get(r Router, path string, h func(*http.Request) Response) {
	r.Get(path, phttp.Handle(h))
}

// Options registers a Response-returning handler under OPTIONS
func Options(r Router, path string, h func(*http.Request) Response) {
	r.Options(path, phttp.Handle(h))
}
