// Package http provides helpers for writing JSON responses in the service's
// fixed wire format
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "callrec/internal/platform/errors"
)

// ListBody is the success body for retrieval responses
type ListBody struct {
	Message    string     `json:"message"`
	Count      int        `json:"count"`
	Items      any        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes continuation state for a page of results
// NextToken is present only when more results exist
type Pagination struct {
	PageSize  int    `json:"pageSize"`
	NextToken string `json:"nextToken,omitempty"`
	HasMore   bool   `json:"hasMore"`
}

// ErrorBody is the error body for all non-2xx responses
type ErrorBody struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	SearchedHash string `json:"searchedHash,omitempty"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w)
	}
}

func (resp Response) write(w stdhttp.ResponseWriter) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	if resp.Header != nil {
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
	}

	// If Body is an error, derive status and the error body from it
	if err, ok := resp.Body.(error); ok && err != nil {
		status = perr.HTTPStatus(err)
		JSON(w, status, ErrorFrom(err))
		return
	}

	JSON(w, status, resp.Body)
}

// OK returns a 200 response
func OK(body any) Response { return Response{Status: stdhttp.StatusOK, Body: body} }

// Error returns a response that maps the error to status and wire body
func Error(err error) Response { return Response{Body: err} }

// ErrorFrom maps a project error onto the wire ErrorBody
// unknown and internal errors are reported without their wrapped cause
func ErrorFrom(err error) ErrorBody {
	status := perr.HTTPStatus(err)
	body := ErrorBody{Message: rootMessage(err)}
	switch {
	case status == stdhttp.StatusNotFound:
		body.Error = "No records found"
		body.SearchedHash = perr.FieldOf(err)
	case perr.IsCode(err, perr.ErrorCodeCursor):
		body.Error = "Invalid pagination token"
	case status == stdhttp.StatusBadRequest:
		body.Error = "Bad request"
	default:
		body.Error = "Internal server error"
	}
	return body
}

func rootMessage(err error) string {
	if e, ok := perr.As(err); ok {
		return e.Message()
	}
	return err.Error()
}
