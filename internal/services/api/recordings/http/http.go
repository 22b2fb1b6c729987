// Package http provides http transport for recordings retrieval
package http

import (
	stdhttp "net/http"

	"callrec/internal/modkit/httpkit"
	"callrec/internal/services/api/recordings/domain"
	svc "callrec/internal/services/api/recordings/service"

	"github.com/go-chi/chi/v5"
)

// Register mounts the retrieval endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}

	// list or query via query params
	httpkit.Get(r, "/", h.list)

	// query by explicit hash in the path
	httpkit.Get(r, "/{hash}", h.byHash)
}

type handlers struct{ svc svc.Service }

// @Summary List or query call recording analytics
// @Tags Recordings
// @Produce json
// @Param hash query string false "Correlation hash"
// @Param callId query string false "Business call identifier"
// @Param pageSize query int false "Page size"
// @Param nextToken query string false "Opaque continuation token"
// @Success 200 {object} httpkit.ListBody "ok"
// @Router /recordings [get]
func (h *handlers) list(r *stdhttp.Request) httpkit.Response {
	return h.retrieve(r, r.URL.Query().Get("hash"))
}

// @Summary Query call recording analytics by hash
// @Tags Recordings
// @Produce json
// @Param hash path string true "Correlation hash"
// @Param pageSize query int false "Page size"
// @Param nextToken query string false "Opaque continuation token"
// @Success 200 {object} httpkit.ListBody "ok"
// @Router /recordings/{hash} [get]
func (h *handlers) byHash(r *stdhttp.Request) httpkit.Response {
	return h.retrieve(r, chi.URLParam(r, "hash"))
}

func (h *handlers) retrieve(r *stdhttp.Request, hash string) httpkit.Response {
	q := r.URL.Query()
	page, err := h.svc.Retrieve(r.Context(), domain.RetrieveInput{
		Hash:      hash,
		CallID:    q.Get("callId"),
		PageSize:  q.Get("pageSize"),
		NextToken: q.Get("nextToken"),
	})
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.OK(httpkit.ListBody{
		Message: page.Message,
		Count:   len(page.Items),
		Items:   page.Items,
		Pagination: httpkit.Pagination{
			PageSize:  page.PageSize,
			NextToken: page.NextToken,
			HasMore:   page.HasMore,
		},
	})
}
