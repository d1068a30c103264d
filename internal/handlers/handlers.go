package handlers

import (
	"net/http"

	"github.com/govlink/govlink/internal/api/write"
	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/log"
)

// ResponseError logs err and writes the problem it maps to.
// Server-side failures are logged as errors, rejected requests as warnings.
func ResponseError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	apiErr := apierrors.TransformToAPIError(err)

	if apiErr.Status >= http.StatusInternalServerError {
		log.Error(ctx, "Processing Request", err)
	} else {
		log.Warn(ctx, "Rejected Request", log.ErrorAttr(err))
	}

	write.ErrorResponse(ctx, w, r, apiErr)
}

// RouteNotFound answers every request no API route matched.
func RouteNotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug(r.Context(), "No route matched request")

		write.ErrorResponse(r.Context(), w, r, apierrors.RouteNotFoundMessage())
	}
}
