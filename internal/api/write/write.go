package write

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/moogar0880/problems"

	"github.com/govlink/govlink/internal/apierrors"
	"github.com/govlink/govlink/internal/log"
	govlinkcontext "github.com/govlink/govlink/utils/context"
)

const (
	ProblemContentType = "application/problem+json"
	JSONContentType    = "application/json"
	RequestIDHeader    = "X-Request-Id"
)

// ErrorResponse writes e as an RFC 7807 problem for the request path.
func ErrorResponse(ctx context.Context, w http.ResponseWriter, r *http.Request, e *apierrors.APIError) {
	detail := e.Message
	if e.Detail != "" {
		detail = e.Message + ": " + e.Detail
	}

	problem := problems.NewStatusProblem(e.Status).
		WithInstance(r.URL.Path).
		WithType(e.Code).
		WithDetail(detail)

	write(ctx, w, e.Status, ProblemContentType, problem)
}

// JSON writes v with the given status.
func JSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	write(ctx, w, status, JSONContentType, v)
}

func write(ctx context.Context, w http.ResponseWriter, status int, contentType string, v any) {
	requestID, err := govlinkcontext.GetRequestID(ctx)
	if err == nil {
		w.Header().Set(RequestIDHeader, requestID)
	}

	body, err := json.Marshal(v)
	if err != nil {
		log.Error(ctx, "Failed to encode response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)

	_, err = w.Write(body)
	if err != nil {
		log.Error(ctx, "Failed to write response", err)
	}
}
