package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/framegraph/api"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(api.Spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// GetSpec handles the GET /openapi.yaml request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	if _, err := w.Write(api.Spec); err != nil {
		s.logger.Error("GetSpec: write failed", "error", err)
	}
}

// withRequestValidation checks parameters of every request that matches an
// operation in doc. Requests outside the document pass through to next.
// Bodies are left to the handlers, which enforce the size limit.
func (s *Server) withRequestValidation(doc *openapi3.T, next http.Handler) (http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}
	opts := &openapi3filter.Options{
		ExcludeRequestBody: true,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, params, err := router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		err = openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: params,
			Route:      route,
			Options:    opts,
		})
		if err != nil {
			s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "error", err)
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Reason: reasonInvalidRequest})
			return
		}
		next.ServeHTTP(w, r)
	}), nil
}
