package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cableops.io/dashboard/internal/api/openapi"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
)

const openAPIResponseValidationMessage = "Response does not conform to the API contract"

// OpenAPIOptions selects which side of the exchange is checked.
type OpenAPIOptions struct {
	// BasePath is the API prefix the document's paths are relative to.
	BasePath  string
	Requests  bool
	Responses bool
}

// MustOpenAPIValidator creates the contract validator and panics on setup failure.
func MustOpenAPIValidator(opts OpenAPIOptions) gin.HandlerFunc {
	mw, err := NewOpenAPIValidator(opts)
	if err != nil {
		panic(fmt.Sprintf("init openapi validator: %v", err))
	}
	return mw
}

// NewOpenAPIValidator checks requests and responses against the embedded
// OpenAPI document. Routes the document does not describe pass through.
// Requests that break the contract are rejected with 422 before the
// handler runs; responses that break it are replaced with a 500.
func NewOpenAPIValidator(opts OpenAPIOptions) (gin.HandlerFunc, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	basePath := normalizeBasePath(opts.BasePath)
	filterOpts := &openapi3filter.Options{
		// JWT and RBAC are enforced by their own middleware.
		AuthenticationFunc: func(context.Context, *openapi3filter.AuthenticationInput) error { return nil },
	}

	return func(c *gin.Context) {
		if !opts.Requests && !opts.Responses {
			c.Next()
			return
		}

		origPath := c.Request.URL.Path
		origRawPath := c.Request.URL.RawPath

		route, pathParams, routeErr := findRouteWithFallback(router, c.Request, basePath)
		c.Request.URL.Path = origPath
		c.Request.URL.RawPath = origRawPath
		if routeErr != nil {
			if isPathNotFoundError(routeErr) {
				c.Next()
				return
			}
			abortWithContractError(c, http.StatusMethodNotAllowed, apperrors.CodeOpenAPIRoute, routeErr.Error())
			return
		}

		reqInput := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    filterOpts,
		}
		if opts.Requests {
			if err := validateRequest(c, reqInput, basePath); err != nil {
				abortWithContractError(c, http.StatusUnprocessableEntity, apperrors.CodeOpenAPIRequest, err.Error())
				return
			}
		}
		if !opts.Responses {
			c.Next()
			return
		}

		original := c.Writer
		buffered := newBufferedResponseWriter(original)
		c.Writer = buffered
		c.Next()
		c.Writer = original

		// Nothing rendered yet: ErrorHandler writes the queued error later.
		if !buffered.Written() {
			return
		}

		respInput := &openapi3filter.ResponseValidationInput{
			RequestValidationInput: reqInput,
			Status:                 buffered.Status(),
			Header:                 buffered.Header().Clone(),
			Options:                filterOpts,
		}
		respInput.SetBodyBytes(buffered.body.Bytes())

		if err := openapi3filter.ValidateResponse(c.Request.Context(), respInput); err != nil {
			logger.Error("OpenAPI response validation failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", buffered.Status()),
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.Error(err),
			)
			buffered.ResetJSON(http.StatusInternalServerError, ErrorBody{
				Detail: openAPIResponseValidationMessage,
				Code:   apperrors.CodeOpenAPIResponse,
			})
		}

		if _, err := buffered.FlushToOriginal(); err != nil {
			logger.Warn("Failed to flush buffered response",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
	}, nil
}

// validateRequest runs the request checks against the prefix-free path the
// route was matched on, then restores the original URL.
func validateRequest(c *gin.Context, in *openapi3filter.RequestValidationInput, basePath string) error {
	origPath := c.Request.URL.Path
	origRawPath := c.Request.URL.RawPath
	defer func() {
		c.Request.URL.Path = origPath
		c.Request.URL.RawPath = origRawPath
	}()

	c.Request.URL.Path = normalizeValidationPath(basePath, origPath)
	if origRawPath != "" {
		c.Request.URL.RawPath = normalizeValidationPath(basePath, origRawPath)
	}
	return openapi3filter.ValidateRequest(c.Request.Context(), in)
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" || basePath == "/" {
		return ""
	}
	return "/" + strings.Trim(basePath, "/")
}

func normalizeValidationPath(basePath, path string) string {
	if basePath == "" {
		if path == "" {
			return "/"
		}
		return path
	}
	if path == basePath {
		return "/"
	}
	if strings.HasPrefix(path, basePath+"/") {
		return "/" + strings.TrimPrefix(path, basePath+"/")
	}
	return path
}

func findRouteWithFallback(router routers.Router, req *http.Request, basePath string) (*routers.Route, map[string]string, error) {
	origPath := req.URL.Path
	origRawPath := req.URL.RawPath
	defer func() {
		req.URL.Path = origPath
		req.URL.RawPath = origRawPath
	}()

	candidates := [][2]string{{origPath, origRawPath}}
	normalizedPath := normalizeValidationPath(basePath, origPath)
	normalizedRawPath := origRawPath
	if origRawPath != "" {
		normalizedRawPath = normalizeValidationPath(basePath, origRawPath)
	}
	if normalizedPath != origPath || normalizedRawPath != origRawPath {
		// The prefixed form is tried last so a prefix-free document wins.
		candidates = [][2]string{{normalizedPath, normalizedRawPath}, {origPath, origRawPath}}
	}

	var lastErr error
	for _, candidate := range candidates {
		req.URL.Path = candidate[0]
		req.URL.RawPath = candidate[1]

		route, pathParams, err := router.FindRoute(req)
		if err == nil {
			return route, pathParams, nil
		}
		if !isPathNotFoundError(err) {
			return nil, nil, err
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func isPathNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, routers.ErrPathNotFound) {
		return true
	}
	var routeErr *routers.RouteError
	if errors.As(err, &routeErr) && strings.Contains(routeErr.Reason, routers.ErrPathNotFound.Error()) {
		return true
	}
	return strings.Contains(err.Error(), routers.ErrPathNotFound.Error())
}

func abortWithContractError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Detail: message,
		Code:   code,
	})
}

// bufferedResponseWriter holds the handler's response until it has been
// validated.
type bufferedResponseWriter struct {
	gin.ResponseWriter
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
	size        int
}

func newBufferedResponseWriter(w gin.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *bufferedResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.statusCode = code
	w.wroteHeader = true
}

func (w *bufferedResponseWriter) WriteHeaderNow() {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
}

func (w *bufferedResponseWriter) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.body.Write(data)
	w.size += n
	return n, err
}

func (w *bufferedResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *bufferedResponseWriter) Status() int {
	if !w.wroteHeader {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *bufferedResponseWriter) Size() int {
	return w.size
}

func (w *bufferedResponseWriter) Written() bool {
	return w.wroteHeader
}

func (w *bufferedResponseWriter) ResetJSON(statusCode int, payload ErrorBody) {
	w.statusCode = statusCode
	w.wroteHeader = true
	w.body.Reset()
	w.size = 0
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(`{"detail":"Response does not conform to the API contract","code":"OPENAPI_RESPONSE_INVALID"}`)
	}
	_, _ = w.Write(data)
}

func (w *bufferedResponseWriter) FlushToOriginal() (int, error) {
	w.ResponseWriter.WriteHeader(w.Status())
	if w.body.Len() == 0 {
		w.ResponseWriter.WriteHeaderNow()
		return 0, nil
	}
	return w.ResponseWriter.Write(w.body.Bytes())
}
