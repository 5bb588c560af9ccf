package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/pkg/api"
)

// OpenAPIValidationMiddleware validates path parameters, query parameters and
// JSON bodies against doc. Gin has already matched the route, so the
// operation is looked up by the route template instead of a second router.
// Routes missing from doc pass through unchecked.
func OpenAPIValidationMiddleware(doc *openapi3.T, logger *zap.Logger) gin.HandlerFunc {
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(c *gin.Context) {
		route, ok := findRoute(doc, c.FullPath(), c.Request.Method)
		if !ok {
			c.Next()
			return
		}

		pathParams := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			pathParams[p.Key] = p.Value
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options:    options,
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			logger.Warn("request failed openapi validation",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			details := validationDetails(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{
				Code:    "VALIDATION_ERROR",
				Message: "Request does not match the API schema",
				Details: &details,
			})
			return
		}

		c.Next()
	}
}

// findRoute maps a gin route template such as /api/v1/sessions/:id to the
// OpenAPI path /api/v1/sessions/{id}
func findRoute(doc *openapi3.T, fullPath, method string) (*routers.Route, bool) {
	if fullPath == "" {
		return nil, false
	}

	segments := strings.Split(fullPath, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") || strings.HasPrefix(s, "*") {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	path := strings.Join(segments, "/")

	item := doc.Paths.Value(path)
	if item == nil {
		return nil, false
	}
	operation := item.GetOperation(method)
	if operation == nil {
		return nil, false
	}
	return &routers.Route{
		Spec:      doc,
		Path:      path,
		PathItem:  item,
		Method:    method,
		Operation: operation,
	}, true
}

func validationDetails(err error) string {
	var requestErr *openapi3filter.RequestError
	if errors.As(err, &requestErr) {
		reason := requestErr.Reason
		if requestErr.Err != nil {
			reason = requestErr.Err.Error()
		}
		if requestErr.Parameter != nil {
			return "parameter " + requestErr.Parameter.Name + ": " + reason
		}
		return reason
	}
	return err.Error()
}
