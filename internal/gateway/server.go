package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	httpserver "github.com/suivipro/platform/internal/infrastructure/http"
	"github.com/suivipro/platform/internal/infrastructure/http/handlers"
)

const (
	ServiceName = "API Gateway"
	Version     = "1.0.0"
)

// Config configures NewServer.
type Config struct {
	Routes          Table
	UpstreamTimeout time.Duration
	CORSOrigins     []string
	Log             zerolog.Logger
	Registerer      prometheus.Registerer
}

type notFoundResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

type indexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewServer returns the gateway Echo instance: health and index routes plus
// a catch-all that dispatches through the route table.
func NewServer(cfg Config) (*echo.Echo, error) {
	if len(cfg.Routes) == 0 {
		return nil, errors.New("gateway: empty route table")
	}
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}

	e := httpserver.NewServer(httpserver.Options{
		Subsystem:    "gateway_http",
		CORSOrigins:  cfg.CORSOrigins,
		Log:          cfg.Log,
		ErrorHandler: errorHandler(cfg.Log),
		Registerer:   cfg.Registerer,
	})

	transport := newTransport(timeout)
	forwarders := make(map[string]*forwarder, len(cfg.Routes))
	endpoints := map[string]string{"health": "/health"}
	for _, r := range cfg.Routes {
		forwarders[r.Name] = newForwarder(r, transport, cfg.Log)
		endpoints[r.Name] = r.Prefix
	}

	e.GET("/health", handlers.NewHealthHandler(ServiceName).Liveness)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, indexResponse{
			Message:   "Welcome to the API Gateway",
			Version:   Version,
			Endpoints: endpoints,
		})
	})

	dispatch := func(c echo.Context) error {
		path := c.Request().URL.Path
		route, ok := cfg.Routes.Match(path)
		if !ok {
			return c.JSON(http.StatusNotFound, notFoundResponse{
				Error:   "not_found",
				Message: "route not found",
				Path:    path,
			})
		}
		return forwarders[route.Name].serve(c)
	}
	e.Any("/*", dispatch)
	return e, nil
}

func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: statusCode(he.Code), Message: fmt.Sprintf("%v", he.Message)})
			return
		}
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"})
	}
}

// statusCode turns a status into a machine code, e.g. 405 → "method_not_allowed".
func statusCode(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
