package gateway

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/suivipro/platform/internal/api/metrics"
)

const defaultUpstreamTimeout = 30 * time.Second

// statusClientClosed matches the code Echo's proxy reports when the client
// goes away mid-request.
const statusClientClosed = middleware.StatusCodeContextCanceled

type unavailableResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// newTransport bounds both the dial and the wait for response headers by
// timeout. There is no retry.
func newTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   32,
	}
}

// forwarder proxies requests for one route to its single upstream.
type forwarder struct {
	route Route
	proxy echo.HandlerFunc
	log   zerolog.Logger
}

func newForwarder(route Route, transport http.RoundTripper, log zerolog.Logger) *forwarder {
	balancer := middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{
		{Name: route.Name, URL: route.Upstream},
	})
	proxy := middleware.ProxyWithConfig(middleware.ProxyConfig{
		Balancer:       balancer,
		Transport:      transport,
		ModifyResponse: stripUpstreamCORS,
	})

	// The proxy never calls next; it either writes the upstream response or
	// returns an error.
	unreachable := func(echo.Context) error { return echo.ErrNotFound }
	return &forwarder{
		route: route,
		proxy: proxy(unreachable),
		log:   log.With().Str("route", route.Name).Logger(),
	}
}

// stripUpstreamCORS drops the upstream's Access-Control-* headers. The
// gateway's CORS middleware owns them; keeping both duplicates the values.
func stripUpstreamCORS(res *http.Response) error {
	for name := range res.Header {
		if strings.HasPrefix(name, "Access-Control-") {
			res.Header.Del(name)
		}
	}
	return nil
}

func (f *forwarder) serve(c echo.Context) error {
	start := time.Now()
	c.Request().Host = f.route.Upstream.Host

	err := f.proxy(c)
	elapsed := time.Since(start)
	metrics.GatewayUpstreamDuration.WithLabelValues(f.route.Name).Observe(elapsed.Seconds())

	if err == nil {
		metrics.GatewayRequestsTotal.WithLabelValues(f.route.Name, strconv.Itoa(c.Response().Status)).Inc()
		return nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == statusClientClosed {
		f.log.Debug().Err(err).Msg("client closed connection before upstream answered")
		metrics.GatewayRequestsTotal.WithLabelValues(f.route.Name, strconv.Itoa(statusClientClosed)).Inc()
		return nil
	}

	f.log.Error().
		Err(err).
		Str("upstream", f.route.Upstream.String()).
		Str("path", c.Request().URL.Path).
		Dur("elapsed", elapsed).
		Msg("upstream unavailable")
	metrics.GatewayUpstreamFailuresTotal.WithLabelValues(f.route.Name).Inc()
	metrics.GatewayRequestsTotal.WithLabelValues(f.route.Name, strconv.Itoa(http.StatusBadGateway)).Inc()

	if c.Response().Committed {
		return nil
	}
	return c.JSON(http.StatusBadGateway, unavailableResponse{
		Error:   "upstream_unavailable",
		Message: f.route.Name + " service temporarily unavailable",
	})
}
