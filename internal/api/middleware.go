package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// HTTPMetrics is the subset of the metrics recorder the middleware reports to.
type HTTPMetrics interface {
	RecordHTTP(method, route string, status int, elapsed time.Duration)
}

// Recover turns handler panics into a 500 envelope.
func Recover(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					log.Error().Err(perr).Bytes("stack", debug.Stack()).Msg("panic in handler")
					err = InternalServerErrorResponse(c)
				}
			}()
			return next(c)
		}
	}
}

// RequestLogging logs each request once its status is final.
func RequestLogging(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			ev := log.Info()
			if status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote", c.RealIP()).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Msg("http request")
			return nil
		}
	}
}

// Metrics observes request latency labelled by templated route.
func Metrics(m HTTPMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))
			return err
		}
	}
}

// errorHandler renders framework errors (404, 405, bad bodies) as envelopes.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		var data interface{}
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			data = fmt.Sprintf("%v", he.Message)
		} else {
			log.Error().Err(err).Msg("unhandled error")
		}
		if werr := DataResponse(c, code, data); werr != nil {
			log.Error().Err(werr).Msg("write error response")
		}
	}
}
