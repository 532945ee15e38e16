package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header used to carry the request ID in and out.
const RequestIDHeader = "X-Request-ID"

// RequestID returns middleware that tags every request with an ID. An
// incoming X-Request-ID is preserved so IDs survive proxy hops; otherwise
// a fresh UUID is generated. The ID is stored on the echo context under
// "request_id" and echoed back on the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
