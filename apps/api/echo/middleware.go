package echoapi

import (
	"crypto/subtle"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// requestIDMiddleware keeps the X-Request-ID sent by the roster client, or generates one.
func requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	})
}

// operatorMiddleware rejects tokens issued to another username than the configured operator,
// so renaming the operator revokes the tokens already issued.
func operatorMiddleware(auth *authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if subtle.ConstantTimeCompare([]byte(claims.Username), []byte(auth.username)) == 1 {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
