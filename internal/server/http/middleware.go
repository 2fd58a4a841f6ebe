package http

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

// Authenticator resolves an authorization header into an identity.
type Authenticator interface {
	Authenticate(header string) (*auth.Identity, error)
}

// RequireIdentity rejects requests without a valid access token and stores
// the caller's identity in the request's user context.
func RequireIdentity(verifier Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := verifier.Authenticate(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			if errors.Is(err, common.ErrMissingCredential) {
				return Error(c, fiber.StatusUnauthorized, "missing token")
			}
			return Error(c, fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.SetUserContext(auth.WithIdentity(c.UserContext(), id))
		return c.Next()
	}
}

// identity returns the subject set by RequireIdentity.
func identity(c *fiber.Ctx) (*auth.Identity, bool) {
	return auth.IdentityFromContext(c.UserContext())
}

// RequestLogger writes one line per request.
func RequestLogger(log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler set the final status before logging
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		log.Info(c.UserContext(), "request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start).String(),
		)
		return err
	}
}

// errorHandler renders errors that escape handlers, including fiber's own
// 404 and 405.
func errorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, fe.Message)
		}
		log.Error(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
		return Error(c, fiber.StatusInternalServerError, "internal error")
	}
}
