package fideauth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	goerrors "github.com/goliatone/go-errors"
)

// NewVerificationApp builds the fiber app serving the verification boundary.
// Every response, preflight included, carries permissive CORS headers: the
// redemption pages are static-hosted on a different origin than this API.
func NewVerificationApp(router *Router, logger Logger) *fiber.App {
	if logger == nil {
		logger = defLogger{}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Post("/verification", func(c *fiber.Ctx) error {
		req, err := ParseVerificationRequest(c.Body())
		if err != nil {
			logger.Debug("verification request rejected: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": userFacingError(err)})
		}

		if err := router.Dispatch(c.Context(), req); err != nil {
			logger.Error("verification %s failed: %v", req.Type(), err)
			return c.Status(statusForError(err)).JSON(fiber.Map{"error": userFacingError(err)})
		}

		return c.JSON(fiber.Map{"success": true})
	})

	return app
}

func statusForError(err error) int {
	switch {
	case IsTokenMalformed(err), IsTokenExpired(err):
		return fiber.StatusBadRequest
	case IsSubjectNotFound(err):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// userFacingError keeps the details for the logs and hands the caller a
// message they can act on.
func userFacingError(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		switch rich.TextCode {
		case TextCodeTokenExpired:
			return "This link has expired. Please request a new one."
		case TextCodeTokenMalformed:
			return "This link is invalid. Please request a new one."
		case TextCodeSubjectNotFound:
			return "We could not find a matching account."
		}
		if rich.Category == goerrors.CategoryValidation || rich.Category == goerrors.CategoryBadInput {
			return rich.Message
		}
	}
	return "Something went wrong. Please try again or contact support."
}
