package presenter

import (
	"errors"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/places/pkg/auth"
	"github.com/artem13815/places/pkg/place"
	"github.com/artem13815/places/pkg/upload"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}

// FromError is the single place where domain errors become HTTP
// responses. Known errors carry their client-facing message; anything
// else is an internal failure and its detail never leaves the process.
func FromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, place.ErrInvalidInput),
		errors.Is(err, upload.ErrUnsupportedType),
		errors.Is(err, upload.ErrTooLarge),
		errors.Is(err, auth.ErrUserAlreadyExists):
		return Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrNotFound),
		errors.Is(err, place.ErrNotFound),
		errors.Is(err, place.ErrUserNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, place.ErrForbidden):
		return Error(c, http.StatusForbidden, err.Error())
	default:
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return Error(c, http.StatusInternalServerError, "Something went wrong")
	}
}
