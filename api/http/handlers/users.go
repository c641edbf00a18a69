package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/places/api/http/presenter"
	"github.com/artem13815/places/pkg/auth"
	"github.com/artem13815/places/pkg/upload"
)

type UserHandler struct {
	useCase auth.AuthUseCase
	uploads *upload.Store
}

func NewUserHandler(useCase auth.AuthUseCase, uploads *upload.Store) *UserHandler {
	return &UserHandler{useCase: useCase, uploads: uploads}
}

type userResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

func toUserResponse(u auth.User) userResponse {
	places := make([]string, 0, len(u.PlaceIDs))
	for _, id := range u.PlaceIDs {
		places = append(places, id.String())
	}
	return userResponse{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Image:  u.ImageRef,
		Places: places,
	}
}

// Signup registers a new user from a multipart form with an image part.
// @Summary Register user
// @Tags    users
// @Accept  multipart/form-data
// @Produce json
// @Param   name formData string true "display name"
// @Param   email formData string true "email, unique"
// @Param   password formData string true "min 6 characters"
// @Param   image formData file true "avatar image (png/jpeg)"
// @Success 201 {object} map[string]any
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /users/signup [post]
func (h *UserHandler) Signup(c *fiber.Ctx) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	password := c.FormValue("password")
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || len(password) < auth.MinPasswordLength {
		return presenter.FromError(c, auth.ErrInvalidInput)
	}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return presenter.FromError(c, auth.ErrInvalidInput)
	}
	imageRef, err := h.uploads.Save(fh)
	if err != nil {
		return presenter.FromError(c, err)
	}

	result, err := h.useCase.Register(c.Context(), name, email, password, imageRef)
	if err != nil {
		// The image was staged before the user existed; undo it so a
		// rejected signup leaves nothing behind.
		if rmErr := h.uploads.Remove(imageRef); rmErr != nil {
			log.Printf("discard staged upload %s: %v", imageRef, rmErr)
		}
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{
		"data":  toUserResponse(result.User),
		"token": result.Token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates by email/password and returns a bearer token.
// @Summary Login
// @Tags    users
// @Accept  json
// @Produce json
// @Param   input body loginRequest true "login payload"
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /users/login [post]
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.FromError(c, auth.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return presenter.FromError(c, auth.ErrInvalidCredentials)
	}

	result, err := h.useCase.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{
		"data":    toUserResponse(result.User),
		"token":   result.Token,
		"message": "Logged in!",
	})
}

// List returns all users without their password hashes.
// @Summary List users
// @Tags    users
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	users, err := h.useCase.ListUsers(c.Context())
	if err != nil {
		log.Printf("list users: %v", err)
		return presenter.Error(c, http.StatusInternalServerError, "Fetching users failed")
	}
	data := make([]userResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"data": data})
}
