package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/artem13815/places/api/http/presenter"
	"github.com/artem13815/places/pkg/place"
	"github.com/artem13815/places/pkg/upload"
)

type PlaceHandler struct {
	uc      place.UseCase
	uploads *upload.Store
}

func NewPlaceHandler(uc place.UseCase, uploads *upload.Store) *PlaceHandler {
	return &PlaceHandler{uc: uc, uploads: uploads}
}

type placeResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Location    place.Location `json:"location"`
	Address     string         `json:"address"`
	Creator     string         `json:"creator"`
}

func toPlaceResponse(p place.Place) placeResponse {
	return placeResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Image:       p.ImageRef,
		Location:    p.Location,
		Address:     p.Address,
		Creator:     p.CreatorID.String(),
	}
}

func identityFrom(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, _ := c.Locals("userId").(string)
	return uuid.Parse(userIDStr)
}

// Create adds a place owned by the authenticated user.
// @Summary Create place
// @Tags    places
// @Accept  multipart/form-data
// @Produce json
// @Param   title formData string true "title"
// @Param   description formData string true "min 5 characters"
// @Param   address formData string true "address"
// @Param   lat formData number true "latitude"
// @Param   lng formData number true "longitude"
// @Param   image formData file true "place image (png/jpeg)"
// @Security BearerAuth
// @Success 201 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /places [post]
func (h *PlaceHandler) Create(c *fiber.Ctx) error {
	uid, err := identityFrom(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "Authentication failed")
	}
	lat, latErr := strconv.ParseFloat(c.FormValue("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.FormValue("lng"), 64)
	if latErr != nil || lngErr != nil {
		return presenter.FromError(c, place.ErrInvalidInput)
	}
	fh, err := c.FormFile("image")
	if err != nil || fh == nil {
		return presenter.FromError(c, place.ErrInvalidInput)
	}
	imageRef, err := h.uploads.Save(fh)
	if err != nil {
		return presenter.FromError(c, err)
	}

	p, err := h.uc.Create(c.Context(), uid, c.FormValue("title"), c.FormValue("description"),
		place.Location{Lat: lat, Lng: lng}, c.FormValue("address"), imageRef)
	if err != nil {
		if rmErr := h.uploads.Remove(imageRef); rmErr != nil {
			log.Printf("discard staged upload %s: %v", imageRef, rmErr)
		}
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, fiber.Map{"data": toPlaceResponse(p)})
}

// GetByID returns a single place.
// @Summary Get place by id
// @Tags    places
// @Produce json
// @Param   id path string true "place id (UUID)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /places/{id} [get]
func (h *PlaceHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.FromError(c, place.ErrNotFound)
	}
	p, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"data": toPlaceResponse(p)})
}

// ListByUser returns all places created by one user.
// @Summary List places by user
// @Tags    places
// @Produce json
// @Param   id path string true "user id (UUID)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /places/user/{id} [get]
func (h *PlaceHandler) ListByUser(c *fiber.Ctx) error {
	const notFoundMsg = "Could not find a place for the provided user id."
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, notFoundMsg)
	}
	places, err := h.uc.ListByCreator(c.Context(), id)
	if err != nil {
		if errors.Is(err, place.ErrNotFound) {
			return presenter.Error(c, http.StatusNotFound, notFoundMsg)
		}
		return presenter.FromError(c, err)
	}
	data := make([]placeResponse, 0, len(places))
	for _, p := range places {
		data = append(data, toPlaceResponse(p))
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"data": data})
}

type updatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update changes title/description of an owned place.
// @Summary Update place
// @Tags    places
// @Accept  json
// @Produce json
// @Param   id path string true "place id (UUID)"
// @Param   input body updatePlaceRequest true "fields to update"
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 422 {object} presenter.ErrorResponse
// @Router  /places/{id} [patch]
func (h *PlaceHandler) Update(c *fiber.Ctx) error {
	uid, err := identityFrom(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "Authentication failed")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.FromError(c, place.ErrNotFound)
	}
	var req updatePlaceRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.FromError(c, place.ErrInvalidInput)
	}
	p, err := h.uc.Update(c.Context(), uid, id, req.Title, req.Description)
	if err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"data": toPlaceResponse(p)})
}

// Delete removes an owned place together with its PlaceIDs entry.
// @Summary Delete place
// @Tags    places
// @Produce json
// @Param   id path string true "place id (UUID)"
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 403 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /places/{id} [delete]
func (h *PlaceHandler) Delete(c *fiber.Ctx) error {
	uid, err := identityFrom(c)
	if err != nil {
		return presenter.Error(c, http.StatusForbidden, "Authentication failed")
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.FromError(c, place.ErrNotFound)
	}
	if err := h.uc.Delete(c.Context(), uid, id); err != nil {
		return presenter.FromError(c, err)
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"message": "Deleted place"})
}
