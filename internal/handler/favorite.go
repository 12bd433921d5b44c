package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-dashboard/internal/middleware"
	"github.com/iliyamo/weather-dashboard/internal/model"
	"github.com/iliyamo/weather-dashboard/internal/queue"
	"github.com/iliyamo/weather-dashboard/internal/repository"
)

// FavoriteStore is the subset of the favorite repository the handlers need.
type FavoriteStore interface {
	Create(ctx context.Context, userID uint64, city string, country *string, lat, lon *float64) (model.FavoriteCity, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.FavoriteCity, error)
	DeleteOwned(ctx context.Context, id, userID uint64) (int64, error)
}

// EventPublisher emits analytics events. A nil publisher disables events
// entirely (tests, broker-less deployments).
type EventPublisher interface {
	FavoriteAdded(ctx context.Context, event queue.FavoriteAddedEvent) error
}

// FavoriteHandler serves the favorite-city CRUD endpoints. All routes sit
// behind the session middleware, so a user ID is always present in context.
type FavoriteHandler struct {
	Favorites FavoriteStore
	Events    EventPublisher
}

func NewFavoriteHandler(favorites FavoriteStore, events EventPublisher) *FavoriteHandler {
	return &FavoriteHandler{Favorites: favorites, Events: events}
}

type addFavoriteReq struct {
	City    string   `json:"city" validate:"required,min=1,max=100"`
	Country *string  `json:"country" validate:"omitempty,max=10"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// List returns the caller's favorites, newest first.
func (h *FavoriteHandler) List(c echo.Context) error {
	uid := middleware.CurrentUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	favorites, err := h.Favorites.ListByUser(ctx, uid)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "load favorites failed")
	}
	return respond(c, http.StatusOK, favorites)
}

// Add pins a city for the caller. Duplicate city names (case-insensitive)
// for the same user are rejected with 409.
func (h *FavoriteHandler) Add(c echo.Context) error {
	uid := middleware.CurrentUserID(c)

	var req addFavoriteReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.City = strings.TrimSpace(req.City)
	if err := validate.Struct(req); err != nil {
		return respondDetails(c, http.StatusBadRequest, "validation failed", fieldErrors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	fav, err := h.Favorites.Create(ctx, uid, req.City, req.Country, req.Lat, req.Lon)
	if err != nil {
		if err == repository.ErrDuplicateCity {
			return respondErr(c, http.StatusConflict, "city already in favorites")
		}
		return respondErr(c, http.StatusInternalServerError, "save favorite failed")
	}

	if h.Events != nil {
		// Best effort; the favorite is already saved.
		_ = h.Events.FavoriteAdded(ctx, queue.FavoriteAddedEvent{
			FavoriteID: fav.ID,
			UserID:     uid,
			City:       fav.City,
			Country:    fav.Country,
			AddedAt:    fav.CreatedAt.Format(time.RFC3339),
		})
	}
	return respond(c, http.StatusCreated, fav)
}

// Delete removes one of the caller's favorites by id. Deleting a favorite
// owned by someone else (or one that never existed) is a zero-row no-op and
// still answers 200, so the response cannot confirm foreign rows.
func (h *FavoriteHandler) Delete(c echo.Context) error {
	uid := middleware.CurrentUserID(c)

	idStr := c.QueryParam("id")
	if idStr == "" {
		return respondErr(c, http.StatusBadRequest, "id required")
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Favorites.DeleteOwned(ctx, id, uid); err != nil {
		return respondErr(c, http.StatusInternalServerError, "delete favorite failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "removed from favorites"})
}
