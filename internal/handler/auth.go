package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/weather-dashboard/internal/config"
	"github.com/iliyamo/weather-dashboard/internal/middleware"
	"github.com/iliyamo/weather-dashboard/internal/model"
	"github.com/iliyamo/weather-dashboard/internal/repository"
	"github.com/iliyamo/weather-dashboard/internal/utils"
)

// UserStore is the subset of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, name, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type signupReq struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=100,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}
type signinReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=100"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// genericSigninError is shared by the unknown-email and wrong-password paths
// so that responses cannot be used to probe which accounts exist.
const genericSigninError = "invalid email or password"

// Signup: validate, create the user and start a session immediately.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return respondDetails(c, http.StatusBadRequest, "validation failed", fieldErrors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return respondErr(c, http.StatusConflict, "an account with this email already exists")
		}
		return respondErr(c, http.StatusInternalServerError, "create user failed")
	}

	if err := h.startSession(c, uid, req.Email, req.Name); err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user":    userPart{ID: uid, Name: req.Name, Email: req.Email},
	})
}

// Signin: verify credentials and set the session cookie.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validate.Struct(req); err != nil {
		return respondDetails(c, http.StatusBadRequest, "validation failed", fieldErrors(err))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondErr(c, http.StatusUnauthorized, genericSigninError)
		}
		return respondErr(c, http.StatusInternalServerError, "query failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return respondErr(c, http.StatusUnauthorized, genericSigninError)
	}

	if err := h.startSession(c, u.ID, u.Email, u.Name); err != nil {
		return respondErr(c, http.StatusInternalServerError, "issue session failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user":    userPart{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

// Logout clears the session cookie. Sessions are stateless, so there is
// nothing to revoke server-side; a kept copy of the token stays valid until
// it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "signed out"})
}

// Me returns the caller's profile from the database rather than echoing the
// token claims, so a renamed account shows its current name.
func (h *AuthHandler) Me(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return respondErr(c, http.StatusUnauthorized, "unauthorized, please sign in")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return respondErr(c, http.StatusNotFound, "user not found")
		}
		return respondErr(c, http.StatusInternalServerError, "load user failed")
	}
	return respond(c, http.StatusOK, echo.Map{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
	})
}

func (h *AuthHandler) startSession(c echo.Context, uid uint64, email, name string) error {
	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret,
		utils.SessionClaims{UserID: uid, Email: email, Name: name},
		h.Cfg.SessionTTLDays)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tok.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   h.Cfg.SessionTTLDays * 24 * 60 * 60,
	})
	return nil
}
