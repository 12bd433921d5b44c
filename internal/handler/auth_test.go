package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/weather-dashboard/internal/config"
	"github.com/iliyamo/weather-dashboard/internal/middleware"
	"github.com/iliyamo/weather-dashboard/internal/model"
	"github.com/iliyamo/weather-dashboard/internal/repository"
	"github.com/iliyamo/weather-dashboard/internal/utils"
)

// fakeUserStore keeps users in a map, hashing passwords like the real
// repository so signin verification works against it.
type fakeUserStore struct {
	users  map[string]model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, name, email, password string, cost int) (uint64, error) {
	if _, ok := f.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	f.nextID++
	f.users[email] = model.User{
		ID: f.nextID, Name: name, Email: email,
		PasswordHash: hash, CreatedAt: time.Now().UTC(),
	}
	return f.nextID, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, sql.ErrNoRows
}

func testCfg() config.Config {
	return config.Config{
		Env:            "test",
		JWTSecret:      "test-secret",
		SessionTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
}

// doJSON runs one handler against a JSON request and returns the recorder.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, h(c))
	return rec
}

const validSignup = `{"name":"Ada Lovelace","email":"ada@example.com","password":"Secret123","confirmPassword":"Secret123"}`

func TestSignupSuccess(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", validSignup, nil)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		User    struct {
			ID    uint64 `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "ada@example.com", resp.User.Email)

	// The password must never appear in any response.
	require.NotContains(t, rec.Body.String(), "password")
	require.NotContains(t, rec.Body.String(), "Secret123")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	require.True(t, cookies[0].HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	require.NotEmpty(t, cookies[0].Value)
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"password without uppercase", `{"name":"Ada","email":"a@b.co","password":"secret123","confirmPassword":"secret123"}`, "password"},
		{"password without digit", `{"name":"Ada","email":"a@b.co","password":"SecretPass","confirmPassword":"SecretPass"}`, "password"},
		{"password too short", `{"name":"Ada","email":"a@b.co","password":"Sec1","confirmPassword":"Sec1"}`, "password"},
		{"mismatched confirmation", `{"name":"Ada","email":"a@b.co","password":"Secret123","confirmPassword":"Secret124"}`, "confirmpassword"},
		{"name too short", `{"name":"A","email":"a@b.co","password":"Secret123","confirmPassword":"Secret123"}`, "name"},
		{"invalid email", `{"name":"Ada","email":"not-an-email","password":"Secret123","confirmPassword":"Secret123"}`, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(testCfg(), newFakeUserStore())
			rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", tc.body, nil)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Details map[string]string `json:"details"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.Contains(t, resp.Details, tc.field)
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", validSignup, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", validSignup, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
}

// Unknown email and wrong password must be indistinguishable: same status,
// byte-identical body.
func TestSigninNoUserEnumeration(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", validSignup, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPass := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"ada@example.com","password":"WrongPass1"}`, nil)
	unknownUser := doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"nobody@example.com","password":"WrongPass1"}`, nil)

	require.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	require.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	require.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestSigninSuccess(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Signup, http.MethodPost, "/v1/auth/signup", validSignup, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.Signin, http.MethodPost, "/v1/auth/signin",
		`{"email":"ada@example.com","password":"Secret123"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestLogoutClearsCookie(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Logout, http.MethodPost, "/v1/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, middleware.SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestMe(t *testing.T) {
	store := newFakeUserStore()
	uid, err := store.Create(context.Background(), "Ada", "ada@example.com", "Secret123", bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAuthHandler(testCfg(), store)

	// Without a session the handler answers 401.
	rec := doJSON(t, h.Me, http.MethodGet, "/v1/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h.Me, http.MethodGet, "/v1/auth/me", "", func(c echo.Context) {
		c.Set("user_id", uid)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			ID        uint64 `json:"id"`
			Name      string `json:"name"`
			Email     string `json:"email"`
			CreatedAt string `json:"createdAt"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, uid, resp.Data.ID)
	require.Equal(t, "Ada", resp.Data.Name)
	require.NotEmpty(t, resp.Data.CreatedAt)
	require.NotContains(t, rec.Body.String(), "password")
}

func TestMeUnknownUser(t *testing.T) {
	h := NewAuthHandler(testCfg(), newFakeUserStore())
	rec := doJSON(t, h.Me, http.MethodGet, "/v1/auth/me", "", func(c echo.Context) {
		c.Set("user_id", uint64(999))
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
