package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/prison-staff-admin/internal/application"
	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	"github.com/oksasatya/prison-staff-admin/internal/interface/middleware"
	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init(nil)
}

type stubAccounts struct {
	actor  entity.Actor
	role   string
	id     string
	fields map[string]string
	search string
	page   int
	user   *entity.User
	err    error
}

func (s *stubAccounts) Create(_ context.Context, a entity.Actor, role string, f map[string]string) (*entity.User, string, error) {
	s.actor, s.role, s.fields = a, role, f
	return s.user, application.StatusMessage(role, "created"), s.err
}

func (s *stubAccounts) Update(_ context.Context, a entity.Actor, role, id string, f map[string]string) (*entity.User, string, error) {
	s.actor, s.role, s.id, s.fields = a, role, id, f
	return s.user, application.StatusMessage(role, "updated"), s.err
}

func (s *stubAccounts) ToggleStatus(_ context.Context, a entity.Actor, role, id string) (*entity.User, string, error) {
	s.actor, s.role, s.id = a, role, id
	return s.user, application.StatusMessage(role, "inactivated"), s.err
}

func (s *stubAccounts) ResetCredentials(_ context.Context, a entity.Actor, role, id string) (*entity.User, string, error) {
	s.actor, s.role, s.id = a, role, id
	return s.user, application.StatusMessage(role, "credentials reset"), s.err
}

func (s *stubAccounts) Get(_ context.Context, a entity.Actor, role, id string) (*entity.User, error) {
	s.actor, s.role, s.id = a, role, id
	return s.user, s.err
}

func (s *stubAccounts) List(_ context.Context, a entity.Actor, role, search string, page int) (application.Page[entity.User], error) {
	s.actor, s.role, s.search, s.page = a, role, search, page
	if s.err != nil {
		return application.Page[entity.User]{}, s.err
	}
	return application.Page[entity.User]{Items: []entity.User{*s.user}, Page: page, PerPage: 5, Total: 6, LastPage: 2}, nil
}

func (s *stubAccounts) Search(_ context.Context, a entity.Actor, role, q string, _ int) ([]map[string]any, error) {
	s.actor, s.role, s.search = a, role, q
	return []map[string]any{{"username": s.user.Username}}, s.err
}

func ana() *entity.User {
	return &entity.User{
		ID: "u-1", RoleName: entity.RoleDirector, FirstName: "Ana", LastName: "Ruiz", Username: "aruiz01",
		Email: "ana@x.com", Birthdate: "1995-03-15", Password: "$2a$10$secret", State: true,
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   map[string]any  `json:"error"`
}

func accountRouter(svc AccountManager) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxUserID, "admin-1")
		c.Set(middleware.CtxUserName, "root")
		c.Set(middleware.CtxUserRole, entity.RoleAdmin)
	})
	h := NewAccountHandler(svc, entity.RoleDirector, nil)
	g := r.Group("/api/directors")
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.ToggleStatus)
	g.POST("/:id/credentials", h.ResetCredentials)
	return r
}

func serve(t *testing.T, r http.Handler, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestAccountHandler_Create(t *testing.T) {
	svc := &stubAccounts{user: ana()}
	code, env := serve(t, accountRouter(svc), http.MethodPost, "/api/directors",
		`{"first_name":"Ana","last_name":"Ruiz","username":"aruiz01","email":"ana@x.com","birthdate":"15/03/1995","personal_phone":"0991234567","home_phone":"022345678","address":"Av. Central 123"}`)

	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Director created successfully", env.Message)
	assert.Equal(t, entity.Actor{UserID: "admin-1", Username: "root", Role: entity.RoleAdmin}, svc.actor)
	assert.Equal(t, entity.RoleDirector, svc.role)
	assert.Equal(t, "15/03/1995", svc.fields[application.FieldBirthdate])

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "15/03/1995", data["birthdate"])
	assert.Equal(t, "active", data["status"])
	assert.NotContains(t, data, "password")
}

func TestAccountHandler_InvalidJSON(t *testing.T) {
	code, env := serve(t, accountRouter(&stubAccounts{user: ana()}), http.MethodPost, "/api/directors", `{"home_phone": 22345678}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid json", env.Error["payload"])
}

func TestAccountHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{&validation.ValidationError{Fields: []validation.FieldError{{Field: "email", Tag: "email", Message: "must be a valid email"}}}, http.StatusUnprocessableEntity},
		{application.ErrForbidden, http.StatusForbidden},
		{application.ErrUserNotFound, http.StatusNotFound},
		{application.ErrUserInactive, http.StatusConflict},
		{errors.New("pool closed"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &stubAccounts{user: ana(), err: tc.err}
			code, env := serve(t, accountRouter(svc), http.MethodPut, "/api/directors/u-1", `{"first_name":"Ana"}`)
			assert.Equal(t, tc.code, code)
			assert.False(t, env.Success)
			assert.NotContains(t, env.Message, "pool closed")
		})
	}

	svc := &stubAccounts{err: &validation.ValidationError{Fields: []validation.FieldError{{Field: "email", Message: "has already been taken"}}}}
	_, env := serve(t, accountRouter(svc), http.MethodPost, "/api/directors", `{}`)
	assert.Equal(t, "has already been taken", env.Error["email"])
}

func TestAccountHandler_ListAndMembers(t *testing.T) {
	svc := &stubAccounts{user: ana()}
	r := accountRouter(svc)

	code, env := serve(t, r, http.MethodGet, "/api/directors?search=ruiz&page=2", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ruiz", svc.search)
	assert.Equal(t, 2, svc.page)
	assert.Equal(t, float64(2), env.Meta["last_page"])

	code, env = serve(t, r, http.MethodDelete, "/api/directors/u-1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "u-1", svc.id)
	assert.Equal(t, "Director inactivated successfully", env.Message)

	code, env = serve(t, r, http.MethodPost, "/api/directors/u-1/credentials", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Director credentials reset successfully", env.Message)

	code, _ = serve(t, r, http.MethodGet, "/api/directors/u-1", "")
	assert.Equal(t, http.StatusOK, code)

	code, env = serve(t, r, http.MethodGet, "/api/directors/search?q=aruiz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "aruiz", svc.search)
	assert.Equal(t, float64(1), env.Meta["count"])
}

type stubAuth struct {
	loggedOut string
	err       error
}

func (s *stubAuth) Login(_ context.Context, login, password string) (*application.LoginResponse, application.TokenPair, error) {
	if s.err != nil || password != "s3cr3t!!" {
		return nil, application.TokenPair{}, application.ErrInvalidCredentials
	}
	exp := time.Now().Add(time.Hour)
	return &application.LoginResponse{UserID: "u-1", Username: login}, application.TokenPair{
		AccessToken: "access", AccessTokenExpiry: exp, RefreshToken: "refresh", RefreshTokenExpiry: exp,
	}, nil
}

func (s *stubAuth) Refresh(_ context.Context, token string) (application.TokenPair, string, error) {
	if token != "refresh" {
		return application.TokenPair{}, "", application.ErrInvalidCredentials
	}
	exp := time.Now().Add(time.Hour)
	return application.TokenPair{AccessToken: "access2", AccessTokenExpiry: exp, RefreshToken: "refresh2", RefreshTokenExpiry: exp}, "u-1", nil
}

func (s *stubAuth) Logout(_ context.Context, userID string) error {
	s.loggedOut = userID
	return nil
}

func (s *stubAuth) Profile(_ context.Context, userID string) (*entity.User, error) {
	if userID != "u-1" {
		return nil, application.ErrUserNotFound
	}
	return ana(), nil
}

func authRouter(svc Authenticator) *gin.Engine {
	r := gin.New()
	h := NewAuthHandler(svc, nil, "localhost", false)
	r.POST("/api/login", h.Login)
	r.POST("/api/refresh", h.Refresh)
	withUser := func(c *gin.Context) { c.Set(middleware.CtxUserID, c.GetHeader("X-Test-User")) }
	r.POST("/api/logout", withUser, h.Logout)
	r.GET("/api/profile", withUser, h.Profile)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	r := authRouter(&stubAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"login":"aruiz01","password":"s3cr3t!!"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := map[string]string{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck.Value
	}
	assert.Equal(t, "access", cookies[helpers.AccessCookie])
	assert.Equal(t, "refresh", cookies[helpers.RefreshCookie])

	code, _ := serve(t, r, http.MethodPost, "/api/login", `{"login":"aruiz01","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := serve(t, r, http.MethodPost, "/api/login", `{"login":"ab","password":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "must be between 3 and 255 characters long", env.Error["login"])
}

func TestAuthHandler_Refresh(t *testing.T) {
	r := authRouter(&stubAuth{})

	code, _ := serve(t, r, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.AddCookie(&http.Cookie{Name: helpers.RefreshCookie, Value: "refresh"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_LogoutAndProfile(t *testing.T) {
	svc := &stubAuth{}
	r := authRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.Header.Set("X-Test-User", "u-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", svc.loggedOut)

	req = httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("X-Test-User", "u-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")

	code, _ := serve(t, r, http.MethodGet, "/api/profile", "")
	assert.Equal(t, http.StatusNotFound, code)
}
