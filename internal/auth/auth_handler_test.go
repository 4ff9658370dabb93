package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-employee-mgmt/internal/auth"
	autherrors "go-employee-mgmt/internal/auth/errors"
	authMock "go-employee-mgmt/internal/auth/mock"
	"go-employee-mgmt/internal/auth/token"
	"go-employee-mgmt/internal/middleware"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		router.POST("/register", auth.NewHandler(mockService).Register)

		reqBody := auth.RegisterRequest{Email: "new@example.com", Password: "password123"}
		mockService.EXPECT().
			Register(gomock.Any(), reqBody).
			Return(auth.TokenResponse{Token: "signed"}, nil)

		w := postJSON(router, "/register", reqBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		var res auth.TokenResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "signed", res.Token)
	})

	t.Run("Validation Error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		router.POST("/register", auth.NewHandler(mockService).Register)

		w := postJSON(router, "/register", map[string]string{"email": "invalid-email"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var res response.ErrorBody
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "VALIDATION_ERROR", res.Code)
	})

	t.Run("Email Already Exists", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		router.POST("/register", auth.NewHandler(mockService).Register)

		mockService.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(auth.TokenResponse{}, autherrors.ErrEmailAlreadyRegistered)

		w := postJSON(router, "/register", auth.RegisterRequest{Email: "dup@example.com", Password: "password123"})

		assert.Equal(t, http.StatusConflict, w.Code)
		var res response.ErrorBody
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "CONFLICT", res.Code)
	})
}

func TestHandler_RegisterPasswordByteLimit(t *testing.T) {
	deps := newAuthDeps(t)
	router := setupAuthRouter()
	router.POST("/register", auth.NewHandler(deps.service).Register)

	w := postJSON(router, "/register", auth.RegisterRequest{
		Email:    "long@example.com",
		Password: strings.Repeat("é", 40),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var res response.ErrorBody
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "VALIDATION_ERROR", res.Code)
	assert.Equal(t, autherrors.ErrPasswordTooLong.Message, res.Error)
}

func TestHandler_Login(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		router.POST("/login", auth.NewHandler(mockService).Login)

		mockService.EXPECT().
			Login(gomock.Any(), auth.LoginRequest{Email: "a@example.com", Password: "pw"}).
			Return(auth.TokenResponse{Token: "signed"}, nil)

		w := postJSON(router, "/login", auth.LoginRequest{Email: "a@example.com", Password: "pw"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"token":"signed"}`, w.Body.String())
	})

	t.Run("Invalid Credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		router.POST("/login", auth.NewHandler(mockService).Login)

		mockService.EXPECT().
			Login(gomock.Any(), gomock.Any()).
			Return(auth.TokenResponse{}, autherrors.ErrInvalidCredentials)

		w := postJSON(router, "/login", auth.LoginRequest{Email: "a@example.com", Password: "bad"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_MeAndLogout(t *testing.T) {
	tokens := token.NewManager(testSecret, time.Hour)
	raw, _ := tokens.Issue(9, rbac.RoleEmployee)
	claims, _ := tokens.Parse(raw)

	newRouter := func(t *testing.T) (*gin.Engine, *authMock.MockService) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		router := setupAuthRouter()
		auth.RegisterRoutes(router.Group("/api"), auth.NewHandler(mockService), mockService)
		return router, mockService
	}

	t.Run("Me Success", func(t *testing.T) {
		router, mockService := newRouter(t)
		mockService.EXPECT().Authenticate(gomock.Any(), raw).Return(claims, nil)
		mockService.EXPECT().Me(gomock.Any(), int64(9)).Return(auth.MeResponse{ID: 9, Email: "e@example.com", Role: "employee"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":9,"email":"e@example.com","role":"employee"}`, w.Body.String())
	})

	t.Run("Me Without Token", func(t *testing.T) {
		router, _ := newRouter(t)

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Logout Success", func(t *testing.T) {
		router, mockService := newRouter(t)
		mockService.EXPECT().Authenticate(gomock.Any(), raw).Return(claims, nil)
		mockService.EXPECT().Logout(gomock.Any(), claims).Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Logged out"}`, w.Body.String())
	})
}

var _ middleware.TokenAuthenticator = (auth.Service)(nil)
