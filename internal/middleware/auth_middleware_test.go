package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/auth/token"
	"go-employee-mgmt/internal/middleware"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/contextutil"
	"go-employee-mgmt/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuthenticator struct {
	claims *token.Claims
	err    error
	gotRaw string
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, raw string) (*token.Claims, error) {
	f.gotRaw = raw
	return f.claims, f.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handlers...)
	return r
}

func doGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := token.NewManager("secret", time.Hour)
	raw, _ := tokens.Issue(42, rbac.RoleEmployee)
	claims, _ := tokens.Parse(raw)

	t.Run("Valid Token Sets Identity", func(t *testing.T) {
		authn := &fakeAuthenticator{claims: claims}
		var gotID rbac.Identity
		var ctxUserID int64
		r := newRouter(middleware.AuthMiddleware(authn), func(c *gin.Context) {
			gotID, _ = middleware.CurrentIdentity(c)
			ctxUserID = contextutil.GetUserID(c.Request.Context())
			c.Status(http.StatusNoContent)
		})

		w := doGet(r, "Bearer "+raw)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, raw, authn.gotRaw)
		assert.Equal(t, rbac.Identity{UserID: 42, Role: rbac.RoleEmployee}, gotID)
		assert.Equal(t, int64(42), ctxUserID)
	})

	t.Run("Missing Header", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware(&fakeAuthenticator{}), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := doGet(r, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body response.ErrorBody
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, autherrors.ErrTokenMissing.Message, body.Error)
	})

	t.Run("Wrong Scheme", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware(&fakeAuthenticator{}), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := doGet(r, "Basic abc")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Expired Token", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware(&fakeAuthenticator{err: autherrors.ErrTokenExpired}), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := doGet(r, "Bearer stale")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body response.ErrorBody
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, autherrors.ErrTokenExpired.Message, body.Error)
	})

	t.Run("Revocation Store Unavailable", func(t *testing.T) {
		r := newRouter(middleware.AuthMiddleware(&fakeAuthenticator{err: autherrors.ErrTokenCheckUnavailable}), func(c *gin.Context) {
			t.Fatal("handler must not run")
		})

		w := doGet(r, "Bearer "+raw)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
