package middleware

import (
	"context"
	"strings"

	autherrors "go-employee-mgmt/internal/auth/errors"
	"go-employee-mgmt/internal/auth/token"
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/contextutil"
	"go-employee-mgmt/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CtxClaims = "claims"
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// TokenAuthenticator validates a raw bearer token. Implemented by auth.Service.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*token.Claims, error)
}

func AuthMiddleware(authn TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			abortWithError(c, autherrors.ErrTokenMissing)
			return
		}

		claims, err := authn.Authenticate(c.Request.Context(), raw)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(CtxClaims, claims)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, string(claims.Role))

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, zap.L()).With(zap.Int64("user_id", claims.UserID)))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// CurrentClaims returns the claims stored by AuthMiddleware.
func CurrentClaims(c *gin.Context) (*token.Claims, bool) {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.Claims)
	return claims, ok && claims != nil
}

// CurrentIdentity returns the authenticated caller as a policy subject.
func CurrentIdentity(c *gin.Context) (rbac.Identity, bool) {
	claims, ok := CurrentClaims(c)
	if !ok {
		return rbac.Identity{}, false
	}
	return claims.Identity(), true
}

func abortWithError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Abort(c, httpErr.Status, httpErr.Code, httpErr.Message)
}
