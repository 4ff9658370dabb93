package auth

import (
	"net/http"

	"go-employee-mgmt/internal/middleware"
	"go-employee-mgmt/internal/shared/apperror"
	"go-employee-mgmt/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("auth request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", httpErr.Status),
			zap.Error(err),
		)
	} else {
		h.logger.Warn("auth request rejected",
			zap.String("path", c.FullPath()),
			zap.Int("status", httpErr.Status),
			zap.String("code", httpErr.Code),
		)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	res, err := h.service.Me(c.Request.Context(), id.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Logged out")
}
