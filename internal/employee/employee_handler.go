package employee

import (
	"net/http"
	"strconv"

	employeeerrors "go-employee-mgmt/internal/employee/errors"
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
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: s, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	fields := []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	}
	if httpErr.Status >= http.StatusInternalServerError {
		h.logger.Error("employee request failed", append(fields, zap.Error(err))...)
	} else {
		h.logger.Warn("employee request failed", fields...)
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	h.logger.Debug("employee request validation failed", zap.Error(err))
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
}

func parseEmployeeID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, employeeerrors.ErrInvalidEmployeeID
	}
	return id, nil
}

func (h *Handler) GetAll(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	resp, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) GetById(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	employeeID, err := parseEmployeeID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), id, employeeID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) GetByUser(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	resp, err := h.service.GetByOwner(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Create(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	employeeID, err := parseEmployeeID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), id, employeeID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	employeeID, err := parseEmployeeID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, employeeID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Employee deleted successfully")
}

func (h *Handler) CompleteProfile(c *gin.Context) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		h.writeServiceError(c, apperror.ErrUnauthorized)
		return
	}

	var req EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, err)
		return
	}

	resp, err := h.service.CompleteProfile(c.Request.Context(), id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp)
}
