package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/muchtodo/taskapi/internal/apperror"
	"github.com/muchtodo/taskapi/internal/logger"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Task not found"`
}

type baseHandler struct {
	logger *zap.Logger
}

func newBaseHandler(l *zap.Logger) baseHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return baseHandler{logger: l}
}

func (h baseHandler) log(c *gin.Context) *zap.Logger {
	return logger.WithRequestID(c.Request.Context(), h.logger)
}

func (h baseHandler) respondError(c *gin.Context, op string, err error) {
	status := apperror.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("op", op),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= 500 {
		h.log(c).Error("request failed", fields...)
	} else {
		h.log(c).Warn("request rejected", fields...)
	}
	c.JSON(status, ErrorResponse{Detail: apperror.Message(err)})
}

func (h baseHandler) respondInvalidInput(c *gin.Context, op string, err error) {
	h.respondError(c, op, apperror.New(apperror.CodeInvalidInput, err.Error()))
}
