package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/mktud1/arq503/internal/pkg/errors"
)

// Response is the unified JSON envelope
type Response struct {
	Code    int         `json:"code"` // business code, 0 on success
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// Success sends a 200 with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// Created sends a 201 with data
func Created(c *gin.Context, data interface{}) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusCreated, Response{
		Code: apperrors.Success,
		Data: data,
	})
}

// BadRequest sends a 400 with a message
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    apperrors.ErrBadRequest,
		Message: message,
		Data:    struct{}{},
	})
}

// NotFound sends a 404 with a message
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:    apperrors.ErrNotFound,
		Message: message,
		Data:    struct{}{},
	})
}

// AppError sends the HTTP status, code and details carried by an AppError.
// Non-AppError values map to a plain 500.
func AppError(c *gin.Context, err error) {
	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.GetMessage(code),
		Data:    gin.H{"details": apperrors.GetDetails(err)},
	})
}
