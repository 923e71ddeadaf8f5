// Package middleware provides the HTTP middleware of the dashboard API.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
)

// ErrorBody is the JSON body of every error response. Detail carries the
// human-readable message.
type ErrorBody struct {
	Detail      string                 `json:"detail"`
	Code        string                 `json:"code"`
	FieldErrors []apperrors.FieldError `json:"field_errors,omitempty"`
}

// ErrorHandler renders the last error a handler added with c.Error.
// Binding failures become 422s; anything that is not an AppError is a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		appErr := toAppError(last)
		if appErr == nil {
			logger.Error("Unhandled request error",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.Error(last.Err),
			)
			c.JSON(http.StatusInternalServerError, ErrorBody{
				Detail: "An internal error occurred",
				Code:   apperrors.CodeInternal,
			})
			return
		}

		fields := []zap.Field{
			zap.String("code", appErr.Code),
			zap.Int("status", appErr.HTTPStatus),
			zap.String("path", c.Request.URL.Path),
		}
		if appErr.Err != nil {
			fields = append(fields, zap.Error(appErr.Err))
		}
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			logger.Error(appErr.Message, fields...)
		} else {
			logger.Warn(appErr.Message, fields...)
		}

		c.JSON(appErr.HTTPStatus, ErrorBody{
			Detail:      appErr.Message,
			Code:        appErr.Code,
			FieldErrors: appErr.FieldErrors,
		})
	}
}

func toAppError(e *gin.Error) *apperrors.AppError {
	if appErr, ok := apperrors.IsAppError(e.Err); ok {
		return appErr
	}
	var verrs validator.ValidationErrors
	if errors.As(e.Err, &verrs) {
		return BindingError(verrs)
	}
	if e.IsType(gin.ErrorTypeBind) {
		return apperrors.Validation(apperrors.CodeValidationFailed, "Malformed request body").
			WithParams(map[string]interface{}{"reason": e.Err.Error()})
	}
	return nil
}

// BindingError converts validator failures into a 422 with one FieldError
// per rejected field.
func BindingError(verrs validator.ValidationErrors) *apperrors.AppError {
	fieldErrors := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, apperrors.FieldError{
			Field:   fe.Field(),
			Code:    fe.Tag(),
			Message: fe.Error(),
		})
	}
	return apperrors.Validation(apperrors.CodeValidationFailed, "Request validation failed").
		WithFieldErrors(fieldErrors)
}

// Fail records err for ErrorHandler and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
