package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
)

// Accepted layouts for date and datetime query parameters.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// bindJSON binds the request body into obj. On failure the error is queued
// for ErrorHandler and false is returned.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return false
	}
	return true
}

// limitParam reads ?limit, defaulting to repository.DefaultLimit and
// rejecting values outside [1, ceiling].
func limitParam(c *gin.Context, ceiling int) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return repository.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ErrInvalidQuery("limit", "must be an integer")
	}
	if n < 1 || n > ceiling {
		return 0, apperrors.ErrInvalidQuery("limit", "must be between 1 and "+strconv.Itoa(ceiling))
	}
	return n, nil
}

// timeParam reads an optional date or datetime parameter as UTC.
func timeParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidQuery(name, "expected a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

// boolParam reads an optional boolean parameter.
func boolParam(c *gin.Context, name string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.ErrInvalidQuery(name, "must be true or false")
	}
	return &v, nil
}

// enumParam reads an optional enumerated parameter. Empty means unset.
func enumParam[E domain.Enum](c *gin.Context, name string) (E, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", nil
	}
	v, err := domain.ParseEnum[E](name, raw)
	if err != nil {
		return "", apperrors.ErrInvalidEnum(name, raw)
	}
	return v, nil
}

// rangeParams reads start_date and end_date as a list filter window.
func rangeParams(c *gin.Context) (*domain.Window, error) {
	start, err := timeParam(c, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := timeParam(c, "end_date")
	if err != nil {
		return nil, err
	}
	return service.Range(start, end), nil
}

// windowParams reads the window of a summary endpoint: date, or
// start_date and end_date.
func windowParams(c *gin.Context) (service.WindowQuery, error) {
	var q service.WindowQuery
	var err error
	if q.Date, err = timeParam(c, "date"); err != nil {
		return q, err
	}
	if q.Start, err = timeParam(c, "start_date"); err != nil {
		return q, err
	}
	if q.End, err = timeParam(c, "end_date"); err != nil {
		return q, err
	}
	return q, nil
}

// uintParam reads a numeric path parameter.
func uintParam(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || n == 0 {
		return 0, apperrors.ErrInvalidQuery(name, "must be a positive integer")
	}
	return uint(n), nil
}
