package request

import (
	"fmt"
	"strconv"
	"strings"

	"staybook/internal/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("INVALID_ID", fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}

// IsMultipart reports whether the request body is multipart/form-data.
func IsMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// BindJSON binds the body into dst and reports malformed input as a
// validation error.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validation("INVALID_REQUEST", "Invalid request body").
			WithDetails(gin.H{"reason": err.Error()})
	}
	return nil
}

// FormInt parses an optional integer form value. ok is false when the
// field is absent.
func FormInt(c *gin.Context, field string) (v *int, ok bool, err error) {
	raw, present := c.GetPostForm(field)
	if !present {
		return nil, false, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true, nil
	}
	n, convErr := strconv.Atoi(raw)
	if convErr != nil {
		return nil, true, fieldError(field, "must be an integer")
	}
	return &n, true, nil
}

// FormFloat parses an optional decimal form value.
func FormFloat(c *gin.Context, field string) (v *float64, ok bool, err error) {
	raw, present := c.GetPostForm(field)
	if !present {
		return nil, false, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true, nil
	}
	n, convErr := strconv.ParseFloat(raw, 64)
	if convErr != nil {
		return nil, true, fieldError(field, "must be a number")
	}
	return &n, true, nil
}

// FormString returns a form value and whether it was sent.
func FormString(c *gin.Context, field string) (*string, bool) {
	raw, present := c.GetPostForm(field)
	if !present {
		return nil, false
	}
	return &raw, true
}

// QueryInt parses an optional integer query parameter, ignoring bad input.
func QueryInt(c *gin.Context, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func QueryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &n
}

func fieldError(field, msg string) error {
	return apperr.Validation("VALIDATION_ERROR", field+" "+msg).
		WithDetails(map[string]string{"field": field})
}
