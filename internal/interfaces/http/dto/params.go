// Package dto holds request/response shapes for the bot/admin HTTP surface
// and the small amount of binding/validation glue around them.
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/shared/errors"
)

// ParseUintParam parses a plain uint path parameter (this domain's ids are
// auto-increment integers, not the Stripe-style prefixed SIDs).
func ParseUintParam(c *gin.Context, paramName, entityName string) (uint, error) {
	raw := c.Param(paramName)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.NewBadRequestError("invalid "+entityName+" id", raw)
	}
	return uint(v), nil
}

// ParseUintQuery parses an optional uint query parameter, returning ok=false
// when absent.
func ParseUintQuery(c *gin.Context, name string) (value uint, ok bool, err error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}
	v, parseErr := strconv.ParseUint(raw, 10, 64)
	if parseErr != nil {
		return 0, false, errors.NewBadRequestError("invalid "+name, raw)
	}
	return uint(v), true, nil
}
