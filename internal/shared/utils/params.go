package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseUintParam parses a positive integer path parameter.
func ParseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s parameter: %q", name, raw)
	}
	return uint(value), nil
}

// QueryInt reads an integer query parameter, falling back to a default.
func QueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
