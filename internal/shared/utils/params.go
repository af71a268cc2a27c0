package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scoutystream/scouty/internal/shared/errors"
)

// UserAddressHeader carries the caller's wallet address when it is not
// passed as a query parameter.
const UserAddressHeader = "X-User-Address"

// ParseAssetIDParam parses a positive numeric asset id from a path parameter.
func ParseAssetIDParam(c *gin.Context, paramName string) (uint64, error) {
	raw := c.Param(paramName)
	if raw == "" {
		return 0, errors.NewValidationError("asset ID is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.NewValidationError("invalid asset ID", fmt.Sprintf("%s must be a positive integer", paramName))
	}
	return id, nil
}

// CallerAddress returns the wallet address from the address query parameter
// or the X-User-Address header. The value is not normalised.
func CallerAddress(c *gin.Context) string {
	if addr := strings.TrimSpace(c.Query("address")); addr != "" {
		return addr
	}
	return strings.TrimSpace(c.GetHeader(UserAddressHeader))
}
