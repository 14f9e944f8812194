// internal/handler/params.go
package handler

import (
	"sort"

	"github.com/gin-gonic/gin"

	"receipt-bridge/internal/model"
	"receipt-bridge/pkg/printerr"
)

// roleParam reads ?role=, defaulting to the receipt printer
func roleParam(c *gin.Context, fallback string) (model.Role, error) {
	raw := c.Query("role")
	if raw == "" {
		raw = fallback
	}
	role, err := model.ParseRole(raw)
	if err != nil {
		return "", printerr.Wrap(printerr.CodeValidation, err, err.Error())
	}
	return role, nil
}

func sortedStrings(values []string) []string {
	sort.Strings(values)
	return values
}
