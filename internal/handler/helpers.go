package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func parseQueryInt(c *fiber.Ctx, key string, fallback int) int {
	value := c.Query(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

func parseQueryBool(c *fiber.Ctx, key string, fallback bool) bool {
	value := strings.ToLower(c.Query(key))
	switch value {
	case "":
		return fallback
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

func parseFormBool(c *fiber.Ctx, key string) *bool {
	value := strings.ToLower(strings.TrimSpace(c.FormValue(key)))
	if value == "" {
		return nil
	}
	result := value == "1" || value == "true" || value == "yes"
	return &result
}
