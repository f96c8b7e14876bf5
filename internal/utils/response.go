package utils

import "github.com/gofiber/fiber/v2"

// Error kinds surfaced to API clients.
const (
	KindNotFound         = "not_found"
	KindConflict         = "conflict"
	KindUnauthorized     = "unauthorized"
	KindActivityDisabled = "activity_disabled"
	KindValidation       = "validation_error"
	KindInternal         = "internal_error"
)

// ErrorDetail carries the failure kind and the offending key so a client can
// tell "nothing happened" apart from "wrong target".
type ErrorDetail struct {
	Kind string `json:"kind"`
	Key  string `json:"key,omitempty"`
}

// APIResponse describes the common structure for API responses.
type APIResponse struct {
	Success bool         `json:"success"`
	Data    interface{}  `json:"data,omitempty"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus sends a success payload using the provided HTTP status code.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return SendFailure(c, status, "", "", message)
}

// SendFailure sends a typed error response carrying the failure kind and the
// offending key.
func SendFailure(c *fiber.Ctx, status int, kind, key, message string) error {
	if message == "" {
		message = "error"
	}

	response := APIResponse{
		Success: false,
		Message: message,
	}
	if kind != "" {
		response.Error = &ErrorDetail{Kind: kind, Key: key}
	}

	return c.Status(status).JSON(response)
}
