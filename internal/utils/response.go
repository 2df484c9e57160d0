package utils

import "github.com/gofiber/fiber/v2"

// APIResponse describes the common structure for API responses. Error
// responses always carry a stable machine-readable code alongside the
// human-readable message; validation failures additionally attach a
// field-to-messages map in Details.
type APIResponse struct {
	Success bool        `json:"success"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PageMeta carries pagination metadata for list responses.
type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// SendSuccess sends a successful JSON response with a message.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithMeta(c, fiber.StatusOK, message, data, nil)
}

// SendSuccessWithMeta sends a success payload with optional metadata using the
// provided HTTP status code.
func SendSuccessWithMeta(c *fiber.Ctx, status int, message string, data interface{}, meta interface{}) error {
	if message == "" {
		message = "success"
	}
	if status == 0 {
		status = fiber.StatusOK
	}

	return c.Status(status).JSON(APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

// SendError sends an error JSON response with the given status and machine code.
func SendError(c *fiber.Ctx, status int, code, message string) error {
	return SendErrorWithDetails(c, status, code, message, nil)
}

// SendErrorWithDetails sends an error response carrying structured detail,
// typically a field-to-messages map produced by request validation.
func SendErrorWithDetails(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(APIResponse{
		Success: false,
		Code:    code,
		Message: message,
		Details: details,
	})
}
