package utils

import "report-console/internal/models"

// NewErrorDetail builds the structured error body every API error carries.
// The detail message is what clients surface to the user.
func NewErrorDetail(detail string) models.ErrorResponse {
	return models.ErrorResponse{Detail: detail}
}

// NewMessage builds the ack body returned by mutation endpoints.
func NewMessage(message string) models.MessageResponse {
	return models.MessageResponse{Message: message}
}
