package models

import (
	docmodels "github.com/YashDiwan-16/algorand-sub001/internal/document/models"
)

// HydratedRequest is a consent request with its document references resolved.
// Every read path returns this shape; raw id lists never leave the service.
type HydratedRequest struct {
	Request
	Documents []*docmodels.Document `json:"documents"`
}

// RequestDocuments summarizes the documents attached to a request.
type RequestDocuments struct {
	RequestID     string                `json:"requestId"`
	Status        Status                `json:"status"`
	DocumentCount int                   `json:"documentCount"`
	Documents     []*docmodels.Document `json:"documents"`
}
