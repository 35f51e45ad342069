package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondPageError is respondInternalError for the HTML pages.
func respondPageError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.String(http.StatusInternalServerError, "Internal server error")
}

// respondAccepted sends a 202 Accepted response (for async operations).
func respondAccepted(c *gin.Context, message string, data any) {
	c.JSON(http.StatusAccepted, SuccessResponse{Message: message, Data: data})
}

// --- Request Parsing ---

// parseIDParam extracts an unsigned integer ID from URL parameters.
// Non-numeric IDs get a plain 404.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil {
		c.String(http.StatusNotFound, "Book not found")
		return 0, false
	}
	return uint(id), true
}

// parseForm reads a urlencoded or multipart body. Oversized bodies are
// answered with 413 and reported as false.
func parseForm(c *gin.Context) bool {
	err := c.Request.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = nil
	}
	if err == nil {
		return true
	}

	if isBodyTooLarge(err) {
		respondTooLarge(c)
		return false
	}
	c.String(http.StatusBadRequest, "Malformed form submission")
	return false
}
