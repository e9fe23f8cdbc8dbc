package http

import "github.com/gin-gonic/gin"

// successResponse and errorResponse mirror mbflow's rest.SuccessResponse
// / rest.APIError envelope shape, narrowed (no pagination Meta — nothing
// this gateway returns is a paginated list).
type successResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(c *gin.Context, status int, data any) {
	c.JSON(status, successResponse{Data: data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
