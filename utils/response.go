package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextPlayerKey is the gin context key holding the authenticated player id.
const ContextPlayerKey = "playerID"

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// SuccessUnsaved returns the data of an operation that applied but could not
// be saved. Clients keep working with the in-memory result.
func SuccessUnsaved(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "saved in memory only", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}
