package api

import (
	"errors"
	"net/http"

	"croprotation/internal"
	appErrors "croprotation/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// envelope is the body of every JSON response
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func respondFail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, envelope{Success: false, Message: message, Code: code})
}

// respondError maps err to its status and error code. Internal errors are
// logged and reported without detail.
func respondError(c *gin.Context, logger *internal.Logger, err error) {
	status := appErrors.HTTPStatus(err)
	code := appErrors.GetCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "Internal server error"
	}
	respondFail(c, status, code, message)
}

// respondBindError reports a malformed or invalid request body
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		respondFail(c, http.StatusBadRequest, appErrors.CodeValidationError,
			"Invalid "+fe.Field()+": failed '"+fe.Tag()+"' check")
		return
	}
	respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid request body: "+err.Error())
}
