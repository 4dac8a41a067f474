package api

import (
	"net/http"
	"strings"

	"croprotation/app"
	"croprotation/domain/core"
	appErrors "croprotation/internal/errors"

	"github.com/gin-gonic/gin"
)

// Identity headers set by the upstream gateway after authentication
const (
	HeaderFarmerID = "X-Farmer-ID"
	HeaderRole     = "X-Role"
	RoleAdmin      = "admin"

	callerKey = "caller"
)

// identify resolves the caller from the gateway headers. A malformed farmer
// id is rejected; a missing one leaves the request anonymous.
func identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller app.Caller
		if raw := c.GetHeader(HeaderFarmerID); raw != "" {
			id, err := core.ParseID(raw)
			if err != nil {
				respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid "+HeaderFarmerID+" header")
				return
			}
			caller.ID = id
		}
		caller.Admin = strings.EqualFold(strings.TrimSpace(c.GetHeader(HeaderRole)), RoleAdmin)
		c.Set(callerKey, caller)
		c.Next()
	}
}

// requireCaller rejects anonymous requests
func requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if callerFrom(c).ID.IsEmpty() {
			respondFail(c, http.StatusUnauthorized, appErrors.CodeUnauthorized, "Not authorized, no farmer identity")
			return
		}
		c.Next()
	}
}

// requireAdmin rejects callers without the admin role
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !callerFrom(c).Admin {
			respondFail(c, http.StatusForbidden, appErrors.CodeForbidden, "Admin role required")
			return
		}
		c.Next()
	}
}

func callerFrom(c *gin.Context) app.Caller {
	if v, ok := c.Get(callerKey); ok {
		if caller, ok := v.(app.Caller); ok {
			return caller
		}
	}
	return app.Caller{}
}

// pathID parses a UUID path parameter, responding 400 when malformed
func pathID(c *gin.Context, name string) (core.ID, bool) {
	id, err := core.ParseID(c.Param(name))
	if err != nil {
		respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid "+name+" format")
		return "", false
	}
	return id, true
}
