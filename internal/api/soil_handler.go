package api

import (
	"bytes"
	"encoding/json"
	"net/http"

	"croprotation/internal"
	"croprotation/internal/soil"

	"github.com/gin-gonic/gin"
)

// SoilHandler exposes the soil acidity matcher
type SoilHandler struct {
	matcher *soil.Matcher
	logger  *internal.Logger
}

func NewSoilHandler(matcher *soil.Matcher) *SoilHandler {
	return &SoilHandler{
		matcher: matcher,
		logger:  internal.DefaultLogger.With("api"),
	}
}

// GetSoil returns the current threshold
func (h *SoilHandler) GetSoil(c *gin.Context) {
	respondOK(c, http.StatusOK, "Soil threshold retrieved", gin.H{"hp": h.matcher.Get()})
}

// SetSoil replaces the threshold. hp may be sent as a number or a numeric
// string.
func (h *SoilHandler) SetSoil(c *gin.Context) {
	var body struct {
		HP json.RawMessage `json:"hp"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	hp, err := h.matcher.Set(rawNumber(body.HP))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Soil threshold updated", gin.H{"hp": hp})
}

// CheckAcidity compares the acidity query parameter against the threshold
func (h *SoilHandler) CheckAcidity(c *gin.Context) {
	result, err := h.matcher.Check(c.Query("acidity"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	message := "Crop does not match soil"
	if result.Match {
		message = "Crop matches soil"
	}
	respondOK(c, http.StatusOK, message, result)
}

// rawNumber returns a JSON number literal or the contents of a JSON string
func rawNumber(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(raw, []byte("null")) {
		return ""
	}
	return string(raw)
}
