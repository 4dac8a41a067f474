package api

import (
	"net/http"

	"croprotation/app"
	"croprotation/domain/crop"
	"croprotation/internal"
	"croprotation/ports"

	"github.com/gin-gonic/gin"
)

// cropRequest is the body of create and update requests
type cropRequest struct {
	Name                string               `json:"name" binding:"required,max=100"`
	ScientificName      string               `json:"scientific_name" binding:"max=200"`
	Family              crop.Family          `json:"family"`
	NutrientRequirement string               `json:"nutrient_requirement" binding:"omitempty,oneof=low medium high"`
	WaterRequirement    *float64             `json:"water_requirement" binding:"omitempty,min=0,max=10"`
	Season              []crop.Season        `json:"season"`
	GrowthDuration      int                  `json:"growth_duration" binding:"omitempty,min=30,max=365"`
	NitrogenFixer       bool                 `json:"nitrogen_fixer"`
	SoilTypes           []string             `json:"soil_types"`
	Acidity             int                  `json:"acidity" binding:"min=0,max=100"`
	OwnerEmail          string               `json:"owner_email" binding:"omitempty,email"`
	Compatibility       []crop.Compatibility `json:"compatibility"`
}

// DEFAULT_WATER_REQUIREMENT applies when a request omits water_requirement
const DEFAULT_WATER_REQUIREMENT = 5.0

func (r cropRequest) toCrop() *crop.Crop {
	water := DEFAULT_WATER_REQUIREMENT
	if r.WaterRequirement != nil {
		water = *r.WaterRequirement
	}
	return &crop.Crop{
		Name:                r.Name,
		ScientificName:      r.ScientificName,
		Family:              r.Family,
		NutrientRequirement: crop.NutrientRequirement(r.NutrientRequirement),
		WaterRequirement:    water,
		Season:              r.Season,
		GrowthDuration:      r.GrowthDuration,
		NitrogenFixer:       r.NitrogenFixer,
		SoilTypes:           r.SoilTypes,
		Acidity:             r.Acidity,
		OwnerEmail:          r.OwnerEmail,
		Compatibility:       r.Compatibility,
	}
}

// CropHandler serves the crop catalog
type CropHandler struct {
	crops  *app.CropService
	logger *internal.Logger
}

func NewCropHandler(crops *app.CropService) *CropHandler {
	return &CropHandler{
		crops:  crops,
		logger: internal.DefaultLogger.With("api"),
	}
}

// ListCrops returns active crops, optionally filtered by family,
// nutrientRequirement and season
func (h *CropHandler) ListCrops(c *gin.Context) {
	filter := ports.CropFilter{
		Family:              crop.Family(c.Query("family")),
		NutrientRequirement: crop.NutrientRequirement(firstQuery(c, "nutrientRequirement", "nutrient_requirement")),
		Season:              crop.Season(c.Query("season")),
	}
	crops, err := h.crops.ListCrops(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crops retrieved successfully", crops)
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}

func (h *CropHandler) GetCrop(c *gin.Context) {
	id, ok := pathID(c, "cropId")
	if !ok {
		return
	}
	found, err := h.crops.GetCrop(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crop retrieved successfully", found)
}

func (h *CropHandler) SearchCrops(c *gin.Context) {
	found, err := h.crops.SearchCrops(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Search results", found)
}

func (h *CropHandler) CropsByFamily(c *gin.Context) {
	found, err := h.crops.CropsByFamily(c.Request.Context(), crop.Family(c.Param("family")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crops retrieved successfully", found)
}

func (h *CropHandler) CompatibleCrops(c *gin.Context) {
	id, ok := pathID(c, "cropId")
	if !ok {
		return
	}
	found, err := h.crops.CompatibleCrops(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Compatible crops retrieved", found)
}

func (h *CropHandler) SoilMatch(c *gin.Context) {
	id, ok := pathID(c, "cropId")
	if !ok {
		return
	}
	result, err := h.crops.SoilMatch(c.Request.Context(), id)
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

func (h *CropHandler) CreateCrop(c *gin.Context) {
	var req cropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	created, err := h.crops.CreateCrop(c.Request.Context(), req.toCrop())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Crop created successfully", created)
}

func (h *CropHandler) UpdateCrop(c *gin.Context) {
	id, ok := pathID(c, "cropId")
	if !ok {
		return
	}
	var req cropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	updated, err := h.crops.UpdateCrop(c.Request.Context(), id, req.toCrop())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crop updated successfully", updated)
}

func (h *CropHandler) DeleteCrop(c *gin.Context) {
	id, ok := pathID(c, "cropId")
	if !ok {
		return
	}
	if err := h.crops.DeleteCrop(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crop deleted successfully", nil)
}
