package api

import (
	"net/http"
	"strconv"

	"croprotation/app"
	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/internal"
	appErrors "croprotation/internal/errors"
	"croprotation/ports"

	"github.com/gin-gonic/gin"
)

// planRequest is the body of a plan creation request
type planRequest struct {
	FieldID          string                         `json:"field_id" binding:"required,max=100"`
	FieldSize        float64                        `json:"field_size" binding:"required,gte=0.1"`
	Unit             domainRotation.FieldUnit       `json:"unit" binding:"omitempty,oneof=acre hectare"`
	CurrentCropID    *core.ID                       `json:"current_crop_id"`
	SoilTestResults  domainRotation.SoilTestResults `json:"soil_test_results"`
	Climate          *domainRotation.Climate        `json:"climate"`
	TargetSeason     crop.Season                    `json:"target_season"`
	PestHistory      bool                           `json:"pest_history"`
	Strategy         domainRotation.StrategyKey     `json:"rotation_strategy"`
	RotationDuration int                            `json:"rotation_duration" binding:"omitempty,min=1,max=10"`
	PlannedCrops     []domainRotation.PlannedCrop   `json:"planned_crops"`
}

func (r planRequest) toPlan() *domainRotation.Plan {
	return &domainRotation.Plan{
		FieldID:          r.FieldID,
		FieldSize:        r.FieldSize,
		Unit:             r.Unit,
		CurrentCropID:    r.CurrentCropID,
		SoilTestResults:  r.SoilTestResults,
		Climate:          r.Climate,
		TargetSeason:     r.TargetSeason,
		PestHistory:      r.PestHistory,
		Strategy:         r.Strategy,
		RotationDuration: r.RotationDuration,
		PlannedCrops:     r.PlannedCrops,
	}
}

// addCropRequest is the body of an add-to-sequence request
type addCropRequest struct {
	CropID core.ID     `json:"crop_id" binding:"required"`
	Season crop.Season `json:"season"`
	Year   int         `json:"year" binding:"omitempty,min=1900,max=2200"`
}

// RotationHandler serves rotation plans and recommendations
type RotationHandler struct {
	rotation *app.RotationService
	logger   *internal.Logger
}

func NewRotationHandler(rotation *app.RotationService) *RotationHandler {
	return &RotationHandler{
		rotation: rotation,
		logger:   internal.DefaultLogger.With("api"),
	}
}

func (h *RotationHandler) Strategies(c *gin.Context) {
	respondOK(c, http.StatusOK, "Strategies retrieved", h.rotation.Strategies())
}

func (h *RotationHandler) CreatePlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	plan, err := h.rotation.CreatePlan(c.Request.Context(), callerFrom(c), req.toPlan())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, "Rotation plan created successfully", plan)
}

// ListPlans lists the caller's plans. Admins may pass farmerId to list
// another farmer's plans.
func (h *RotationHandler) ListPlans(c *gin.Context) {
	filter := ports.PlanFilter{
		Status:  domainRotation.PlanStatus(c.Query("status")),
		FieldID: firstQuery(c, "fieldId", "field_id"),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	var farmerID core.ID
	if raw := c.Query("farmerId"); raw != "" {
		id, err := core.ParseID(raw)
		if err != nil {
			respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid farmerId format")
			return
		}
		farmerID = id
	}

	plans, err := h.rotation.ListPlans(c.Request.Context(), callerFrom(c), farmerID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Rotation plans retrieved", plans)
}

func (h *RotationHandler) GetPlan(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	plan, err := h.rotation.GetPlan(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Rotation plan retrieved", plan)
}

func (h *RotationHandler) UpdatePlan(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var update app.PlanUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBindError(c, err)
		return
	}
	plan, err := h.rotation.UpdatePlan(c.Request.Context(), callerFrom(c), id, update)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Rotation plan updated successfully", plan)
}

func (h *RotationHandler) ArchivePlan(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	if err := h.rotation.ArchivePlan(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Rotation plan archived successfully", nil)
}

func (h *RotationHandler) AddCrop(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	var req addCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cropID, err := core.ParseID(req.CropID.String())
	if err != nil {
		respondFail(c, http.StatusBadRequest, appErrors.CodeInvalidInput, "Invalid crop_id format")
		return
	}

	plan, err := h.rotation.AddCrop(c.Request.Context(), callerFrom(c), id, domainRotation.PlannedCrop{
		CropID: cropID,
		Season: req.Season,
		Year:   req.Year,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Crop added to rotation", plan)
}

func (h *RotationHandler) GenerateRecommendations(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	recs, err := h.rotation.GenerateRecommendations(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Recommendations generated", recs)
}

func (h *RotationHandler) CompareStrategies(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	results, err := h.rotation.CompareStrategies(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, "Strategy comparison", results)
}

// Report renders the plan as markdown (default) or HTML. The response carries
// an ETag of the rendered body.
func (h *RotationHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "planId")
	if !ok {
		return
	}
	body, contentType, err := h.rotation.PlanReport(c.Request.Context(), callerFrom(c), id, c.Query("format"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	etag := core.NewHash(body).ETag()
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, contentType, body)
}
