package api

import (
	"net/http"
	"time"

	"croprotation/app"
	appErrors "croprotation/internal/errors"
	"croprotation/internal/soil"

	"github.com/gin-gonic/gin"
)

// Server is the public REST API
type Server struct {
	router   *gin.Engine
	soil     *SoilHandler
	crops    *CropHandler
	rotation *RotationHandler
	demo     bool
}

// NewServer builds the router. demo marks a server backed by in-memory
// storage, reported by the health endpoint.
func NewServer(crops *app.CropService, rotation *app.RotationService, matcher *soil.Matcher, demo bool) *Server {
	s := &Server{
		router:   gin.Default(),
		soil:     NewSoilHandler(matcher),
		crops:    NewCropHandler(crops),
		rotation: NewRotationHandler(rotation),
		demo:     demo,
	}
	s.setupRoutes()
	return s
}

// Handler returns the http.Handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(identify())

	r.NoRoute(func(c *gin.Context) {
		respondFail(c, http.StatusNotFound, appErrors.CodeNotFound, "Route "+c.Request.URL.Path+" not found")
	})

	v1 := r.Group("/api/v1")
	v1.GET("", s.info)
	v1.GET("/", s.info)
	v1.GET("/health", s.health)

	v1.GET("/soil", s.soil.GetSoil)
	v1.POST("/soil", s.soil.SetSoil)

	crops := v1.Group("/crops")
	crops.GET("", s.crops.ListCrops)
	crops.GET("/search", s.crops.SearchCrops)
	crops.GET("/family/:family", s.crops.CropsByFamily)
	crops.GET("/:cropId", s.crops.GetCrop)
	crops.GET("/:cropId/compatible", s.crops.CompatibleCrops)
	crops.GET("/:cropId/soil-match", s.crops.SoilMatch)

	admin := crops.Group("", requireCaller(), requireAdmin())
	admin.POST("", s.crops.CreateCrop)
	admin.PUT("/:cropId", s.crops.UpdateCrop)
	admin.DELETE("/:cropId", s.crops.DeleteCrop)

	rotation := v1.Group("/rotation")
	rotation.GET("/check", s.soil.CheckAcidity)
	rotation.GET("/strategies", s.rotation.Strategies)

	plans := rotation.Group("/plans", requireCaller())
	plans.POST("", s.rotation.CreatePlan)
	plans.GET("", s.rotation.ListPlans)
	plans.GET("/:planId", s.rotation.GetPlan)
	plans.PUT("/:planId", s.rotation.UpdatePlan)
	plans.DELETE("/:planId", s.rotation.ArchivePlan)
	plans.POST("/:planId/crops", s.rotation.AddCrop)
	plans.POST("/:planId/recommendations", s.rotation.GenerateRecommendations)
	plans.GET("/:planId/compare", s.rotation.CompareStrategies)
	plans.GET("/:planId/report", s.rotation.Report)
}

func (s *Server) info(c *gin.Context) {
	respondOK(c, http.StatusOK, "Crop rotation API", gin.H{
		"version": "v1",
		"endpoints": gin.H{
			"soil":     "/api/v1/soil",
			"crops":    "/api/v1/crops",
			"rotation": "/api/v1/rotation",
		},
	})
}

func (s *Server) health(c *gin.Context) {
	respondOK(c, http.StatusOK, "Server is running", gin.H{
		"status": "ok",
		"demo":   s.demo,
		"time":   time.Now().UTC(),
	})
}
