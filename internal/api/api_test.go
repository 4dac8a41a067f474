package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"croprotation/adapters/memory"
	"croprotation/app"
	"croprotation/domain/core"
	"croprotation/domain/crop"
	domainRotation "croprotation/domain/rotation"
	"croprotation/internal/config"
	appErrors "croprotation/internal/errors"
	"croprotation/internal/soil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

type apiFixture struct {
	server *Server
	crops  map[string]core.ID
	farmer core.ID
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cropRepo := memory.NewCropRepository()
	planRepo := memory.NewPlanRepository()
	matcher := soil.NewMatcher(soil.DEFAULT_THRESHOLD_HP)
	cropSvc := app.NewCropService(cropRepo, matcher)
	rotationSvc := app.NewRotationService(cropRepo, planRepo, config.RotationConfig{
		DefaultSeason:    crop.SeasonSpring,
		DefaultRainfall:  500,
		DefaultTempRange: domainRotation.TempModerate,
	})

	f := &apiFixture{
		server: NewServer(cropSvc, rotationSvc, matcher, true),
		crops:  make(map[string]core.ID),
		farmer: core.NewID(),
	}
	for _, c := range []*crop.Crop{
		{Name: "Corn", Family: crop.FamilyPoaceae, NutrientRequirement: crop.NutrientHigh, WaterRequirement: 6, Season: []crop.Season{crop.SeasonSpring, crop.SeasonSummer}, GrowthDuration: 120, Acidity: 40},
		{Name: "Soybean", Family: crop.FamilyFabaceae, NutrientRequirement: crop.NutrientLow, NitrogenFixer: true, WaterRequirement: 5, Season: []crop.Season{crop.SeasonSpring, crop.SeasonSummer}, GrowthDuration: 100, Acidity: 60},
		{Name: "Wheat", Family: crop.FamilyPoaceae, NutrientRequirement: crop.NutrientMedium, WaterRequirement: 4, Season: []crop.Season{crop.SeasonAutumn}, GrowthDuration: 200, Acidity: 50},
	} {
		created, err := cropSvc.CreateCrop(context.Background(), c)
		require.NoError(t, err)
		f.crops[created.Name] = created.ID
	}
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)

	var env testEnvelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (f *apiFixture) asFarmer() map[string]string {
	return map[string]string{HeaderFarmerID: f.farmer.String()}
}

func asAdmin() map[string]string {
	return map[string]string{HeaderFarmerID: core.NewID().String(), HeaderRole: "admin"}
}

func TestServer_HealthAndInfo(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Server is running", env.Message)

	w, env = f.do(t, http.MethodGet, "/api/v1/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "/api/v1/crops")
}

func TestServer_UnknownRoute(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/nope", nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route /api/v1/nope not found", env.Message)
}

func TestSoil_SetGetCheck(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/v1/soil", `{"hp":"30"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hp":30}`, string(env.Data))

	w, env = f.do(t, http.MethodGet, "/api/v1/soil", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"hp":30}`, string(env.Data))

	w, env = f.do(t, http.MethodGet, "/api/v1/rotation/check?acidity=25", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Crop matches soil", env.Message)
	assert.JSONEq(t, `{"acidity":25,"soilHP":30,"match":true}`, string(env.Data))

	w, env = f.do(t, http.MethodGet, "/api/v1/rotation/check?acidity=31", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Crop does not match soil", env.Message)
}

func TestSoil_InvalidInput(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{"non-numeric hp", http.MethodPost, "/api/v1/soil", `{"hp":"abc"}`},
		{"missing hp", http.MethodPost, "/api/v1/soil", `{}`},
		{"missing acidity", http.MethodGet, "/api/v1/rotation/check", nil},
		{"non-numeric acidity", http.MethodGet, "/api/v1/rotation/check?acidity=x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := f.do(t, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, appErrors.CodeInvalidNumeric, env.Code)
		})
	}

	_, env := f.do(t, http.MethodGet, "/api/v1/soil", nil, nil)
	assert.JSONEq(t, `{"hp":50}`, string(env.Data))
}

func TestCrops_PublicReads(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/crops?family=Poaceae", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var crops []crop.Crop
	require.NoError(t, json.Unmarshal(env.Data, &crops))
	require.Len(t, crops, 2)
	assert.Equal(t, "Corn", crops[0].Name)
	assert.Equal(t, "Wheat", crops[1].Name)

	w, env = f.do(t, http.MethodGet, "/api/v1/crops/search?q=soy", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &crops))
	require.Len(t, crops, 1)
	assert.Equal(t, "Soybean", crops[0].Name)

	w, env = f.do(t, http.MethodGet, "/api/v1/crops/family/poaceae", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &crops))
	assert.Len(t, crops, 2)

	w, _ = f.do(t, http.MethodGet, "/api/v1/crops/"+f.crops["Corn"].String(), nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/crops/"+core.NewID().String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, appErrors.CodeNotFound, env.Code)

	w, env = f.do(t, http.MethodGet, "/api/v1/crops/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.CodeInvalidInput, env.Code)
}

func TestCrops_SoilMatch(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/crops/"+f.crops["Corn"].String()+"/soil-match", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acidity":40,"soilHP":50,"match":true}`, string(env.Data))

	w, env = f.do(t, http.MethodGet, "/api/v1/crops/"+f.crops["Soybean"].String()+"/soil-match", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acidity":60,"soilHP":50,"match":false}`, string(env.Data))
}

func TestCrops_WritesRequireAdmin(t *testing.T) {
	f := newAPIFixture(t)
	body := map[string]interface{}{"name": "Pea", "family": "Fabaceae", "nutrient_requirement": "low", "nitrogen_fixer": true}

	w, env := f.do(t, http.MethodPost, "/api/v1/crops", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.CodeUnauthorized, env.Code)

	w, env = f.do(t, http.MethodPost, "/api/v1/crops", body, f.asFarmer())
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, appErrors.CodeForbidden, env.Code)

	w, env = f.do(t, http.MethodPost, "/api/v1/crops", body, asAdmin())
	require.Equal(t, http.StatusCreated, w.Code)
	var created crop.Crop
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "Pea", created.Name)
	assert.Equal(t, 5.0, created.WaterRequirement)
	assert.True(t, created.IsActive)

	w, env = f.do(t, http.MethodPost, "/api/v1/crops", body, asAdmin())
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.CodeConflict, env.Code)

	w, _ = f.do(t, http.MethodDelete, "/api/v1/crops/"+created.ID.String(), nil, asAdmin())
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/crops/search?q=pea", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCrops_CreateValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"missing name", `{"family":"Poaceae"}`, appErrors.CodeValidationError},
		{"bad nutrient", `{"name":"X","nutrient_requirement":"extreme"}`, appErrors.CodeValidationError},
		{"water out of range", `{"name":"X","water_requirement":11}`, appErrors.CodeValidationError},
		{"malformed json", `{"name":`, appErrors.CodeInvalidInput},
		{"unknown family", `{"name":"X","family":"Rosaceae"}`, appErrors.CodeValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := f.do(t, http.MethodPost, "/api/v1/crops", tt.body, asAdmin())
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestCrops_BadFarmerHeader(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/crops", nil, map[string]string{HeaderFarmerID: "farmer-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.CodeInvalidInput, env.Code)
}

func TestRotation_Strategies(t *testing.T) {
	f := newAPIFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/v1/rotation/strategies", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var infos []struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	require.Len(t, infos, 3)
	assert.Equal(t, "nutrient", infos[0].Key)
}

func TestRotation_PlanLifecycle(t *testing.T) {
	f := newAPIFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/v1/rotation/plans", map[string]interface{}{"field_id": "north", "field_size": 2}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := f.do(t, http.MethodPost, "/api/v1/rotation/plans", map[string]interface{}{
		"field_id":          "north",
		"field_size":        2,
		"current_crop_id":   f.crops["Corn"],
		"pest_history":      true,
		"rotation_strategy": "pest",
		"target_season":     "spring",
	}, f.asFarmer())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var plan domainRotation.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, f.farmer, plan.FarmerID)
	assert.Equal(t, domainRotation.PlanDraft, plan.Status)
	require.NotEmpty(t, plan.Recommendations)
	assert.Equal(t, "Soybean", plan.Recommendations[0].CropName)
	planPath := "/api/v1/rotation/plans/" + plan.ID.String()

	w, _ = f.do(t, http.MethodGet, planPath, nil, map[string]string{HeaderFarmerID: core.NewID().String()})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, http.MethodGet, planPath, nil, asAdmin())
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = f.do(t, http.MethodPut, planPath, map[string]interface{}{"rotation_strategy": "nutrient"}, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, domainRotation.StrategyNutrient, plan.Strategy)

	w, env = f.do(t, http.MethodPost, planPath+"/crops", map[string]interface{}{"crop_id": f.crops["Wheat"], "season": "autumn", "year": 2027}, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	require.Len(t, plan.PlannedCrops, 1)
	assert.Equal(t, 1, plan.PlannedCrops[0].Order)

	w, env = f.do(t, http.MethodPost, planPath+"/recommendations", nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	var recs []domainRotation.Recommendation
	require.NoError(t, json.Unmarshal(env.Data, &recs))
	assert.NotEmpty(t, recs)

	w, env = f.do(t, http.MethodGet, planPath+"/compare", nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	var comparisons []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &comparisons))
	assert.Len(t, comparisons, 3)

	w, _ = f.do(t, http.MethodGet, planPath+"/report", nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Rotation plan for field north")

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)
	w, _ = f.do(t, http.MethodGet, planPath+"/report", nil, map[string]string{HeaderFarmerID: f.farmer.String(), "If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, w.Code)

	w, _ = f.do(t, http.MethodGet, planPath+"/report?format=html", nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<h1")

	w, env = f.do(t, http.MethodGet, "/api/v1/rotation/plans?status=draft", nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	var plans []domainRotation.Plan
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	assert.Len(t, plans, 1)

	w, _ = f.do(t, http.MethodDelete, planPath, nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)

	w, env = f.do(t, http.MethodGet, planPath, nil, f.asFarmer())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &plan))
	assert.Equal(t, domainRotation.PlanArchived, plan.Status)
}

func TestRotation_CreatePlanValidation(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
		code   string
	}{
		{"missing field id", map[string]interface{}{"field_size": 2}, http.StatusBadRequest, appErrors.CodeValidationError},
		{"field too small", map[string]interface{}{"field_id": "f", "field_size": 0.05}, http.StatusBadRequest, appErrors.CodeValidationError},
		{"bad unit", map[string]interface{}{"field_id": "f", "field_size": 1, "unit": "m2"}, http.StatusBadRequest, appErrors.CodeValidationError},
		{"bad strategy", map[string]interface{}{"field_id": "f", "field_size": 1, "rotation_strategy": "random"}, http.StatusBadRequest, appErrors.CodeValidationError},
		{"unknown current crop", map[string]interface{}{"field_id": "f", "field_size": 1, "current_crop_id": core.NewID()}, http.StatusNotFound, appErrors.CodeNotFound},
		{"malformed current crop", map[string]interface{}{"field_id": "f", "field_size": 1, "current_crop_id": "not-a-uuid"}, http.StatusBadRequest, appErrors.CodeValidationError},
		{"malformed planned crop", map[string]interface{}{"field_id": "f", "field_size": 1, "planned_crops": []map[string]interface{}{{"crop_id": "corn"}}}, http.StatusBadRequest, appErrors.CodeValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := f.do(t, http.MethodPost, "/api/v1/rotation/plans", tt.body, f.asFarmer())
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestRotation_ListOtherFarmerRequiresAdmin(t *testing.T) {
	f := newAPIFixture(t)
	path := "/api/v1/rotation/plans?farmerId=" + core.NewID().String()

	w, _ := f.do(t, http.MethodGet, path, nil, f.asFarmer())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = f.do(t, http.MethodGet, path, nil, asAdmin())
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodGet, "/api/v1/rotation/plans?farmerId=bob", nil, asAdmin())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
