package soil

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"croprotation/domain/core"
	"croprotation/domain/crop"
	"croprotation/internal"
)

// DEFAULT_THRESHOLD_HP is the threshold a matcher starts with when none is configured
const DEFAULT_THRESHOLD_HP = 50.0

// Result is the outcome of an acidity check
type Result struct {
	Acidity float64 `json:"acidity"`
	SoilHP  float64 `json:"soilHP"`
	Match   bool    `json:"match"`
}

// Matcher holds the process-wide soil threshold. It is created once at
// startup and shared by every caller.
type Matcher struct {
	mu          sync.RWMutex
	thresholdHP float64
	logger      *internal.Logger
}

// NewMatcher creates a matcher. A non-finite initial threshold falls back to
// DEFAULT_THRESHOLD_HP.
func NewMatcher(initialHP float64) *Matcher {
	if math.IsNaN(initialHP) || math.IsInf(initialHP, 0) {
		initialHP = DEFAULT_THRESHOLD_HP
	}
	return &Matcher{
		thresholdHP: initialHP,
		logger:      internal.DefaultLogger.With("soil"),
	}
}

// ParseNumeric parses raw as a finite float64
func ParseNumeric(field, raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, core.NewNumericError(field, raw)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewNumericError(field, raw)
	}
	return v, nil
}

// Get returns the current threshold
func (m *Matcher) Get() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.thresholdHP
}

// Set replaces the threshold with the parsed value of raw. On a parse failure
// the threshold is left unchanged.
func (m *Matcher) Set(raw string) (float64, error) {
	hp, err := ParseNumeric("hp", raw)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	previous := m.thresholdHP
	m.thresholdHP = hp
	m.mu.Unlock()

	m.logger.Info("Soil threshold changed from %g to %g", previous, hp)
	return hp, nil
}

// Check compares the parsed acidity against the threshold. The boundary is
// inclusive.
func (m *Matcher) Check(raw string) (Result, error) {
	acidity, err := ParseNumeric("acidity", raw)
	if err != nil {
		return Result{}, err
	}
	return m.compare(acidity), nil
}

// CheckCrop compares the crop's own acidity against the threshold
func (m *Matcher) CheckCrop(c crop.Crop) Result {
	return m.compare(float64(c.Acidity))
}

func (m *Matcher) compare(acidity float64) Result {
	hp := m.Get()
	return Result{Acidity: acidity, SoilHP: hp, Match: acidity <= hp}
}
