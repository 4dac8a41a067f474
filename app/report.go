package app

import (
	"context"
	"fmt"
	"strings"

	"croprotation/domain/core"
	domainRotation "croprotation/domain/rotation"

	"github.com/gomarkdown/markdown"
)

// Report formats
const (
	ReportMarkdown = "md"
	ReportHTML     = "html"
)

// RenderReport renders a plan as a markdown document. names resolves crop
// IDs to display names; unknown IDs are printed as is.
func RenderReport(plan *domainRotation.Plan, names map[core.ID]string) string {
	name := func(id core.ID) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Rotation plan for field %s\n\n", plan.FieldID)
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Field size | %g %s |\n", plan.FieldSize, plan.Unit)
	fmt.Fprintf(&b, "| Strategy | %s |\n", plan.Strategy)
	fmt.Fprintf(&b, "| Status | %s |\n", plan.Status)
	fmt.Fprintf(&b, "| Rotation duration | %d years |\n", plan.RotationDuration)
	if plan.CurrentCropID != nil {
		fmt.Fprintf(&b, "| Current crop | %s |\n", name(*plan.CurrentCropID))
	}
	if plan.TargetSeason != "" {
		fmt.Fprintf(&b, "| Target season | %s |\n", plan.TargetSeason)
	}
	fmt.Fprintf(&b, "| Pest history | %t |\n", plan.PestHistory)
	if plan.Climate != nil {
		fmt.Fprintf(&b, "| Climate | %g mm, %s |\n", plan.Climate.Rainfall, plan.Climate.TempRange)
	}

	b.WriteString("\n## Soil test results\n\n")
	soilRows := []struct {
		label string
		value *float64
	}{
		{"Nitrogen", plan.SoilTestResults.Nitrogen},
		{"Phosphorus", plan.SoilTestResults.Phosphorus},
		{"Potassium", plan.SoilTestResults.Potassium},
		{"pH", plan.SoilTestResults.PH},
		{"Organic matter", plan.SoilTestResults.OrganicMatter},
	}
	measured := 0
	for _, row := range soilRows {
		if row.value != nil {
			fmt.Fprintf(&b, "- %s: %g\n", row.label, *row.value)
			measured++
		}
	}
	if measured == 0 {
		b.WriteString("No measurements recorded.\n")
	}

	if len(plan.PlannedCrops) > 0 {
		b.WriteString("\n## Planned sequence\n\n")
		for _, pc := range plan.PlannedCrops {
			line := fmt.Sprintf("%d. %s", pc.Order, name(pc.CropID))
			if pc.Season != "" {
				line += " (" + string(pc.Season)
				if pc.Year > 0 {
					line += fmt.Sprintf(" %d", pc.Year)
				}
				line += ")"
			}
			b.WriteString(line + "\n")
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	if len(plan.Recommendations) == 0 {
		b.WriteString("No recommendations generated.\n")
		return b.String()
	}
	b.WriteString("| # | Crop | Score | Expected yield | Reason |\n|---|---|---|---|---|\n")
	for i, rec := range plan.Recommendations {
		fmt.Fprintf(&b, "| %d | %s | %g | %g | %s |\n", i+1, rec.CropName, rec.Score, rec.ExpectedYield, rec.Reason)
	}
	return b.String()
}

// RenderReportHTML renders the markdown report as HTML
func RenderReportHTML(plan *domainRotation.Plan, names map[core.ID]string) string {
	return string(markdown.ToHTML([]byte(RenderReport(plan, names)), nil, nil))
}

// PlanReport renders a plan the caller may access in the requested format
// and returns the body with its content type
func (s *RotationService) PlanReport(ctx context.Context, caller Caller, id core.ID, format string) ([]byte, string, error) {
	if format == "" {
		format = ReportMarkdown
	}
	if format != ReportMarkdown && format != ReportHTML {
		return nil, "", core.NewValidationError(core.ErrInvalidPlan, "format", "must be md or html")
	}

	plan, err := s.GetPlan(ctx, caller, id)
	if err != nil {
		return nil, "", err
	}

	names := make(map[core.ID]string)
	ids := make([]core.ID, 0, len(plan.PlannedCrops)+1)
	if plan.CurrentCropID != nil {
		ids = append(ids, *plan.CurrentCropID)
	}
	for _, pc := range plan.PlannedCrops {
		ids = append(ids, pc.CropID)
	}
	for _, cropID := range ids {
		if _, seen := names[cropID]; seen {
			continue
		}
		if c, err := s.crops.Get(ctx, cropID); err == nil {
			names[cropID] = c.Name
		}
	}

	if format == ReportHTML {
		return []byte(RenderReportHTML(plan, names)), "text/html; charset=utf-8", nil
	}
	return []byte(RenderReport(plan, names)), "text/markdown; charset=utf-8", nil
}
