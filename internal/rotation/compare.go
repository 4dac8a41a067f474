package rotation

import (
	"context"

	domainRotation "croprotation/domain/rotation"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// ScoreSummary describes the score distribution of one strategy run
type ScoreSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Comparison is the outcome of one strategy in a side-by-side run
type Comparison struct {
	Strategy        Info                            `json:"strategy"`
	Recommendations []domainRotation.Recommendation `json:"recommendations"`
	Summary         ScoreSummary                    `json:"summary"`
}

// Summarize computes descriptive statistics over the scores. An empty input
// yields a zero summary.
func Summarize(scored []domainRotation.ScoredCrop) (ScoreSummary, error) {
	if len(scored) == 0 {
		return ScoreSummary{}, nil
	}

	data := make(stats.Float64Data, len(scored))
	for i, s := range scored {
		data[i] = s.Score
	}

	var (
		summary = ScoreSummary{Count: len(data)}
		err     error
	)
	if summary.Mean, err = data.Mean(); err != nil {
		return ScoreSummary{}, err
	}
	if summary.Median, err = data.Median(); err != nil {
		return ScoreSummary{}, err
	}
	if summary.StdDev, err = data.StandardDeviation(); err != nil {
		return ScoreSummary{}, err
	}
	if summary.Min, err = data.Min(); err != nil {
		return ScoreSummary{}, err
	}
	if summary.Max, err = data.Max(); err != nil {
		return ScoreSummary{}, err
	}
	return summary, nil
}

// Compare runs every registered strategy over the same plan concurrently.
// Results are returned in registry order.
func Compare(ctx context.Context, plan domainRotation.PlanContext) ([]Comparison, error) {
	keys := Keys()
	results := make([]Comparison, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rc := NewContext(nil)
			if err := rc.UseKey(key); err != nil {
				return err
			}
			scored, err := rc.ExecuteRotation(plan)
			if err != nil {
				return err
			}
			summary, err := Summarize(scored)
			if err != nil {
				return err
			}

			s := rc.Strategy()
			results[i] = Comparison{
				Strategy:        Info{Key: key, Name: s.Name(), Description: s.Description()},
				Recommendations: Aggregate(scored, plan.FieldSize),
				Summary:         summary,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
