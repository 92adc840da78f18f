package stats

import (
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/paddock/internal/modules/history"
	"github.com/aristath/paddock/internal/modules/participants"
)

// minFairnessSample is the smallest history the fairness check will judge.
// Below this the chi-squared approximation is meaningless.
const minFairnessSample = 30

// FairnessReport is an advisory chi-squared goodness-of-fit check of the win
// distribution across the currently enabled participants against uniform.
// The anti-repeat rule biases consecutive draws, not the marginal
// distribution, so a healthy selector should still look uniform here.
type FairnessReport struct {
	Participants int     `json:"participants"`
	SampleSize   int     `json:"sample_size"`
	Statistic    float64 `json:"statistic"`
	PValue       float64 `json:"p_value"`
	Suspicious   bool    `json:"suspicious"` // p < 0.01
	Conclusive   bool    `json:"conclusive"` // enough history to judge
}

// Fairness computes the chi-squared uniformity report over the subset of
// history entries belonging to currently enabled participants.
func Fairness(entries []history.Entry, enabled []participants.Participant) FairnessReport {
	report := FairnessReport{Participants: len(enabled)}
	if len(enabled) < 2 {
		return report
	}

	counts := make(map[string]int, len(enabled))
	for _, p := range enabled {
		counts[p.ID] = 0
	}
	for _, e := range entries {
		if _, ok := counts[e.ParticipantID]; ok {
			counts[e.ParticipantID]++
			report.SampleSize++
		}
	}

	if report.SampleSize < minFairnessSample {
		return report
	}

	expected := float64(report.SampleSize) / float64(len(enabled))
	for _, observed := range counts {
		diff := float64(observed) - expected
		report.Statistic += diff * diff / expected
	}

	dist := distuv.ChiSquared{K: float64(len(enabled) - 1)}
	report.PValue = dist.Survival(report.Statistic)
	report.Suspicious = report.PValue < 0.01
	report.Conclusive = true

	return report
}
