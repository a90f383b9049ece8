// Package predict turns raw endpoint probability vectors into class
// decisions. Everything here is pure: no I/O, no clock, no randomness.
package predict

import (
	"fmt"

	"github.com/acousticlabs/trainyard/pkg/models"
)

// DefaultThreshold applies when a job has no stored threshold.
const DefaultThreshold = 0.5

// Sentinel labels returned when no class clears the threshold.
const (
	SentinelUnknown = "unknown"
	SentinelOther   = "other"
)

// Outcome is a plain decision: the winning class label and its score.
type Outcome struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// DisplayOutcome is a decision resolved to human-facing class metadata.
type DisplayOutcome struct {
	DisplayName string  `json:"display_name"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	Confidence  float64 `json:"confidence"`
}

// EffectiveThreshold resolves a job's stored threshold, falling back to the
// default when none is set.
func EffectiveThreshold(t *float64) float64 {
	if t != nil {
		return *t
	}
	return DefaultThreshold
}

// Decide applies the plain decision rule.
//
// Binary jobs carry a single raw score, the probability of class index 0.
// The score must be strictly greater than the threshold to select index 1;
// exactly at the threshold selects index 0.
//
// Multi-class jobs take the arg max of the vector, lowest index winning
// ties. When the maximum does not exceed the threshold the outcome is the
// "unknown" sentinel with the maximum as its confidence.
func Decide(jobType string, scores []float64, classes []string, threshold float64) (Outcome, error) {
	switch jobType {
	case models.JobTypeBinary:
		if len(scores) < 1 {
			return Outcome{}, fmt.Errorf("binary decision needs a score, got none")
		}
		if len(classes) != 2 {
			return Outcome{}, fmt.Errorf("binary decision needs 2 classes, got %d", len(classes))
		}
		p := scores[0]
		idx := 0
		if p > threshold {
			idx = 1
		}
		return Outcome{Class: classes[idx], Confidence: p}, nil

	case models.JobTypeMulti:
		if len(scores) == 0 {
			return Outcome{}, fmt.Errorf("multi decision needs scores, got none")
		}
		if len(scores) != len(classes) {
			return Outcome{}, fmt.Errorf("scores and classes disagree: %d vs %d", len(scores), len(classes))
		}
		idx, max := argmax(scores)
		if max <= threshold {
			return Outcome{Class: SentinelUnknown, Confidence: max}, nil
		}
		return Outcome{Class: classes[idx], Confidence: max}, nil

	default:
		return Outcome{}, fmt.Errorf("unknown job type %q", jobType)
	}
}

// DecideDisplay applies the display decision rule, resolving the winning
// class to its display metadata.
//
// Binary confidence is reported from the caller's perspective: the raw score
// when the predicted class is "other", its complement otherwise. Multi-class
// confidence is always the raw maximum, and a below-threshold outcome falls
// back to the metadata entry tagged with class "other".
func DecideDisplay(jobType string, scores []float64, classes []string, display []models.DisplayName, threshold float64) (DisplayOutcome, error) {
	switch jobType {
	case models.JobTypeBinary:
		out, err := Decide(jobType, scores, classes, threshold)
		if err != nil {
			return DisplayOutcome{}, err
		}
		conf := out.Confidence
		if out.Class != SentinelOther {
			conf = 1 - conf
		}
		meta := lookupDisplay(display, out.Class)
		return DisplayOutcome{
			DisplayName: meta.DisplayName,
			Icon:        meta.Icon,
			Color:       meta.Color,
			Confidence:  conf,
		}, nil

	case models.JobTypeMulti:
		if len(scores) == 0 {
			return DisplayOutcome{}, fmt.Errorf("multi decision needs scores, got none")
		}
		if len(scores) != len(classes) {
			return DisplayOutcome{}, fmt.Errorf("scores and classes disagree: %d vs %d", len(scores), len(classes))
		}
		idx, max := argmax(scores)
		label := SentinelOther
		if max > threshold {
			label = classes[idx]
		}
		meta := lookupDisplay(display, label)
		return DisplayOutcome{
			DisplayName: meta.DisplayName,
			Icon:        meta.Icon,
			Color:       meta.Color,
			Confidence:  max,
		}, nil

	default:
		return DisplayOutcome{}, fmt.Errorf("unknown job type %q", jobType)
	}
}

// argmax returns the index and value of the largest score; ties go to the
// lowest index.
func argmax(scores []float64) (int, float64) {
	idx, max := 0, scores[0]
	for i, s := range scores[1:] {
		if s > max {
			idx, max = i+1, s
		}
	}
	return idx, max
}

// lookupDisplay finds the metadata entry for label, falling back to the
// entry tagged "other" and finally to a bare entry echoing the label.
func lookupDisplay(display []models.DisplayName, label string) models.DisplayName {
	for _, d := range display {
		if d.Class == label {
			return d
		}
	}
	for _, d := range display {
		if d.Class == SentinelOther {
			return d
		}
	}
	return models.DisplayName{Class: label, DisplayName: label}
}
