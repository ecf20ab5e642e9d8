package evaluation

import (
	"encoding/json"
	"math"
	"testing"
)

func fullRatings(value float64) map[string]any {
	ratings := map[string]any{}
	for _, keys := range [][]string{
		perfDoubleKeys, perfSingleKeys,
		resultOperationalKeys,
		resultSupervisorDoubleKeys, resultSupervisorSingleKeys,
		competencyKeys,
	} {
		for _, key := range keys {
			ratings[key] = value
		}
	}
	return ratings
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeScoresOperationalMaximum(t *testing.T) {
	ratings := fullRatings(10)
	for _, key := range competencyKeys {
		ratings[key] = 5.0
	}

	scores := ComputeScores(ratings, TypeOperational)
	if !almostEqual(scores.Perf, 40) {
		t.Fatalf("expected perf 40, got %v", scores.Perf)
	}
	if !almostEqual(scores.Result, 30) {
		t.Fatalf("expected result 30, got %v", scores.Result)
	}
	if !almostEqual(scores.Comp, 30) {
		t.Fatalf("expected comp 30, got %v", scores.Comp)
	}
	if !almostEqual(scores.Total, 100) {
		t.Fatalf("expected total 100, got %v", scores.Total)
	}
}

func TestComputeScoresTotalIsSectionSum(t *testing.T) {
	ratings := map[string]any{
		"responsibility": 7, "workload": 4.5, "coordination": 8,
		"workTarget": 6, "workSpeed": "9",
		"planning": 5, "controlling": 3,
		"integrity": 4, "teamwork": 2,
	}
	for _, evalType := range []string{TypeOperational, TypeSupervisor} {
		scores := ComputeScores(ratings, evalType)
		if !almostEqual(scores.Total, scores.Perf+scores.Result+scores.Comp) {
			t.Fatalf("%s: total %v != %v + %v + %v", evalType, scores.Total, scores.Perf, scores.Result, scores.Comp)
		}
	}
}

func TestComputeScoresMissingAndNonNumericAreZero(t *testing.T) {
	ratings := map[string]any{
		"responsibility": "not a number",
		"development":    nil,
		"workload":       []string{"9"},
		"coordination":   map[string]any{"value": 9},
	}
	scores := ComputeScores(ratings, TypeOperational)
	if scores.Perf != 0 || scores.Result != 0 || scores.Comp != 0 || scores.Total != 0 {
		t.Fatalf("expected all-zero scores, got %+v", scores)
	}

	if ComputeScores(nil, TypeSupervisor).Total != 0 {
		t.Fatal("nil ratings must score zero")
	}
}

func TestComputeScoresNumericCoercion(t *testing.T) {
	ratings := map[string]any{
		"responsibility":  json.Number("5"),
		"development":     "5",
		"workload":        5,
		"qualityStandard": int64(5),
		"coordination":    float32(5),
	}
	scores := ComputeScores(ratings, TypeOperational)
	// 3 double-weighted fives plus 2 single fives = 40 of 80, scaled to 20.
	if !almostEqual(scores.Perf, 20) {
		t.Fatalf("expected perf 20, got %v", scores.Perf)
	}
}

func TestComputeScoresTypeWeightingDiffers(t *testing.T) {
	ratings := fullRatings(6)

	operational := ComputeScores(ratings, TypeOperational)
	supervisor := ComputeScores(ratings, TypeSupervisor)

	if almostEqual(operational.Result, supervisor.Result) {
		t.Fatalf("result weighting must differ between types, both %v", operational.Result)
	}
	if almostEqual(operational.Comp, supervisor.Comp) {
		t.Fatalf("competency scaling must differ between types, both %v", operational.Comp)
	}
}

func TestComputeGradeBoundaries(t *testing.T) {
	cases := map[float64]string{
		95:   "A",
		90:   "A",
		89.9: "B",
		80:   "B",
		79:   "C",
		70:   "C",
		65:   "D",
		60:   "D",
		59.9: "E",
		0:    "E",
	}
	for total, want := range cases {
		if got := ComputeGrade(total); got != want {
			t.Fatalf("ComputeGrade(%v) = %q, want %q", total, got, want)
		}
	}
}
