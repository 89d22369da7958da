package config

import (
	"strings"
	"testing"
)

func TestParse_FullProfile(t *testing.T) {
	data := []byte(`
version: "1"
profile_name: strict
heuristic_thresholds:
  medium: 20
  high: 40
combiner:
  warning_at: 15
  danger_at: 35
  safety_ceiling: 25
  detection_ratio_cutoff: 0.05
  danger_risk_score: 70
  warning_risk_score: 35
  weights:
    reputation: 0.5
    detection: 0.3
    heuristic: 0.2
sources:
  timeout_seconds: 10
  simulate: false
  ipqs:
    enabled: true
    api_key_env: IPQS_API_KEY
    strictness: 1
server:
  listen: ":9090"
`)
	p, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ProfileName != "strict" {
		t.Errorf("expected profile name strict, got %q", p.ProfileName)
	}
	if p.Heuristic.High != 40 || p.Combiner.DangerAt != 35 {
		t.Errorf("thresholds not applied: %+v %+v", p.Heuristic, p.Combiner)
	}
	if p.Combiner.Weights.Reputation != 0.5 {
		t.Errorf("weights not applied: %+v", p.Combiner.Weights)
	}
	if p.SourceTimeout().Seconds() != 10 {
		t.Errorf("expected 10s timeout, got %v", p.SourceTimeout())
	}
}

func TestParse_DefaultsApplied(t *testing.T) {
	p, err := Parse([]byte(`profile_name: minimal`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Heuristic.Medium != 25 || p.Heuristic.High != 50 {
		t.Errorf("expected default heuristic thresholds, got %+v", p.Heuristic)
	}
	if p.Combiner.DangerAt != 40 {
		t.Errorf("expected default combiner policy, got %+v", p.Combiner)
	}
	if !p.Sources.Simulate {
		t.Error("expected simulate on by default")
	}
}

func TestParse_InvalidProfiles(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"inverted heuristic thresholds",
			"heuristic_thresholds: {medium: 50, high: 25}",
			"heuristic thresholds",
		},
		{
			"inverted combiner cutoffs",
			"combiner: {warning_at: 40, danger_at: 20, weights: {reputation: 0.45, detection: 0.3, heuristic: 0.25}}",
			"combiner cutoffs",
		},
		{
			"weights do not sum to one",
			"combiner: {warning_at: 20, danger_at: 40, weights: {reputation: 0.9, detection: 0.3, heuristic: 0.25}}",
			"sum to 1.0",
		},
		{
			"ipqs without key env",
			"sources: {ipqs: {enabled: true, api_key_env: \"\"}}",
			"api_key_env",
		},
		{
			"bad strictness",
			"sources: {ipqs: {strictness: 7}}",
			"strictness",
		},
	}

	for _, tc := range tests {
		_, err := Parse([]byte(tc.yaml))
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: expected error mentioning %q, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Errorf("default profile must validate: %v", err)
	}
}
