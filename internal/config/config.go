package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marthaea/link-guardian-safecheck/internal/heuristic"
	"github.com/marthaea/link-guardian-safecheck/internal/verdict"
)

// Profile is the top-level scan configuration loaded from YAML. It pins
// one explicit threshold set for the whole process; nothing downstream
// may vary thresholds per call site.
type Profile struct {
	Version     string `yaml:"version" json:"version"`
	ProfileName string `yaml:"profile_name" json:"profile_name"`

	// Heuristic-only classifier cutoffs.
	Heuristic heuristic.Thresholds `yaml:"heuristic_thresholds" json:"heuristic_thresholds"`

	// Combiner thresholds and weight vector.
	Combiner verdict.Policy `yaml:"combiner" json:"combiner"`

	Sources SourcesConfig `yaml:"sources" json:"sources"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// SourcesConfig controls which external reputation sources run.
type SourcesConfig struct {
	// TimeoutSeconds bounds each external lookup.
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`

	// Simulate enables the deterministic demo sources.
	Simulate bool `yaml:"simulate" json:"simulate"`

	IPQS IPQSConfig `yaml:"ipqs" json:"ipqs"`
}

// IPQSConfig configures the real IPQS client. The key itself stays in
// the environment; the profile only names the variable.
type IPQSConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	APIKeyEnv  string `yaml:"api_key_env" json:"api_key_env"`
	Strictness int    `yaml:"strictness" json:"strictness"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Listen    string `yaml:"listen" json:"listen"`
	HistoryDB string `yaml:"history_db" json:"history_db"`
}

// Default returns the built-in profile used when no file is given.
func Default() *Profile {
	return &Profile{
		Version:     "1",
		ProfileName: "default",
		Heuristic:   heuristic.DefaultThresholds,
		Combiner:    verdict.DefaultPolicy,
		Sources: SourcesConfig{
			TimeoutSeconds: 15,
			Simulate:       true,
			IPQS: IPQSConfig{
				APIKeyEnv:  "IPQS_API_KEY",
				Strictness: 2,
			},
		},
		Server: ServerConfig{
			Listen:    ":8080",
			HistoryDB: "linkguardian.db",
		},
	}
}

// LoadFromFile loads a profile from a YAML file.
func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML bytes into a Profile, applying defaults for omitted
// sections and validating the result.
func Parse(data []byte) (*Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing profile YAML: %w", err)
	}
	if err := validate(p); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	return p, nil
}

// SourceTimeout returns the per-lookup timeout as a duration.
func (p *Profile) SourceTimeout() time.Duration {
	if p.Sources.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(p.Sources.TimeoutSeconds) * time.Second
}

// IPQSKey resolves the configured API key from the environment. Empty
// means the real client stays disabled.
func (p *Profile) IPQSKey() string {
	if p.Sources.IPQS.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.Sources.IPQS.APIKeyEnv)
}

func validate(p *Profile) error {
	if p.Version == "" {
		return fmt.Errorf("version is required")
	}
	if p.ProfileName == "" {
		return fmt.Errorf("profile_name is required")
	}
	if p.Heuristic.Medium <= 0 || p.Heuristic.High <= p.Heuristic.Medium {
		return fmt.Errorf("heuristic thresholds must satisfy 0 < medium < high, got %d/%d",
			p.Heuristic.Medium, p.Heuristic.High)
	}
	if p.Combiner.WarningAt <= 0 || p.Combiner.DangerAt <= p.Combiner.WarningAt {
		return fmt.Errorf("combiner cutoffs must satisfy 0 < warning_at < danger_at, got %d/%d",
			p.Combiner.WarningAt, p.Combiner.DangerAt)
	}
	if p.Combiner.DetectionRatioCutoff < 0 || p.Combiner.DetectionRatioCutoff > 1 {
		return fmt.Errorf("detection_ratio_cutoff must be within [0,1], got %f",
			p.Combiner.DetectionRatioCutoff)
	}

	w := p.Combiner.Weights
	if w.Reputation < 0 || w.Detection < 0 || w.Heuristic <= 0 {
		return fmt.Errorf("weights must be non-negative with a positive heuristic weight")
	}
	if sum := w.Reputation + w.Detection + w.Heuristic; math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("weights must sum to 1.0, got %.3f", sum)
	}

	if s := p.Sources.IPQS.Strictness; s < 0 || s > 2 {
		return fmt.Errorf("ipqs strictness must be 0-2, got %d", s)
	}
	if p.Sources.IPQS.Enabled && p.Sources.IPQS.APIKeyEnv == "" {
		return fmt.Errorf("ipqs enabled but api_key_env is empty")
	}
	return nil
}
