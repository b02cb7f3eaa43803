package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings is the numeric tuning surface of the duplicate detector and the
// escalation sweeper. Every field is optional in the environment; the
// defaults are the production values.
type Settings struct {
	// Duplicate detection.
	DuplicateRadiusMeters   float64 `envconfig:"DUPLICATE_THRESHOLD_METERS" default:"50"`
	PhashHammingThreshold   int     `envconfig:"PHASH_HAMMING_THRESHOLD" default:"10"`
	DuplicateWindowDays     int     `envconfig:"DUPLICATE_TIME_WINDOW_DAYS" default:"30"`
	TextSimilarityThreshold float64 `envconfig:"TEXT_SIMILARITY_THRESHOLD" default:"0.6"`

	// Escalation sweeper.
	EscalationDays     int           `envconfig:"ESCALATION_DAYS" default:"7"`
	MaxEscalationLevel int           `envconfig:"MAX_ESCALATION_LEVEL" default:"2"`
	SweepInterval      time.Duration `envconfig:"ESCALATION_CHECK_INTERVAL" default:"24h"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	err := envconfig.Process("", &s)
	return s, err
}

// DuplicateWindow returns the candidate time window as a duration.
func (s Settings) DuplicateWindow() time.Duration {
	return time.Duration(s.DuplicateWindowDays) * 24 * time.Hour
}

// EscalationAge returns the staleness threshold as a duration.
func (s Settings) EscalationAge() time.Duration {
	return time.Duration(s.EscalationDays) * 24 * time.Hour
}
