package match

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the similarity tier scores and the threshold floor.
//
// The tier values are hand-tuned heuristics carried over from the original
// duplicate-detection rules. They are configurable constants, not semantics:
// nothing downstream assumes their exact values beyond the ordering
// exact > stripped > substring > prefix.
type Config struct {
	// ExactScore is awarded for a case-insensitive exact name match.
	// Default: 1.0
	ExactScore float64

	// StrippedScore is awarded when names are equal after removing all
	// non-alphanumeric characters. Default: 0.9
	StrippedScore float64

	// SubstringScore is awarded when one normalized name contains the
	// other. Default: 0.8
	SubstringScore float64

	// PrefixScore is awarded when both names are longer than 3 characters
	// and one's first 3 characters prefix the other. Default: 0.7
	PrefixScore float64

	// RoleKeywordPrefixScore is the role-only tier for a shared category
	// keyword plus a matching 5-character prefix. Default: 0.8
	RoleKeywordPrefixScore float64

	// RoleKeywordScore is the role-only tier for a shared category
	// keyword alone. Default: 0.7
	RoleKeywordScore float64

	// MinThreshold floors caller-supplied thresholds so a careless 0.0
	// request cannot flood the results with unrelated entities.
	// Pairs sharing at least one downstream relationship bypass the
	// floor entirely. Default: 0.5
	MinThreshold float64
}

// DefaultConfig returns the similarity configuration used in production.
func DefaultConfig() Config {
	return Config{
		ExactScore:             1.0,
		StrippedScore:          0.9,
		SubstringScore:         0.8,
		PrefixScore:            0.7,
		RoleKeywordPrefixScore: 0.8,
		RoleKeywordScore:       0.7,
		MinThreshold:           0.5,
	}
}

// FromEnv applies RECONCILE_MATCH_* environment overrides on top of c.
func (c Config) FromEnv() Config {
	if v := os.Getenv("RECONCILE_MATCH_MIN_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.MinThreshold = f
		}
	}
	return c
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	scores := map[string]float64{
		"exact_score":               c.ExactScore,
		"stripped_score":            c.StrippedScore,
		"substring_score":           c.SubstringScore,
		"prefix_score":              c.PrefixScore,
		"role_keyword_prefix_score": c.RoleKeywordPrefixScore,
		"role_keyword_score":        c.RoleKeywordScore,
		"min_threshold":             c.MinThreshold,
	}
	for name, s := range scores {
		if s < 0.0 || s > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0 (got %.2f)", name, s)
		}
	}
	if c.StrippedScore > c.ExactScore {
		return fmt.Errorf("stripped_score (%.2f) cannot exceed exact_score (%.2f)", c.StrippedScore, c.ExactScore)
	}
	if c.SubstringScore > c.StrippedScore {
		return fmt.Errorf("substring_score (%.2f) cannot exceed stripped_score (%.2f)", c.SubstringScore, c.StrippedScore)
	}
	if c.PrefixScore > c.SubstringScore {
		return fmt.Errorf("prefix_score (%.2f) cannot exceed substring_score (%.2f)", c.PrefixScore, c.SubstringScore)
	}
	return nil
}

// EffectiveThreshold floors a caller-supplied threshold at MinThreshold.
func (c Config) EffectiveThreshold(requested float64) float64 {
	if requested < c.MinThreshold {
		return c.MinThreshold
	}
	return requested
}
