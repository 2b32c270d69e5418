package match

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resumeforge/reconcile/internal/types"
)

func TestNameSimilarityTiers(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact match", "John Smith", "John Smith", 1.0},
		{"exact case-insensitive", "John Smith", "JOHN SMITH", 1.0},
		{"exact with extra whitespace", "John  Smith", "John Smith", 1.0},
		{"stripped punctuation", "O'Brien", "OBrien", 0.9},
		{"stripped hyphen", "Smith-Jones", "Smith Jones", 0.9},
		{"substring", "Acme Eng", "ACME ENGINEERING", 0.8},
		{"substring reversed", "Acme Engineering", "Acme Eng", 0.8},
		{"three-char prefix", "Jonathan", "Jonas", 0.7},
		{"no match", "Acme Eng", "Zeta Corp", 0.0},
		{"short names never prefix-match", "Jon", "Joe", 0.0},
		{"empty name", "", "John Smith", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.NameSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

// Score symmetry and self-identity hold for every pair of names, not just
// the happy path.
func TestNameSimilarityProperties(t *testing.T) {
	s := NewScorer(DefaultConfig())
	names := []string{
		"John Smith", "Jon Smith", "JOHN SMITH", "Acme Eng",
		"ACME ENGINEERING", "Zeta Corp", "O'Brien", "Sm",
	}

	for _, a := range names {
		assert.InDelta(t, 1.0, s.NameSimilarity(a, a), 1e-9, "score(%q, %q)", a, a)
		for _, b := range names {
			assert.InDelta(t, s.NameSimilarity(a, b), s.NameSimilarity(b, a), 1e-9,
				"symmetry for %q / %q", a, b)
		}
	}
}

func TestRoleSimilarityKeywordTiers(t *testing.T) {
	s := NewScorer(DefaultConfig())

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"shared keyword only", "Structural Engineer", "Civil Engineer", 0.7},
		{"shared keyword and 5-char prefix", "Senior Engineer", "Senior Structural Engineer", 0.8},
		{"exact role still wins", "Project Engineer", "project engineer", 1.0},
		{"unrelated roles", "Project Manager", "Lead Engineer", 0.0},
		{"no keyword no prefix", "QA Lead", "Surveyor", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.RoleSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRoleSimilaritySymmetry(t *testing.T) {
	s := NewScorer(DefaultConfig())
	roles := []string{"Project Engineer", "Senior Engineer", "Project Manager", "Drafter"}
	for _, a := range roles {
		for _, b := range roles {
			assert.InDelta(t, s.RoleSimilarity(a, b), s.RoleSimilarity(b, a), 1e-9)
		}
	}
}

func TestEntitySimilarityWrappers(t *testing.T) {
	s := NewScorer(DefaultConfig())
	assert.InDelta(t, 1.0, s.TeamSimilarity(
		&types.Team{FirmName: "Acme Eng"},
		&types.Team{FirmName: "acme eng"},
	), 1e-9)
	assert.InDelta(t, 0.8, s.EmployeeSimilarity(
		&types.Employee{Name: "Jo Ann Smith"},
		&types.Employee{Name: "Jo Ann Smithson"},
	), 1e-9)
}

func TestQualifies(t *testing.T) {
	s := NewScorer(DefaultConfig())

	// Below the floor even when the caller asks for less.
	assert.False(t, s.Qualifies(0.3, 0, 0.0))
	// At the effective threshold.
	assert.True(t, s.Qualifies(0.7, 0, 0.7))
	assert.False(t, s.Qualifies(0.69, 0, 0.7))
	// Shared relationships qualify a pair at any score.
	assert.True(t, s.Qualifies(0.0, 1, 0.9))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.PrefixScore = 1.5
	assert.Error(t, bad.Validate())

	inverted := DefaultConfig()
	inverted.SubstringScore = 0.95
	assert.Error(t, inverted.Validate())
}

func TestEffectiveThreshold(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 0.5, cfg.EffectiveThreshold(0.1), 1e-9)
	assert.InDelta(t, 0.8, cfg.EffectiveThreshold(0.8), 1e-9)
}
