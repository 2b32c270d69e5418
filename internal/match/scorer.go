// Package match scores how likely two stored entities are the same
// real-world person, firm, or role label.
//
// Scoring is deterministic and purely lexical: the tiers compare normalized
// names only, and callers layer shared-relationship evidence on top. The
// scorer never touches the database, which keeps it trivially testable and
// keeps duplicate discovery a read-only batch scan.
package match

import (
	"strings"
	"unicode"

	"github.com/resumeforge/reconcile/internal/types"
)

// roleKeywords are the category words that group role labels. Two role
// labels sharing any of these compare as the same kind of work even when
// their spellings diverge ("Sr. Engineer" vs "Senior Engineer III").
var roleKeywords = []string{
	"engineer",
	"manager",
	"architect",
	"designer",
	"surveyor",
	"inspector",
	"scientist",
	"technician",
	"planner",
	"estimator",
	"drafter",
}

// Scorer computes bounded [0,1] similarity scores between same-kind
// entities using the tier values in its Config.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer. A zero-value Config is replaced with defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// NameSimilarity scores two entity names. Symmetric, and 1.0 for any name
// against itself. Tiers, highest first:
//
//	exact (case-insensitive)          -> ExactScore
//	equal after stripping non-alnum   -> StrippedScore
//	one contains the other            -> SubstringScore
//	3-char prefix overlap, len > 3    -> PrefixScore
//	otherwise                         -> 0.0
func (s *Scorer) NameSimilarity(a, b string) float64 {
	na := types.NormalizeName(a)
	nb := types.NormalizeName(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return s.cfg.ExactScore
	}
	if stripNonAlnum(na) == stripNonAlnum(nb) {
		return s.cfg.StrippedScore
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return s.cfg.SubstringScore
	}
	if len(na) > 3 && len(nb) > 3 {
		if strings.HasPrefix(na, nb[:3]) || strings.HasPrefix(nb, na[:3]) {
			return s.cfg.PrefixScore
		}
	}
	return 0.0
}

// TeamSimilarity scores two teams by firm name.
func (s *Scorer) TeamSimilarity(a, b *types.Team) float64 {
	return s.NameSimilarity(a.FirmName, b.FirmName)
}

// EmployeeSimilarity scores two employees by display name.
func (s *Scorer) EmployeeSimilarity(a, b *types.Employee) float64 {
	return s.NameSimilarity(a.Name, b.Name)
}

// RoleSimilarity scores two role labels. On top of the name tiers, roles
// sharing a category keyword ("engineer", "manager", ...) score
// RoleKeywordScore, refined to RoleKeywordPrefixScore when their first five
// characters also match. Role comparison is only meaningful within a single
// employee; callers must never compare role labels across employees.
func (s *Scorer) RoleSimilarity(a, b string) float64 {
	score := s.NameSimilarity(a, b)

	na := types.NormalizeName(a)
	nb := types.NormalizeName(b)
	if kw := sharedKeyword(na, nb); kw != "" {
		tier := s.cfg.RoleKeywordScore
		if prefix5(na) == prefix5(nb) {
			tier = s.cfg.RoleKeywordPrefixScore
		}
		if tier > score {
			score = tier
		}
	}
	return score
}

// Qualifies reports whether a scored pair belongs in duplicate-discovery
// results. The requested threshold is floored at MinThreshold; pairs that
// share at least one downstream relationship qualify unconditionally, since
// shared real-world activity is itself evidence of identity.
func (s *Scorer) Qualifies(score float64, sharedRelationships int, requested float64) bool {
	if sharedRelationships > 0 {
		return true
	}
	return score >= s.cfg.EffectiveThreshold(requested)
}

func sharedKeyword(na, nb string) string {
	for _, kw := range roleKeywords {
		if strings.Contains(na, kw) && strings.Contains(nb, kw) {
			return kw
		}
	}
	return ""
}

func prefix5(s string) string {
	if len(s) < 5 {
		return s
	}
	return s[:5]
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
