// Package reconcile discovers merge candidates: pairs of employees,
// teams or role labels similar enough that a reviewer should decide
// whether they are the same thing. Discovery never mutates anything;
// merges are explicit, separate operations.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/resumeforge/reconcile/internal/match"
	"github.com/resumeforge/reconcile/internal/storage"
	"github.com/resumeforge/reconcile/internal/types"
)

// CandidatePair is one suggested merge, primary first.
type CandidatePair struct {
	Kind        types.EntityKind `json:"kind"`
	PrimaryID   string           `json:"primary_id"`
	SecondaryID string           `json:"secondary_id"`

	PrimaryName   string `json:"primary_name"`
	SecondaryName string `json:"secondary_name"`

	Score          float64 `json:"score"`
	SharedProjects int     `json:"shared_projects"`

	// Reason is a short human-readable note on why the pair qualified.
	Reason string `json:"reason"`
}

// Finder scans the store for duplicate candidates.
type Finder struct {
	store  storage.Storage
	scorer *match.Scorer
	log    zerolog.Logger
}

// NewFinder creates a finder over the given store.
func NewFinder(store storage.Storage, scorer *match.Scorer, log zerolog.Logger) *Finder {
	return &Finder{store: store, scorer: scorer, log: log}
}

// FindDuplicateEmployees returns qualifying employee pairs at or above
// the threshold, ranked by score then shared projects. Pairs with shared
// projects qualify regardless of threshold.
func (f *Finder) FindDuplicateEmployees(ctx context.Context, threshold float64) ([]CandidatePair, error) {
	employees, err := f.store.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	var pairs []CandidatePair
	for i := 0; i < len(employees); i++ {
		for j := i + 1; j < len(employees); j++ {
			a, b := employees[i], employees[j]
			score := f.scorer.EmployeeSimilarity(&a.Employee, &b.Employee)

			shared, err := f.store.SharedProjectCount(ctx, types.KindEmployee, a.ID, b.ID)
			if err != nil {
				return nil, err
			}
			if !f.scorer.Qualifies(score, shared, threshold) {
				continue
			}

			primary, secondary := orderEmployeePair(a, b)
			pairs = append(pairs, CandidatePair{
				Kind:           types.KindEmployee,
				PrimaryID:      primary.ID,
				SecondaryID:    secondary.ID,
				PrimaryName:    primary.Name,
				SecondaryName:  secondary.Name,
				Score:          score,
				SharedProjects: shared,
				Reason:         pairReason(score, shared, threshold),
			})
		}
	}

	rankPairs(pairs)
	f.log.Debug().Int("candidates", len(pairs)).Float64("threshold", threshold).
		Msg("employee duplicate scan complete")
	return pairs, nil
}

// FindDuplicateTeams returns qualifying team pairs at or above the
// threshold.
func (f *Finder) FindDuplicateTeams(ctx context.Context, threshold float64) ([]CandidatePair, error) {
	teams, err := f.store.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	var pairs []CandidatePair
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			a, b := teams[i], teams[j]
			score := f.scorer.TeamSimilarity(&a.Team, &b.Team)

			shared, err := f.store.SharedProjectCount(ctx, types.KindTeam, a.ID, b.ID)
			if err != nil {
				return nil, err
			}
			if !f.scorer.Qualifies(score, shared, threshold) {
				continue
			}

			primary, secondary := orderTeamPair(a, b)
			pairs = append(pairs, CandidatePair{
				Kind:           types.KindTeam,
				PrimaryID:      primary.ID,
				SecondaryID:    secondary.ID,
				PrimaryName:    primary.FirmName,
				SecondaryName:  secondary.FirmName,
				Score:          score,
				SharedProjects: shared,
				Reason:         pairReason(score, shared, threshold),
			})
		}
	}

	rankPairs(pairs)
	return pairs, nil
}

// FindDuplicateRoles returns qualifying role-label pairs within one
// employee's assignments. Role scans never cross employees.
func (f *Finder) FindDuplicateRoles(ctx context.Context, employeeID string, threshold float64) ([]CandidatePair, error) {
	roles, err := f.store.EmployeeRoles(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	var pairs []CandidatePair
	for i := 0; i < len(roles); i++ {
		for j := i + 1; j < len(roles); j++ {
			score := f.scorer.RoleSimilarity(roles[i], roles[j])
			if !f.scorer.Qualifies(score, 0, threshold) {
				continue
			}

			// The longer label usually carries more detail; keep it.
			primary, secondary := roles[i], roles[j]
			if len(secondary) > len(primary) {
				primary, secondary = secondary, primary
			}
			pairs = append(pairs, CandidatePair{
				Kind:          types.KindRole,
				PrimaryID:     employeeID,
				SecondaryID:   employeeID,
				PrimaryName:   primary,
				SecondaryName: secondary,
				Score:         score,
				Reason:        pairReason(score, 0, threshold),
			})
		}
	}

	rankPairs(pairs)
	return pairs, nil
}

// orderEmployeePair picks the suggested survivor: richer data first,
// older row as tiebreak.
func orderEmployeePair(a, b *types.EmployeeStats) (*types.EmployeeStats, *types.EmployeeStats) {
	ra, rb := employeeRichness(a), employeeRichness(b)
	if ra != rb {
		if ra > rb {
			return a, b
		}
		return b, a
	}
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	return a, b
}

func employeeRichness(e *types.EmployeeStats) int {
	n := e.AssignmentCount + e.QualificationCount + len(e.Education) + len(e.Registration)
	if e.TotalYears != nil {
		n++
	}
	if e.FirmYears != nil {
		n++
	}
	return n
}

func orderTeamPair(a, b *types.TeamStats) (*types.TeamStats, *types.TeamStats) {
	ra := a.AssignmentCount + len(a.Location)
	rb := b.AssignmentCount + len(b.Location)
	if ra != rb {
		if ra > rb {
			return a, b
		}
		return b, a
	}
	if b.CreatedAt.Before(a.CreatedAt) {
		return b, a
	}
	return a, b
}

func pairReason(score float64, shared int, threshold float64) string {
	if shared > 0 {
		return fmt.Sprintf("%d shared project(s), similarity %.2f", shared, score)
	}
	return fmt.Sprintf("similarity %.2f at threshold %.2f", score, threshold)
}

// rankPairs sorts by score descending, then shared projects descending,
// then names for a stable display order.
func rankPairs(pairs []CandidatePair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Score != pairs[j].Score {
			return pairs[i].Score > pairs[j].Score
		}
		if pairs[i].SharedProjects != pairs[j].SharedProjects {
			return pairs[i].SharedProjects > pairs[j].SharedProjects
		}
		if pairs[i].PrimaryName != pairs[j].PrimaryName {
			return pairs[i].PrimaryName < pairs[j].PrimaryName
		}
		return pairs[i].SecondaryName < pairs[j].SecondaryName
	})
}
