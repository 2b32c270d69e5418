package types

import (
	"fmt"
	"time"
)

// FieldPolicy decides, per scalar field, which side of a merge wins.
type FieldPolicy string

const (
	// PolicyPreferPrimary always keeps the primary's value.
	PolicyPreferPrimary FieldPolicy = "primary"

	// PolicyPreferSecondary takes the secondary's value when it is set.
	PolicyPreferSecondary FieldPolicy = "secondary"

	// PolicyPreferRicher keeps whichever value carries more information:
	// non-empty over empty, then the longer string or larger number,
	// then the primary. This is the default.
	PolicyPreferRicher FieldPolicy = "richer"
)

// IsValid checks if the field policy is a known strategy
func (p FieldPolicy) IsValid() bool {
	switch p {
	case PolicyPreferPrimary, PolicyPreferSecondary, PolicyPreferRicher:
		return true
	}
	return false
}

// ResolveString applies the policy to one string field.
func (p FieldPolicy) ResolveString(primary, secondary string) string {
	switch p {
	case PolicyPreferPrimary:
		if primary != "" {
			return primary
		}
		return secondary
	case PolicyPreferSecondary:
		if secondary != "" {
			return secondary
		}
		return primary
	default: // PolicyPreferRicher
		if primary == "" {
			return secondary
		}
		if secondary == "" {
			return primary
		}
		if len(secondary) > len(primary) {
			return secondary
		}
		return primary
	}
}

// ResolveInt applies the policy to one nullable numeric field.
func (p FieldPolicy) ResolveInt(primary, secondary *int) *int {
	switch p {
	case PolicyPreferPrimary:
		if primary != nil {
			return primary
		}
		return secondary
	case PolicyPreferSecondary:
		if secondary != nil {
			return secondary
		}
		return primary
	default: // PolicyPreferRicher
		if primary == nil {
			return secondary
		}
		if secondary == nil {
			return primary
		}
		if *secondary > *primary {
			return secondary
		}
		return primary
	}
}

// ResolveExperience resolves the total/firm experience pair under the
// policy. The two fields resolve together because firm tenure can never
// exceed total experience: when each side contributes a different field,
// independent resolution can pair a firm value with a smaller total, so
// a resolved firm value above the resolved total is capped to it.
func (p FieldPolicy) ResolveExperience(primaryTotal, primaryFirm, secondaryTotal, secondaryFirm *int) (total, firm *int) {
	total = p.ResolveInt(primaryTotal, secondaryTotal)
	firm = p.ResolveInt(primaryFirm, secondaryFirm)
	if total != nil && firm != nil && *firm > *total {
		capped := *total
		firm = &capped
	}
	return total, firm
}

// MergeImpact is the read-only preview of combining two entities. Nothing
// is deduplicated at preview time; the after-counts report worst case plus
// the overlap that the executor will drop.
type MergeImpact struct {
	Kind        EntityKind `json:"kind"`
	PrimaryID   string     `json:"primary_id"`
	SecondaryID string     `json:"secondary_id"`

	PrimaryName   string `json:"primary_name"`
	SecondaryName string `json:"secondary_name"`

	PrimaryAssignments   int `json:"primary_assignments"`
	SecondaryAssignments int `json:"secondary_assignments"`

	// Qualification counts are employee merges only; qualifications are
	// never deduplicated by content, so after = primary + secondary.
	PrimaryQualifications   int `json:"primary_qualifications,omitempty"`
	SecondaryQualifications int `json:"secondary_qualifications,omitempty"`

	// OverlappingAssignments counts secondary assignment rows that
	// collide with a primary row under the uniqueness key and will be
	// dropped by the executor.
	OverlappingAssignments int `json:"overlapping_assignments"`

	TotalAssignmentsBefore int `json:"total_assignments_before"`
	AssignmentsAfter       int `json:"assignments_after"`
	QualificationsAfter    int `json:"qualifications_after,omitempty"`
}

// Record flattens the impact into a field->value map for logging or
// display by external tooling.
func (m *MergeImpact) Record() map[string]any {
	return map[string]any{
		"kind":                     string(m.Kind),
		"primary_id":               m.PrimaryID,
		"secondary_id":             m.SecondaryID,
		"primary_name":             m.PrimaryName,
		"secondary_name":           m.SecondaryName,
		"primary_assignments":      m.PrimaryAssignments,
		"secondary_assignments":    m.SecondaryAssignments,
		"overlapping_assignments":  m.OverlappingAssignments,
		"total_assignments_before": m.TotalAssignmentsBefore,
		"assignments_after":        m.AssignmentsAfter,
		"qualifications_after":     m.QualificationsAfter,
	}
}

// MergeResult is the audit record of one executed merge.
type MergeResult struct {
	Kind        EntityKind `json:"kind"`
	PrimaryID   string     `json:"primary_id"`
	SecondaryID string     `json:"secondary_id"`

	PrimaryName   string `json:"primary_name"`
	SecondaryName string `json:"secondary_name"`

	QualificationsMoved         int `json:"qualifications_moved,omitempty"`
	AssignmentsMoved            int `json:"assignments_moved"`
	DuplicateAssignmentsRemoved int `json:"duplicate_assignments_removed"`

	// FinalFields holds the post-policy scalar values on the surviving
	// entity.
	FinalFields map[string]string `json:"final_fields,omitempty"`

	Policy   FieldPolicy `json:"policy"`
	MergedAt time.Time   `json:"merged_at"`
}

// Record flattens the result into a field->value map for audit logging.
func (r *MergeResult) Record() map[string]any {
	rec := map[string]any{
		"kind":                          string(r.Kind),
		"primary_id":                    r.PrimaryID,
		"secondary_id":                  r.SecondaryID,
		"primary_name":                  r.PrimaryName,
		"secondary_name":                r.SecondaryName,
		"qualifications_moved":          r.QualificationsMoved,
		"assignments_moved":             r.AssignmentsMoved,
		"duplicate_assignments_removed": r.DuplicateAssignmentsRemoved,
		"policy":                        string(r.Policy),
		"merged_at":                     r.MergedAt.UTC().Format(time.RFC3339),
	}
	for field, value := range r.FinalFields {
		rec["final_"+field] = value
	}
	return rec
}

// RoleMergeResult is the audit record of one role-label merge, always
// scoped to a single employee.
type RoleMergeResult struct {
	EmployeeID         string    `json:"employee_id"`
	PrimaryRole        string    `json:"primary_role"`
	SecondaryRole      string    `json:"secondary_role"`
	FinalRole          string    `json:"final_role"`
	AssignmentsUpdated int       `json:"assignments_updated"`
	MergedAt           time.Time `json:"merged_at"`
}

// Record flattens the result into a field->value map for audit logging.
func (r *RoleMergeResult) Record() map[string]any {
	return map[string]any{
		"employee_id":         r.EmployeeID,
		"primary_role":        r.PrimaryRole,
		"secondary_role":      r.SecondaryRole,
		"final_role":          r.FinalRole,
		"assignments_updated": r.AssignmentsUpdated,
		"merged_at":           r.MergedAt.UTC().Format(time.RFC3339),
	}
}

// ValidateMergePair rejects the argument mistakes shared by preview and
// execute: blank ids and self-merges.
func ValidateMergePair(primaryID, secondaryID string) error {
	if primaryID == "" || secondaryID == "" {
		return fmt.Errorf("%w: primary and secondary ids are required", ErrInvalidArgument)
	}
	if primaryID == secondaryID {
		return fmt.Errorf("%w: cannot merge an entity with itself", ErrInvalidArgument)
	}
	return nil
}
