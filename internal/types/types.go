package types

import (
	"fmt"
	"strings"
	"time"
)

// EntityKind identifies which table a reconciliation operation targets.
type EntityKind string

const (
	KindEmployee EntityKind = "employee"
	KindTeam     EntityKind = "team"
	KindRole     EntityKind = "role"
)

// IsValid checks if the entity kind is one we reconcile
func (k EntityKind) IsValid() bool {
	switch k {
	case KindEmployee, KindTeam, KindRole:
		return true
	}
	return false
}

// Team represents a firm that employees are assigned under.
// No two teams may share the same normalized (name, location) pair after
// reconciliation; the merge engine exists to restore that invariant.
type Team struct {
	ID        string    `json:"team_id"`
	FirmName  string    `json:"firm_name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks if the team has valid field values
func (t *Team) Validate() error {
	if strings.TrimSpace(t.FirmName) == "" {
		return fmt.Errorf("firm_name is required")
	}
	return nil
}

// Employee represents one person built from one or more source resumes.
type Employee struct {
	ID           string `json:"employee_id"`
	Name         string `json:"employee_name"`
	TotalYears   *int   `json:"total_years_experience,omitempty"`
	FirmYears    *int   `json:"current_firm_years_experience,omitempty"`
	Education    string `json:"education,omitempty"`
	Registration string `json:"current_professional_registration,omitempty"`
	// SourceFiles lists every resume this record was built from, oldest
	// first. Deduplicated: merging the same file twice never repeats an
	// entry.
	SourceFiles []string  `json:"source_files,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks if the employee has valid field values
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("employee_name is required")
	}
	if e.TotalYears != nil && *e.TotalYears < 0 {
		return fmt.Errorf("total_years_experience cannot be negative (got %d)", *e.TotalYears)
	}
	if e.FirmYears != nil && *e.FirmYears < 0 {
		return fmt.Errorf("current_firm_years_experience cannot be negative (got %d)", *e.FirmYears)
	}
	if e.TotalYears != nil && e.FirmYears != nil && *e.FirmYears > *e.TotalYears {
		return fmt.Errorf("current_firm_years_experience (%d) cannot exceed total_years_experience (%d)",
			*e.FirmYears, *e.TotalYears)
	}
	return nil
}

// Qualification is one professional registration/qualification pair for an
// employee, tagged with the resume it came from. Exactly one qualification
// per employee carries the primary flag.
type Qualification struct {
	ID             string    `json:"qualification_id"`
	EmployeeID     string    `json:"employee_id"`
	Registration   string    `json:"current_professional_registration,omitempty"`
	Other          string    `json:"other_professional_qualifications,omitempty"`
	SourceFilename string    `json:"source_filename"`
	IsPrimary      bool      `json:"is_primary"`
	CreatedAt      time.Time `json:"created_at"`
}

// Project represents one project an employee worked on.
type Project struct {
	ID               string    `json:"project_id"`
	TitleAndLocation string    `json:"title_and_location"`
	ServicesYear     *int      `json:"professional_services_year,omitempty"`
	ConstructionYear *int      `json:"construction_year,omitempty"`
	Scope            string    `json:"description_scope,omitempty"`
	Cost             string    `json:"description_cost,omitempty"`
	Fee              string    `json:"description_fee,omitempty"`
	RoleDescription  string    `json:"description_role,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Validate checks if the project has valid field values
func (p *Project) Validate() error {
	if strings.TrimSpace(p.TitleAndLocation) == "" {
		return fmt.Errorf("title_and_location is required")
	}
	return nil
}

// Assignment binds an employee to an optional team and optional project with
// a comma-joined role string. At most one assignment may exist per
// (employee, project) pair; the merge executor must never violate this when
// it moves rows between employees.
type Assignment struct {
	ID             string    `json:"assignment_id"`
	EmployeeID     string    `json:"employee_id"`
	TeamID         *string   `json:"team_id,omitempty"`
	ProjectID      *string   `json:"project_id,omitempty"`
	Role           string    `json:"role_in_contract,omitempty"`
	Qualifications string    `json:"other_professional_qualifications,omitempty"`
	ProjectOrder   int       `json:"project_order,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// EmployeeStats is an employee plus its relationship counts, used by
// duplicate discovery and merge previews.
type EmployeeStats struct {
	Employee
	AssignmentCount    int `json:"assignment_count"`
	ProjectCount       int `json:"project_count"`
	QualificationCount int `json:"qualification_count"`
}

// TeamStats is a team plus its relationship counts.
type TeamStats struct {
	Team
	AssignmentCount int `json:"assignment_count"`
	EmployeeCount   int `json:"employee_count"`
	ProjectCount    int `json:"project_count"`
}

// NormalizeName lowercases and collapses interior whitespace so two
// spellings of the same name compare equal.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SplitRoleList splits a comma-joined role string into trimmed labels,
// dropping empties.
func SplitRoleList(roles string) []string {
	parts := strings.Split(roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeRoleList deduplicates a comma-joined role string
// case-insensitively, preserving first-seen order and casing.
func NormalizeRoleList(roles string) string {
	seen := make(map[string]bool)
	var out []string
	for _, label := range SplitRoleList(roles) {
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return strings.Join(out, ", ")
}

// MergeSourceFiles combines two source-file lists, deduplicating while
// preserving order (primary's files first).
func MergeSourceFiles(primary, secondary []string) []string {
	seen := make(map[string]bool, len(primary)+len(secondary))
	out := make([]string, 0, len(primary)+len(secondary))
	for _, list := range [][]string{primary, secondary} {
		for _, f := range list {
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
