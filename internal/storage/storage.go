// Package storage defines the relational store surface the reconciliation
// subsystem is built on. The sqlite subpackage provides the backend; all
// multi-table mutations (candidate writes, merges, cascading deletes) are
// single transactions there.
package storage

import (
	"context"

	"github.com/resumeforge/reconcile/internal/types"
)

// Storage is the transactional store for teams, employees, projects,
// assignments and qualifications.
type Storage interface {
	// WriteCandidate persists one extracted candidate record as a fresh
	// employee/team/project/assignment/qualification tuple in a single
	// transaction. Returns the id of the employee written. No merging
	// happens at write time; reconciliation is a separate explicit step.
	WriteCandidate(ctx context.Context, rec *types.CandidateRecord, sourceFilename string) (string, error)

	// Entity reads. All return types.ErrNotFound for absent ids.
	GetEmployee(ctx context.Context, id string) (*types.Employee, error)
	GetTeam(ctx context.Context, id string) (*types.Team, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)

	// Lists with relationship counts, for duplicate discovery and
	// previews.
	ListEmployees(ctx context.Context) ([]*types.EmployeeStats, error)
	ListTeams(ctx context.Context) ([]*types.TeamStats, error)
	ListAssignments(ctx context.Context, employeeID string) ([]*types.Assignment, error)
	ListQualifications(ctx context.Context, employeeID string) ([]*types.Qualification, error)

	// EmployeeRoles returns the distinct role labels across one
	// employee's assignments. Role reconciliation is always scoped to a
	// single employee.
	EmployeeRoles(ctx context.Context, employeeID string) ([]string, error)

	// SharedProjectCount counts distinct projects two same-kind entities
	// (employees or teams) both touch.
	SharedProjectCount(ctx context.Context, kind types.EntityKind, idA, idB string) (int, error)

	// Merge previews: read-only impact reports.
	PreviewEmployeeMerge(ctx context.Context, primaryID, secondaryID string) (*types.MergeImpact, error)
	PreviewTeamMerge(ctx context.Context, primaryID, secondaryID string) (*types.MergeImpact, error)

	// Merge executors: all-or-nothing transactional merges. The
	// secondary entity is gone afterwards.
	MergeEmployees(ctx context.Context, primaryID, secondaryID string, policy types.FieldPolicy) (*types.MergeResult, error)
	MergeTeams(ctx context.Context, primaryID, secondaryID string, policy types.FieldPolicy) (*types.MergeResult, error)

	// MergeRoles folds secondaryRole into primaryRole across one
	// employee's assignments, normalizing the resulting role lists.
	MergeRoles(ctx context.Context, employeeID, primaryRole, secondaryRole string) (*types.RoleMergeResult, error)

	// SetPrimaryQualification moves the primary flag to the given
	// qualification, clearing it elsewhere.
	SetPrimaryQualification(ctx context.Context, employeeID, qualificationID string) error

	// DeleteEmployee removes an employee outright, cascading to its
	// assignments and qualifications and sweeping any projects left
	// with zero assignments.
	DeleteEmployee(ctx context.Context, id string) error

	// SweepOrphanProjects deletes projects with zero assignments and
	// returns how many were removed. Callable on its own so the
	// "orphan projects are deleted" invariant is independently
	// verifiable.
	SweepOrphanProjects(ctx context.Context) (int, error)

	// Statistics reports row counts per table.
	Statistics(ctx context.Context) (*Stats, error)

	// Lifecycle
	Close() error
}

// Stats holds row counts per table.
type Stats struct {
	Employees      int `json:"employees"`
	Teams          int `json:"teams"`
	Projects       int `json:"projects"`
	Assignments    int `json:"assignments"`
	Qualifications int `json:"qualifications"`
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path.
	// Special value ":memory:" creates an in-memory database (useful
	// for tests).
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".reconcile/reconcile.db",
	}
}
