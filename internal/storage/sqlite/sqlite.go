// Package sqlite implements the reconciliation store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/resumeforge/reconcile/internal/storage"
	"github.com/resumeforge/reconcile/internal/types"
)

// SQLiteStorage implements the storage.Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ storage.Storage = (*SQLiteStorage)(nil)

// New creates a new SQLite storage backend
func New(path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// WAL mode for better concurrency; foreign keys enforce the cascade
	// semantics the delete paths rely on.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// newID returns a fresh entity id.
func newID() string {
	return uuid.NewString()
}

// joinSourceFiles encodes a source-file list as the comma-joined text the
// employees table stores.
func joinSourceFiles(files []string) string {
	return strings.Join(files, ", ")
}

// splitSourceFiles decodes the stored comma-joined source-file text.
func splitSourceFiles(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteCandidate persists one extracted record as fresh rows in a single
// transaction. Teams and projects are found-or-created by name so repeat
// submissions share them, but employees are matched by name only to fold
// repeat resumes of the same spelling; near-duplicate names stay separate
// rows until an explicit merge.
func (s *SQLiteStorage) WriteCandidate(ctx context.Context, rec *types.CandidateRecord, sourceFilename string) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("%w: candidate record is required", types.ErrInvalidArgument)
	}
	if err := rec.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	var teamID *string
	if firm := strings.TrimSpace(rec.FirmName()); firm != "" {
		id, err := findOrCreateTeam(ctx, tx, firm, rec.FirmLocation(), now)
		if err != nil {
			return "", err
		}
		teamID = &id
	}

	employeeID, err := upsertEmployee(ctx, tx, rec, sourceFilename, now)
	if err != nil {
		return "", err
	}

	if err := insertQualification(ctx, tx, employeeID, rec, sourceFilename, now); err != nil {
		return "", err
	}

	role := types.NormalizeRoleList(rec.RoleInContract)

	projectRows := 0
	for i, p := range rec.Projects {
		title := strings.TrimSpace(p.TitleAndLocation)
		if title == "" {
			continue
		}
		projectID, err := findOrCreateProject(ctx, tx, &p, now)
		if err != nil {
			return "", err
		}
		if err := insertAssignment(ctx, tx, employeeID, teamID, &projectID, role, rec.OtherQualifications, i+1, now); err != nil {
			return "", err
		}
		projectRows++
	}

	// No usable projects (none listed, or all blank-titled): the role
	// and team still need an assignment row to live on.
	if projectRows == 0 {
		if err := insertAssignment(ctx, tx, employeeID, teamID, nil, role, rec.OtherQualifications, 1, now); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: failed to commit candidate write: %v", types.ErrTransaction, err)
	}
	return employeeID, nil
}

func findOrCreateTeam(ctx context.Context, tx *sql.Tx, firm, location string, now time.Time) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT team_id FROM teams
		WHERE firm_name = ? COLLATE NOCASE AND location = ? COLLATE NOCASE
	`, firm, location).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up team %s: %w", firm, err)
	}

	team := types.Team{ID: newID(), FirmName: firm, Location: location}
	if err := team.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
	}
	id = team.ID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO teams (team_id, firm_name, location, created_at)
		VALUES (?, ?, ?, ?)
	`, id, firm, location, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert team %s: %w", firm, err)
	}
	return id, nil
}

// upsertEmployee finds an employee by exact (case-insensitive) name and
// folds the new resume's scalars into it, or creates a fresh row. Folding
// prefers the richer value per field; the source-file list is appended
// with dedup.
func upsertEmployee(ctx context.Context, tx *sql.Tx, rec *types.CandidateRecord, sourceFilename string, now time.Time) (string, error) {
	name := strings.TrimSpace(rec.Name)
	totalYears := types.ParseYears(rec.YearsExperience.Total)
	firmYears := types.ParseYears(rec.YearsExperience.WithCurrentFirm)
	if totalYears != nil && firmYears != nil && *firmYears > *totalYears {
		// Documents sometimes claim more firm tenure than total
		// experience; total wins.
		firmYears = totalYears
	}

	var (
		id           string
		education    string
		registration string
		sources      string
		curTotal     sql.NullInt64
		curFirm      sql.NullInt64
	)
	err := tx.QueryRowContext(ctx, `
		SELECT employee_id, education, current_professional_registration,
		       source_filename, total_years_experience, current_firm_years_experience
		FROM employees
		WHERE employee_name = ? COLLATE NOCASE
	`, name).Scan(&id, &education, &registration, &sources, &curTotal, &curFirm)

	if err == sql.ErrNoRows {
		id = newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO employees (
				employee_id, employee_name, total_years_experience,
				current_firm_years_experience, education,
				current_professional_registration, source_filename,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, name, nullableInt(totalYears), nullableInt(firmYears),
			rec.Education, rec.Registration, sourceFilename, now, now)
		if err != nil {
			return "", fmt.Errorf("failed to insert employee %s: %w", name, err)
		}
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up employee %s: %w", name, err)
	}

	richer := types.PolicyPreferRicher
	newSources := types.MergeSourceFiles(splitSourceFiles(sources), []string{sourceFilename})
	newTotal, newFirm := richer.ResolveExperience(
		nullIntPtr(curTotal), nullIntPtr(curFirm), totalYears, firmYears)

	_, err = tx.ExecContext(ctx, `
		UPDATE employees SET
			education = ?,
			current_professional_registration = ?,
			total_years_experience = ?,
			current_firm_years_experience = ?,
			source_filename = ?,
			updated_at = ?
		WHERE employee_id = ?
	`, richer.ResolveString(education, rec.Education),
		richer.ResolveString(registration, rec.Registration),
		nullableInt(newTotal), nullableInt(newFirm),
		joinSourceFiles(newSources), now, id)
	if err != nil {
		return "", fmt.Errorf("failed to update employee %s: %w", name, err)
	}
	return id, nil
}

func findOrCreateProject(ctx context.Context, tx *sql.Tx, p *types.CandidateProject, now time.Time) (string, error) {
	title := strings.TrimSpace(p.TitleAndLocation)

	var id string
	err := tx.QueryRowContext(ctx, `
		SELECT project_id FROM projects WHERE title_and_location = ? COLLATE NOCASE
	`, title).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up project %s: %w", title, err)
	}

	project := types.Project{ID: newID(), TitleAndLocation: title}
	if err := project.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrInvalidArgument, err)
	}
	id = project.ID
	_, err = tx.ExecContext(ctx, `
		INSERT INTO projects (
			project_id, title_and_location, professional_services_year,
			construction_year, description_scope, description_cost,
			description_fee, description_role, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, title,
		nullableInt(types.ParseYears(p.YearCompleted.ProfessionalServices)),
		nullableInt(types.ParseYears(p.YearCompleted.Construction)),
		p.Description.Scope, p.Description.Cost, p.Description.Fee,
		p.Description.Role, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert project %s: %w", title, err)
	}
	return id, nil
}

// insertAssignment adds one assignment unless an identical one (or, for
// project rows, any row for the same (employee, project) pair) exists.
func insertAssignment(ctx context.Context, tx *sql.Tx, employeeID string, teamID, projectID *string, role, otherQuals string, order int, now time.Time) error {
	var exists int
	var err error
	if projectID != nil {
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM assignments
			WHERE employee_id = ? AND project_id = ?
		`, employeeID, *projectID).Scan(&exists)
	} else {
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM assignments
			WHERE employee_id = ? AND project_id IS NULL
			  AND team_id IS ? AND role_in_contract = ?
		`, employeeID, nullableStr(teamID), role).Scan(&exists)
	}
	if err != nil {
		return fmt.Errorf("failed to check for existing assignment: %w", err)
	}
	if exists > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assignments (
			assignment_id, employee_id, team_id, project_id,
			role_in_contract, other_professional_qualifications,
			project_order, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, newID(), employeeID, nullableStr(teamID), nullableStr(projectID),
		role, otherQuals, order, now)
	if err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// insertQualification records the resume's registration entry, skipping
// exact duplicates from the same source file. The employee's first
// qualification gets the primary flag.
func insertQualification(ctx context.Context, tx *sql.Tx, employeeID string, rec *types.CandidateRecord, sourceFilename string, now time.Time) error {
	registration := strings.TrimSpace(rec.Registration)
	other := strings.TrimSpace(rec.OtherQualifications)
	if registration == "" && other == "" {
		return nil
	}

	var exists int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM qualifications
		WHERE employee_id = ? AND source_filename = ?
		  AND current_professional_registration = ?
		  AND other_professional_qualifications = ?
	`, employeeID, sourceFilename, registration, other).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for existing qualification: %w", err)
	}
	if exists > 0 {
		return nil
	}

	var primaries int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM qualifications WHERE employee_id = ? AND is_primary = 1
	`, employeeID).Scan(&primaries)
	if err != nil {
		return fmt.Errorf("failed to count primary qualifications: %w", err)
	}

	isPrimary := 0
	if primaries == 0 {
		isPrimary = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO qualifications (
			qualification_id, employee_id, current_professional_registration,
			other_professional_qualifications, source_filename, is_primary,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, newID(), employeeID, registration, other, sourceFilename, isPrimary, now)
	if err != nil {
		return fmt.Errorf("failed to insert qualification: %w", err)
	}
	return nil
}

// GetEmployee retrieves an employee by ID
func (s *SQLiteStorage) GetEmployee(ctx context.Context, id string) (*types.Employee, error) {
	var (
		e       types.Employee
		total   sql.NullInt64
		firm    sql.NullInt64
		sources string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT employee_id, employee_name, total_years_experience,
		       current_firm_years_experience, education,
		       current_professional_registration, source_filename,
		       created_at, updated_at
		FROM employees WHERE employee_id = ?
	`, id).Scan(&e.ID, &e.Name, &total, &firm, &e.Education,
		&e.Registration, &sources, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: employee %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	e.TotalYears = nullIntPtr(total)
	e.FirmYears = nullIntPtr(firm)
	e.SourceFiles = splitSourceFiles(sources)
	return &e, nil
}

// GetTeam retrieves a team by ID
func (s *SQLiteStorage) GetTeam(ctx context.Context, id string) (*types.Team, error) {
	var t types.Team
	err := s.db.QueryRowContext(ctx, `
		SELECT team_id, firm_name, location, created_at FROM teams WHERE team_id = ?
	`, id).Scan(&t.ID, &t.FirmName, &t.Location, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: team %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

// GetProject retrieves a project by ID
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	var (
		p        types.Project
		services sql.NullInt64
		constr   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, title_and_location, professional_services_year,
		       construction_year, description_scope, description_cost,
		       description_fee, description_role, created_at
		FROM projects WHERE project_id = ?
	`, id).Scan(&p.ID, &p.TitleAndLocation, &services, &constr,
		&p.Scope, &p.Cost, &p.Fee, &p.RoleDescription, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: project %s", types.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	p.ServicesYear = nullIntPtr(services)
	p.ConstructionYear = nullIntPtr(constr)
	return &p, nil
}

// ListEmployees returns all employees with their relationship counts.
func (s *SQLiteStorage) ListEmployees(ctx context.Context) ([]*types.EmployeeStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.employee_id, e.employee_name, e.total_years_experience,
		       e.current_firm_years_experience, e.education,
		       e.current_professional_registration, e.source_filename,
		       e.created_at, e.updated_at,
		       (SELECT COUNT(*) FROM assignments a WHERE a.employee_id = e.employee_id),
		       (SELECT COUNT(DISTINCT a.project_id) FROM assignments a
		        WHERE a.employee_id = e.employee_id AND a.project_id IS NOT NULL),
		       (SELECT COUNT(*) FROM qualifications q WHERE q.employee_id = e.employee_id)
		FROM employees e
		ORDER BY e.employee_name COLLATE NOCASE, e.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []*types.EmployeeStats
	for rows.Next() {
		var (
			es      types.EmployeeStats
			total   sql.NullInt64
			firm    sql.NullInt64
			sources string
		)
		if err := rows.Scan(&es.ID, &es.Name, &total, &firm, &es.Education,
			&es.Registration, &sources, &es.CreatedAt, &es.UpdatedAt,
			&es.AssignmentCount, &es.ProjectCount, &es.QualificationCount); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		es.TotalYears = nullIntPtr(total)
		es.FirmYears = nullIntPtr(firm)
		es.SourceFiles = splitSourceFiles(sources)
		out = append(out, &es)
	}
	return out, rows.Err()
}

// ListTeams returns all teams with their relationship counts.
func (s *SQLiteStorage) ListTeams(ctx context.Context) ([]*types.TeamStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.team_id, t.firm_name, t.location, t.created_at,
		       (SELECT COUNT(*) FROM assignments a WHERE a.team_id = t.team_id),
		       (SELECT COUNT(DISTINCT a.employee_id) FROM assignments a WHERE a.team_id = t.team_id),
		       (SELECT COUNT(DISTINCT a.project_id) FROM assignments a
		        WHERE a.team_id = t.team_id AND a.project_id IS NOT NULL)
		FROM teams t
		ORDER BY t.firm_name COLLATE NOCASE, t.created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var out []*types.TeamStats
	for rows.Next() {
		var ts types.TeamStats
		if err := rows.Scan(&ts.ID, &ts.FirmName, &ts.Location, &ts.CreatedAt,
			&ts.AssignmentCount, &ts.EmployeeCount, &ts.ProjectCount); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, &ts)
	}
	return out, rows.Err()
}

// ListAssignments returns one employee's assignments, in insertion order.
func (s *SQLiteStorage) ListAssignments(ctx context.Context, employeeID string) ([]*types.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT assignment_id, employee_id, team_id, project_id,
		       role_in_contract, other_professional_qualifications,
		       project_order, created_at
		FROM assignments
		WHERE employee_id = ?
		ORDER BY created_at, rowid
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	var out []*types.Assignment
	for rows.Next() {
		var (
			a       types.Assignment
			teamID  sql.NullString
			projID  sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &teamID, &projID,
			&a.Role, &a.Qualifications, &a.ProjectOrder, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.TeamID = nullStrPtr(teamID)
		a.ProjectID = nullStrPtr(projID)
		out = append(out, &a)
	}
	return out, rows.Err()
}

// ListQualifications returns one employee's qualifications, oldest first.
func (s *SQLiteStorage) ListQualifications(ctx context.Context, employeeID string) ([]*types.Qualification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT qualification_id, employee_id, current_professional_registration,
		       other_professional_qualifications, source_filename, is_primary,
		       created_at
		FROM qualifications
		WHERE employee_id = ?
		ORDER BY created_at, rowid
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifications: %w", err)
	}
	defer rows.Close()

	var out []*types.Qualification
	for rows.Next() {
		var q types.Qualification
		if err := rows.Scan(&q.ID, &q.EmployeeID, &q.Registration, &q.Other,
			&q.SourceFilename, &q.IsPrimary, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan qualification: %w", err)
		}
		out = append(out, &q)
	}
	return out, rows.Err()
}

// EmployeeRoles returns the distinct role labels across one employee's
// assignments.
func (s *SQLiteStorage) EmployeeRoles(ctx context.Context, employeeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role_in_contract FROM assignments
		WHERE employee_id = ? AND role_in_contract != ''
		ORDER BY created_at, rowid
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var out []string
	for rows.Next() {
		var roleList string
		if err := rows.Scan(&roleList); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		for _, label := range types.SplitRoleList(roleList) {
			key := strings.ToLower(label)
			if !seen[key] {
				seen[key] = true
				out = append(out, label)
			}
		}
	}
	return out, rows.Err()
}

// SharedProjectCount counts distinct projects two same-kind entities both
// touch.
func (s *SQLiteStorage) SharedProjectCount(ctx context.Context, kind types.EntityKind, idA, idB string) (int, error) {
	if !kind.IsValid() {
		return 0, fmt.Errorf("%w: unknown entity kind %q", types.ErrInvalidArgument, kind)
	}

	var column string
	switch kind {
	case types.KindEmployee:
		column = "employee_id"
	case types.KindTeam:
		column = "team_id"
	default:
		// Roles are labels on assignments, not rows with projects.
		return 0, fmt.Errorf("%w: shared projects undefined for kind %q", types.ErrInvalidArgument, kind)
	}

	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT a.project_id)
		FROM assignments a
		JOIN assignments b ON a.project_id = b.project_id
		WHERE a.%s = ? AND b.%s = ? AND a.project_id IS NOT NULL
	`, column, column)

	var count int
	if err := s.db.QueryRowContext(ctx, query, idA, idB).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count shared projects: %w", err)
	}
	return count, nil
}

// SetPrimaryQualification moves the primary flag to the given
// qualification.
func (s *SQLiteStorage) SetPrimaryQualification(ctx context.Context, employeeID, qualificationID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `
		SELECT employee_id FROM qualifications WHERE qualification_id = ?
	`, qualificationID).Scan(&owner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: qualification %s", types.ErrNotFound, qualificationID)
	}
	if err != nil {
		return fmt.Errorf("failed to look up qualification: %w", err)
	}
	if owner != employeeID {
		return fmt.Errorf("%w: qualification %s does not belong to employee %s",
			types.ErrInvalidArgument, qualificationID, employeeID)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE qualifications SET is_primary = 0 WHERE employee_id = ?
	`, employeeID); err != nil {
		return fmt.Errorf("failed to clear primary flags: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE qualifications SET is_primary = 1 WHERE qualification_id = ?
	`, qualificationID); err != nil {
		return fmt.Errorf("failed to set primary flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", types.ErrTransaction, err)
	}
	return nil
}

// DeleteEmployee removes an employee outright. Assignments and
// qualifications cascade via foreign keys; projects left with zero
// assignments are swept in the same transaction.
func (s *SQLiteStorage) DeleteEmployee(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: employee %s", types.ErrNotFound, id)
	}

	if _, err := sweepOrphanProjects(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit delete: %v", types.ErrTransaction, err)
	}
	return nil
}

// SweepOrphanProjects deletes projects with zero assignments.
func (s *SQLiteStorage) SweepOrphanProjects(ctx context.Context) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	removed, err := sweepOrphanProjects(ctx, tx)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: failed to commit sweep: %v", types.ErrTransaction, err)
	}
	return removed, nil
}

func sweepOrphanProjects(ctx context.Context, tx *sql.Tx) (int, error) {
	res, err := tx.ExecContext(ctx, `
		DELETE FROM projects
		WHERE project_id NOT IN (
			SELECT project_id FROM assignments WHERE project_id IS NOT NULL
		)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep orphan projects: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read sweep result: %w", err)
	}
	return int(removed), nil
}

// Statistics reports row counts per table.
func (s *SQLiteStorage) Statistics(ctx context.Context) (*storage.Stats, error) {
	var stats storage.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM employees),
		       (SELECT COUNT(*) FROM teams),
		       (SELECT COUNT(*) FROM projects),
		       (SELECT COUNT(*) FROM assignments),
		       (SELECT COUNT(*) FROM qualifications)
	`).Scan(&stats.Employees, &stats.Teams, &stats.Projects,
		&stats.Assignments, &stats.Qualifications)
	if err != nil {
		return nil, fmt.Errorf("failed to collect statistics: %w", err)
	}
	return &stats, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullIntPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullStrPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
