package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/resumeforge/reconcile/internal/types"
)

// PreviewEmployeeMerge reports what merging two employees would do,
// without touching any rows.
func (s *SQLiteStorage) PreviewEmployeeMerge(ctx context.Context, primaryID, secondaryID string) (*types.MergeImpact, error) {
	if err := types.ValidateMergePair(primaryID, secondaryID); err != nil {
		return nil, err
	}

	primary, err := s.GetEmployee(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.GetEmployee(ctx, secondaryID)
	if err != nil {
		return nil, err
	}

	impact := &types.MergeImpact{
		Kind:          types.KindEmployee,
		PrimaryID:     primaryID,
		SecondaryID:   secondaryID,
		PrimaryName:   primary.Name,
		SecondaryName: secondary.Name,
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM assignments WHERE employee_id = ?),
		       (SELECT COUNT(*) FROM assignments WHERE employee_id = ?),
		       (SELECT COUNT(*) FROM qualifications WHERE employee_id = ?),
		       (SELECT COUNT(*) FROM qualifications WHERE employee_id = ?),
		       (SELECT COUNT(*) FROM assignments s
		        WHERE s.employee_id = ? AND s.project_id IS NOT NULL
		          AND s.project_id IN (
		              SELECT project_id FROM assignments
		              WHERE employee_id = ? AND project_id IS NOT NULL))
	`, primaryID, secondaryID, primaryID, secondaryID, secondaryID, primaryID).Scan(
		&impact.PrimaryAssignments, &impact.SecondaryAssignments,
		&impact.PrimaryQualifications, &impact.SecondaryQualifications,
		&impact.OverlappingAssignments)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge impact: %w", err)
	}

	impact.TotalAssignmentsBefore = impact.PrimaryAssignments + impact.SecondaryAssignments
	impact.AssignmentsAfter = impact.TotalAssignmentsBefore - impact.OverlappingAssignments
	impact.QualificationsAfter = impact.PrimaryQualifications + impact.SecondaryQualifications
	return impact, nil
}

// PreviewTeamMerge reports what merging two teams would do, without
// touching any rows.
func (s *SQLiteStorage) PreviewTeamMerge(ctx context.Context, primaryID, secondaryID string) (*types.MergeImpact, error) {
	if err := types.ValidateMergePair(primaryID, secondaryID); err != nil {
		return nil, err
	}

	primary, err := s.GetTeam(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.GetTeam(ctx, secondaryID)
	if err != nil {
		return nil, err
	}

	impact := &types.MergeImpact{
		Kind:          types.KindTeam,
		PrimaryID:     primaryID,
		SecondaryID:   secondaryID,
		PrimaryName:   primary.FirmName,
		SecondaryName: secondary.FirmName,
	}

	// Team reassignment never violates the (employee, project) key, so
	// the only overlap is project-less rows that become identical.
	err = s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM assignments WHERE team_id = ?),
		       (SELECT COUNT(*) FROM assignments WHERE team_id = ?),
		       (SELECT COUNT(*) FROM assignments s
		        WHERE s.team_id = ? AND s.project_id IS NULL
		          AND EXISTS (
		              SELECT 1 FROM assignments p
		              WHERE p.team_id = ? AND p.project_id IS NULL
		                AND p.employee_id = s.employee_id
		                AND p.role_in_contract = s.role_in_contract))
	`, primaryID, secondaryID, secondaryID, primaryID).Scan(
		&impact.PrimaryAssignments, &impact.SecondaryAssignments,
		&impact.OverlappingAssignments)
	if err != nil {
		return nil, fmt.Errorf("failed to compute merge impact: %w", err)
	}

	impact.TotalAssignmentsBefore = impact.PrimaryAssignments + impact.SecondaryAssignments
	impact.AssignmentsAfter = impact.TotalAssignmentsBefore - impact.OverlappingAssignments
	return impact, nil
}

// MergeEmployees folds the secondary employee into the primary in one
// transaction: qualifications move over, assignments move over with
// collisions on the (employee, project) key dropped, scalars resolve per
// the field policy, and the secondary row is deleted. The survivor always
// ends with exactly one primary qualification if it has any at all.
func (s *SQLiteStorage) MergeEmployees(ctx context.Context, primaryID, secondaryID string, policy types.FieldPolicy) (*types.MergeResult, error) {
	if err := types.ValidateMergePair(primaryID, secondaryID); err != nil {
		return nil, err
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: unknown field policy %q", types.ErrInvalidArgument, policy)
	}

	primary, err := s.GetEmployee(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.GetEmployee(ctx, secondaryID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	result := &types.MergeResult{
		Kind:          types.KindEmployee,
		PrimaryID:     primaryID,
		SecondaryID:   secondaryID,
		PrimaryName:   primary.Name,
		SecondaryName: secondary.Name,
		Policy:        policy,
		MergedAt:      time.Now().UTC(),
	}

	// The primary keeps its primary qualification; the secondary's flag
	// is cleared before the move so the partial unique index cannot
	// fire mid-transaction.
	if _, err := tx.ExecContext(ctx, `
		UPDATE qualifications SET is_primary = 0 WHERE employee_id = ?
	`, secondaryID); err != nil {
		return nil, fmt.Errorf("failed to clear secondary primary flags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE qualifications SET employee_id = ? WHERE employee_id = ?
	`, primaryID, secondaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to move qualifications: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read qualification move result: %w", err)
	}
	result.QualificationsMoved = int(moved)

	// Drop secondary assignments whose project the primary already has.
	res, err = tx.ExecContext(ctx, `
		DELETE FROM assignments
		WHERE employee_id = ? AND project_id IS NOT NULL
		  AND project_id IN (
		      SELECT project_id FROM assignments
		      WHERE employee_id = ? AND project_id IS NOT NULL)
	`, secondaryID, primaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to drop colliding assignments: %w", err)
	}
	dropped, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read collision drop result: %w", err)
	}
	result.DuplicateAssignmentsRemoved = int(dropped)

	res, err = tx.ExecContext(ctx, `
		UPDATE assignments SET employee_id = ? WHERE employee_id = ?
	`, primaryID, secondaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to move assignments: %w", err)
	}
	moved, err = res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment move result: %w", err)
	}
	result.AssignmentsMoved = int(moved)

	// Belt and braces: the collision delete above should leave nothing
	// for this pass, but a pre-index database may carry duplicates.
	res, err = tx.ExecContext(ctx, `
		DELETE FROM assignments
		WHERE employee_id = ? AND project_id IS NOT NULL
		  AND rowid NOT IN (
		      SELECT MIN(rowid) FROM assignments
		      WHERE employee_id = ? AND project_id IS NOT NULL
		      GROUP BY project_id)
	`, primaryID, primaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to deduplicate assignments: %w", err)
	}
	dropped, err = res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read dedup result: %w", err)
	}
	result.DuplicateAssignmentsRemoved += int(dropped)

	// Resolve the survivor's scalars.
	education := policy.ResolveString(primary.Education, secondary.Education)
	registration := policy.ResolveString(primary.Registration, secondary.Registration)
	totalYears, firmYears := policy.ResolveExperience(
		primary.TotalYears, primary.FirmYears,
		secondary.TotalYears, secondary.FirmYears)
	sources := types.MergeSourceFiles(primary.SourceFiles, secondary.SourceFiles)

	if _, err := tx.ExecContext(ctx, `
		UPDATE employees SET
			education = ?,
			current_professional_registration = ?,
			total_years_experience = ?,
			current_firm_years_experience = ?,
			source_filename = ?,
			updated_at = ?
		WHERE employee_id = ?
	`, education, registration, nullableInt(totalYears), nullableInt(firmYears),
		joinSourceFiles(sources), result.MergedAt, primaryID); err != nil {
		return nil, fmt.Errorf("failed to update primary employee: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM employees WHERE employee_id = ?
	`, secondaryID); err != nil {
		return nil, fmt.Errorf("failed to delete secondary employee: %w", err)
	}

	if err := restorePrimaryQualification(ctx, tx, primaryID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit employee merge: %v", types.ErrTransaction, err)
	}

	result.FinalFields = map[string]string{
		"education":                         education,
		"current_professional_registration": registration,
	}
	if totalYears != nil {
		result.FinalFields["total_years_experience"] = fmt.Sprintf("%d", *totalYears)
	}
	if firmYears != nil {
		result.FinalFields["current_firm_years_experience"] = fmt.Sprintf("%d", *firmYears)
	}
	return result, nil
}

// restorePrimaryQualification ensures an employee with qualifications has
// exactly one flagged primary, preferring the oldest row.
func restorePrimaryQualification(ctx context.Context, tx *sql.Tx, employeeID string) error {
	var primaries int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM qualifications WHERE employee_id = ? AND is_primary = 1
	`, employeeID).Scan(&primaries)
	if err != nil {
		return fmt.Errorf("failed to count primary qualifications: %w", err)
	}
	if primaries > 0 {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE qualifications SET is_primary = 1
		WHERE qualification_id = (
			SELECT qualification_id FROM qualifications
			WHERE employee_id = ?
			ORDER BY created_at, rowid
			LIMIT 1)
	`, employeeID)
	if err != nil {
		return fmt.Errorf("failed to restore primary qualification: %w", err)
	}
	return nil
}

// MergeTeams folds the secondary team into the primary in one
// transaction. Assignments are repointed; project-less rows that become
// exact duplicates of a primary row are dropped.
func (s *SQLiteStorage) MergeTeams(ctx context.Context, primaryID, secondaryID string, policy types.FieldPolicy) (*types.MergeResult, error) {
	if err := types.ValidateMergePair(primaryID, secondaryID); err != nil {
		return nil, err
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: unknown field policy %q", types.ErrInvalidArgument, policy)
	}

	primary, err := s.GetTeam(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	secondary, err := s.GetTeam(ctx, secondaryID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	result := &types.MergeResult{
		Kind:          types.KindTeam,
		PrimaryID:     primaryID,
		SecondaryID:   secondaryID,
		PrimaryName:   primary.FirmName,
		SecondaryName: secondary.FirmName,
		Policy:        policy,
		MergedAt:      time.Now().UTC(),
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM assignments
		WHERE team_id = ? AND project_id IS NULL
		  AND EXISTS (
		      SELECT 1 FROM assignments p
		      WHERE p.team_id = ? AND p.project_id IS NULL
		        AND p.employee_id = assignments.employee_id
		        AND p.role_in_contract = assignments.role_in_contract)
	`, secondaryID, primaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to drop duplicate assignments: %w", err)
	}
	dropped, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read duplicate drop result: %w", err)
	}
	result.DuplicateAssignmentsRemoved = int(dropped)

	res, err = tx.ExecContext(ctx, `
		UPDATE assignments SET team_id = ? WHERE team_id = ?
	`, primaryID, secondaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to move assignments: %w", err)
	}
	moved, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment move result: %w", err)
	}
	result.AssignmentsMoved = int(moved)

	location := policy.ResolveString(primary.Location, secondary.Location)
	if _, err := tx.ExecContext(ctx, `
		UPDATE teams SET location = ? WHERE team_id = ?
	`, location, primaryID); err != nil {
		return nil, fmt.Errorf("failed to update primary team: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM teams WHERE team_id = ?
	`, secondaryID); err != nil {
		return nil, fmt.Errorf("failed to delete secondary team: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit team merge: %v", types.ErrTransaction, err)
	}

	result.FinalFields = map[string]string{"location": location}
	return result, nil
}

// MergeRoles rewrites one employee's assignments so every occurrence of
// secondaryRole reads primaryRole instead, normalizing each role list
// (dedup, first-seen order) along the way.
func (s *SQLiteStorage) MergeRoles(ctx context.Context, employeeID, primaryRole, secondaryRole string) (*types.RoleMergeResult, error) {
	primaryRole = strings.TrimSpace(primaryRole)
	secondaryRole = strings.TrimSpace(secondaryRole)
	if employeeID == "" || primaryRole == "" || secondaryRole == "" {
		return nil, fmt.Errorf("%w: employee id and both role labels are required", types.ErrInvalidArgument)
	}
	if strings.EqualFold(primaryRole, secondaryRole) {
		return nil, fmt.Errorf("%w: cannot merge a role with itself", types.ErrInvalidArgument)
	}
	if _, err := s.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", types.ErrTransaction, err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT assignment_id, role_in_contract FROM assignments
		WHERE employee_id = ?
	`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	type rewrite struct {
		id   string
		role string
	}
	var rewrites []rewrite
	for rows.Next() {
		var id, roleList string
		if err := rows.Scan(&id, &roleList); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		updated, changed := replaceRole(roleList, primaryRole, secondaryRole)
		if changed {
			rewrites = append(rewrites, rewrite{id: id, role: updated})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	for _, rw := range rewrites {
		if _, err := tx.ExecContext(ctx, `
			UPDATE assignments SET role_in_contract = ? WHERE assignment_id = ?
		`, rw.role, rw.id); err != nil {
			return nil, fmt.Errorf("failed to rewrite assignment role: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit role merge: %v", types.ErrTransaction, err)
	}

	return &types.RoleMergeResult{
		EmployeeID:         employeeID,
		PrimaryRole:        primaryRole,
		SecondaryRole:      secondaryRole,
		FinalRole:          primaryRole,
		AssignmentsUpdated: len(rewrites),
		MergedAt:           time.Now().UTC(),
	}, nil
}

// replaceRole swaps secondary for primary within a comma-separated role
// list and normalizes the result. Matching is case-insensitive.
func replaceRole(roleList, primary, secondary string) (string, bool) {
	labels := types.SplitRoleList(roleList)
	changed := false
	for i, label := range labels {
		if strings.EqualFold(label, secondary) {
			labels[i] = primary
			changed = true
		}
	}
	if !changed {
		return roleList, false
	}
	return types.NormalizeRoleList(strings.Join(labels, ", ")), true
}
