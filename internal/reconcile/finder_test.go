package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/reconcile/internal/match"
	"github.com/resumeforge/reconcile/internal/storage/sqlite"
	"github.com/resumeforge/reconcile/internal/types"
)

func newTestFinder(t *testing.T) (*Finder, *sqlite.SQLiteStorage) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewFinder(store, match.NewScorer(match.DefaultConfig()), zerolog.Nop()), store
}

func write(t *testing.T, store *sqlite.SQLiteStorage, name, role, firm, source string, projects ...string) string {
	t.Helper()
	rec := &types.CandidateRecord{
		Name:                name,
		RoleInContract:      role,
		FirmNameAndLocation: firm,
	}
	for _, p := range projects {
		rec.Projects = append(rec.Projects, types.CandidateProject{TitleAndLocation: p})
	}
	id, err := store.WriteCandidate(context.Background(), rec, source)
	require.NoError(t, err)
	return id
}

func TestFindDuplicateEmployees(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	write(t, store, "John Smith", "Engineer", "Acme - Denver, CO", "a.pdf", "Bridge")
	write(t, store, "JOHN SMITH JR", "Engineer", "Acme - Denver, CO", "b.pdf", "Tunnel")
	write(t, store, "Mary Jones", "Engineer", "Acme - Denver, CO", "c.pdf", "Highway")

	pairs, err := finder.FindDuplicateEmployees(ctx, 0.7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, types.KindEmployee, pairs[0].Kind)
	assert.InDelta(t, 0.8, pairs[0].Score, 1e-9, "substring containment tier")
	assert.Equal(t, 0, pairs[0].SharedProjects)
}

func TestFindDuplicateEmployeesSharedProjectBypass(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	// Dissimilar names, but the shared project forces the pair into
	// review regardless of threshold.
	write(t, store, "John Smith", "Engineer", "Acme - Denver, CO", "a.pdf", "Bridge Replacement")
	write(t, store, "Mary Jones", "Engineer", "Acme - Denver, CO", "b.pdf", "Bridge Replacement")

	pairs, err := finder.FindDuplicateEmployees(ctx, 0.9)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].SharedProjects)
	assert.Equal(t, 0.0, pairs[0].Score)
}

func TestFindDuplicateEmployeesPrimaryIsRicher(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	write(t, store, "Jon Smith", "Engineer", "Acme - Denver, CO", "a.pdf")
	richID := write(t, store, "Jonathan Smith", "Engineer", "Acme - Denver, CO", "b.pdf",
		"Bridge", "Tunnel", "Highway")

	pairs, err := finder.FindDuplicateEmployees(ctx, 0.7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, richID, pairs[0].PrimaryID, "entity with more data is the suggested survivor")
}

func TestFindDuplicateTeams(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	write(t, store, "Alice Chen", "Engineer", "Acme Engineering - Denver, CO", "a.pdf", "Bridge")
	write(t, store, "Bob Park", "Engineer", "Acme Eng - Denver, CO", "b.pdf", "Tunnel")
	write(t, store, "Carl Diaz", "Engineer", "Zeta Corp - Austin, TX", "c.pdf", "Highway")

	pairs, err := finder.FindDuplicateTeams(ctx, 0.7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, types.KindTeam, pairs[0].Kind)
	assert.InDelta(t, 0.8, pairs[0].Score, 1e-9)
}

func TestFindDuplicateRoles(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	id := write(t, store, "Alice Chen", "Project Manager, Proj Manager", "Acme - Denver, CO",
		"a.pdf", "Bridge")

	pairs, err := finder.FindDuplicateRoles(ctx, id, 0.7)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, types.KindRole, pairs[0].Kind)
	assert.Equal(t, "Project Manager", pairs[0].PrimaryName, "longer label suggested as survivor")
	assert.Equal(t, "Proj Manager", pairs[0].SecondaryName)
}

func TestFindDuplicateRolesScopedToEmployee(t *testing.T) {
	finder, store := newTestFinder(t)
	ctx := context.Background()

	id1 := write(t, store, "Alice Chen", "Project Manager", "Acme - Denver, CO", "a.pdf", "Bridge")
	write(t, store, "Bob Park", "Proj Manager", "Acme - Denver, CO", "b.pdf", "Tunnel")

	pairs, err := finder.FindDuplicateRoles(ctx, id1, 0.7)
	require.NoError(t, err)
	assert.Empty(t, pairs, "other employees' labels never enter the scan")
}

func TestRankPairs(t *testing.T) {
	pairs := []CandidatePair{
		{PrimaryName: "b", Score: 0.7, SharedProjects: 0},
		{PrimaryName: "a", Score: 0.9, SharedProjects: 0},
		{PrimaryName: "c", Score: 0.7, SharedProjects: 2},
	}
	rankPairs(pairs)
	assert.Equal(t, "a", pairs[0].PrimaryName)
	assert.Equal(t, "c", pairs[1].PrimaryName)
	assert.Equal(t, "b", pairs[2].PrimaryName)
}
