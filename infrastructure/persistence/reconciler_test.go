package persistence

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tooldex/tooldex/domain/toolsearch"
)

func TestMigrationPlan(t *testing.T) {
	plan := migrationPlan(embeddingsTable, 1536)
	require.Len(t, plan, 2)

	// The similarity index must go before the column is retyped.
	assert.True(t, strings.HasPrefix(plan[0], "DROP INDEX IF EXISTS "+annIndexName))
	assert.Contains(t, plan[1], "ALTER TABLE "+embeddingsTable)
	assert.Contains(t, plan[1], "vector(1536)")

	// Rows of a different stored width are nulled, not coerced.
	assert.Contains(t, plan[1], "ELSE NULL")
	assert.Contains(t, plan[1], "vector_dims(embedding) = 1536")

	// Same inputs, same plan.
	assert.Equal(t, plan, migrationPlan(embeddingsTable, 1536))
}

func TestIndexStrategies_Order(t *testing.T) {
	strategies := indexStrategies(embeddingsTable)
	require.Len(t, strategies, 3)

	assert.Equal(t, "ivfflat", strategies[0].name)
	assert.Equal(t, "hnsw", strategies[1].name)
	assert.Equal(t, "ivfflat-coarse", strategies[2].name)

	for _, s := range strategies {
		assert.Contains(t, s.sql, "CREATE INDEX IF NOT EXISTS "+annIndexName)
		assert.Contains(t, s.sql, "vector_cosine_ops")
	}
	assert.Contains(t, strategies[0].sql, "lists = 100")
	assert.Contains(t, strategies[2].sql, "lists = 1")
}

var ddlWidthPattern = regexp.MustCompile(`(?i)vector\((\d+)\)`)

// fakeSchema is a schemaExecutor that tracks the column width the way the
// real engine would: CREATE TABLE and the migration transaction change it,
// everything else only gets logged.
type fakeSchema struct {
	width      int // 0 = table absent
	widthErr   error
	stmts      []string
	atomicRuns int
	// failStmts fails any statement containing one of these fragments.
	failStmts []string
	// driftWidth, when nonzero, is the width reported after a migration,
	// simulating a racing writer retyping the column again.
	driftWidth int
}

func (f *fakeSchema) columnWidth(context.Context, string) (int, error) {
	if f.widthErr != nil {
		return 0, f.widthErr
	}
	return f.width, nil
}

func (f *fakeSchema) exec(_ context.Context, stmt string) error {
	for _, fragment := range f.failStmts {
		if strings.Contains(stmt, fragment) {
			return errors.New("unsupported statement")
		}
	}
	f.stmts = append(f.stmts, stmt)
	if strings.Contains(stmt, "CREATE TABLE") {
		f.width = ddlWidth(stmt)
	}
	return nil
}

func (f *fakeSchema) execAtomic(_ context.Context, stmts []string) error {
	f.atomicRuns++
	f.stmts = append(f.stmts, stmts...)
	f.width = ddlWidth(stmts[len(stmts)-1])
	if f.driftWidth != 0 {
		f.width = f.driftWidth
	}
	return nil
}

func ddlWidth(stmt string) int {
	m := ddlWidthPattern.FindStringSubmatch(stmt)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func newTestReconciler(fake *fakeSchema) *SchemaReconciler {
	return newSchemaReconciler(fake, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func countMatching(stmts []string, fragment string) int {
	n := 0
	for _, s := range stmts {
		if strings.Contains(s, fragment) {
			n++
		}
	}
	return n
}

func TestEnsure_CreatesTableOnFirstUse(t *testing.T) {
	fake := &fakeSchema{}
	r := newTestReconciler(fake)

	require.NoError(t, r.Ensure(context.Background(), 1536))

	assert.Equal(t, 1, countMatching(fake.stmts, "CREATE EXTENSION"))
	assert.Equal(t, 1, countMatching(fake.stmts, "CREATE TABLE"))
	assert.Equal(t, 1, countMatching(fake.stmts, "CREATE INDEX"))
	assert.Equal(t, 1536, fake.width)
	assert.Zero(t, fake.atomicRuns)
}

func TestEnsure_SameWidthTwiceIsNoOp(t *testing.T) {
	fake := &fakeSchema{}
	r := newTestReconciler(fake)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, 1536))
	issued := len(fake.stmts)

	require.NoError(t, r.Ensure(ctx, 1536))
	assert.Equal(t, issued, len(fake.stmts), "second call for the same width must issue no DDL")
	assert.Zero(t, fake.atomicRuns)
}

func TestEnsure_MigratesOnWidthChange(t *testing.T) {
	fake := &fakeSchema{width: 1536}
	r := newTestReconciler(fake)
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, 100))

	assert.Equal(t, 1, fake.atomicRuns)
	assert.Equal(t, 1, countMatching(fake.stmts, "DROP INDEX"))
	assert.Equal(t, 1, countMatching(fake.stmts, "ALTER TABLE"))
	// The index is rebuilt after the retype.
	assert.Equal(t, 1, countMatching(fake.stmts, "CREATE INDEX"))
	assert.Equal(t, 100, fake.width)

	// A repeat for the new width sees a matching column and stops there.
	issued := len(fake.stmts)
	require.NoError(t, r.Ensure(ctx, 100))
	assert.Equal(t, issued, len(fake.stmts))
	assert.Equal(t, 1, fake.atomicRuns)
}

func TestEnsure_ConcurrentWidthDriftIsRetryable(t *testing.T) {
	fake := &fakeSchema{width: 1536, driftWidth: 64}
	r := newTestReconciler(fake)

	err := r.Ensure(context.Background(), 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolsearch.ErrReconcileRetry)
}

func TestEnsure_IndexStrategyFallback(t *testing.T) {
	fake := &fakeSchema{failStmts: []string{"lists = 100"}}
	r := newTestReconciler(fake)

	require.NoError(t, r.Ensure(context.Background(), 256))

	assert.Equal(t, 0, countMatching(fake.stmts, "lists = 100"))
	assert.Equal(t, 1, countMatching(fake.stmts, "hnsw"))
}

func TestEnsure_InvalidDimensions(t *testing.T) {
	r := newTestReconciler(&fakeSchema{})

	err := r.Ensure(context.Background(), 0)
	assert.ErrorIs(t, err, ErrReconcileFailed)

	err = r.Ensure(context.Background(), -3)
	assert.ErrorIs(t, err, ErrReconcileFailed)
}

func TestEnsure_IntrospectionFailure(t *testing.T) {
	fake := &fakeSchema{widthErr: errors.New("connection refused")}
	r := newTestReconciler(fake)

	err := r.Ensure(context.Background(), 1536)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReconcileFailed)
	assert.Empty(t, fake.stmts)
}
