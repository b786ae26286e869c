package odr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oxhq/cppscan/internal/cxxtoken"
	"github.com/oxhq/cppscan/internal/odr"
	"github.com/oxhq/cppscan/internal/symbols"
)

func setupTestStore(t *testing.T) *odr.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	store, err := odr.OpenGorm(gdb)
	require.NoError(t, err)
	return store
}

func parseAndCollect(t *testing.T, file, src string) []odr.ClassRecord {
	t.Helper()
	list, err := cxxtoken.Parse(context.Background(), cxxtoken.CGrammar{}, file, 0, []byte(src))
	require.NoError(t, err)
	db := symbols.Build(list, symbols.DefaultSettings())
	return odr.CollectClassRecords(db, list)
}

func TestCollectClassRecordsHashesBody(t *testing.T) {
	records := parseAndCollect(t, "a.c", "struct P { int a; };")
	require.Len(t, records, 1)
	assert.Equal(t, "P", records[0].ClassName)
	assert.Equal(t, "a.c", records[0].File)
	assert.NotEmpty(t, records[0].ContentHash)
}

func TestViolationsDetectsDifferingDefinitions(t *testing.T) {
	store := setupTestStore(t)

	a := parseAndCollect(t, "a.c", "struct P { int a; };")
	b := parseAndCollect(t, "b.c", "struct P { long a; };")

	require.NoError(t, store.Record("run-1", a))
	require.NoError(t, store.Record("run-1", b))

	violations, err := store.Violations("run-1")
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "P", violations[0].ClassName)
	assert.Len(t, violations[0].Locations, 2)

	d := violations[0].Diagnostic()
	assert.Equal(t, "ctuOneDefinitionRuleViolation", d.ID)
	assert.Len(t, d.ErrorPath, 2)
	assert.Contains(t, d.ErrorPath[1].Message, "a (int -> long)")
}

func TestViolationsIgnoresIdenticalDefinitions(t *testing.T) {
	store := setupTestStore(t)

	a := parseAndCollect(t, "a.c", "struct P { int a; };")
	b := parseAndCollect(t, "b.c", "struct P { int a; };")

	require.NoError(t, store.Record("run-2", a))
	require.NoError(t, store.Record("run-2", b))

	violations, err := store.Violations("run-2")
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestViolationsScopedByRunID(t *testing.T) {
	store := setupTestStore(t)

	a := parseAndCollect(t, "a.c", "struct P { int a; };")
	b := parseAndCollect(t, "b.c", "struct P { long a; };")

	require.NoError(t, store.Record("run-a", a))
	require.NoError(t, store.Record("run-b", b))

	violations, err := store.Violations("run-a")
	require.NoError(t, err)
	assert.Empty(t, violations)
}
