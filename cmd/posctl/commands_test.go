package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"posjournal/internal/core"
	"posjournal/internal/report"
)

func testDB(t *testing.T) string {
	t.Helper()
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("CURRENCY", "USD")
	t.Setenv("AMQP_URL", "")
	return filepath.Join(t.TempDir(), "journal.db")
}

// run executes posctl against db the way main does and returns stdout.
func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	opts := &rootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", db}, args...))

	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, opts.close())
	return out.String(), err
}

func TestRecordAndList(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "record", "Latte", "2", "--date", "2024-03-05")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 x Latte on 2024-03-05 for $120.00")

	_, err = run(t, db, "record", "Americano", "1", "--date", "2024-03-06")
	require.NoError(t, err)

	// The sqlite journal outlives each invocation.
	out, err = run(t, db, "--format", "json", "list")
	require.NoError(t, err)

	var listed struct {
		Transactions []core.Transaction `json:"transactions"`
		Count        int                `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Equal(t, 2, listed.Count)
	assert.Equal(t, "Americano", listed.Transactions[0].ItemName)
	assert.Equal(t, "Latte", listed.Transactions[1].ItemName)
	assert.True(t, listed.Transactions[1].TotalPrice.Equal(core.MoneyFromInt(120)))
}

func TestRecordRejectsBadInput(t *testing.T) {
	db := testDB(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown item", []string{"record", "Espresso Tonic", "1"}, core.ErrItemNotFound},
		{"zero quantity", []string{"record", "Latte", "0"}, core.ErrInvalidQuantity},
		{"non-integer quantity", []string{"record", "Latte", "1.5"}, core.ErrInvalidQuantity},
		{"bad date", []string{"record", "Latte", "1", "--date", "05/03/2024"}, core.ErrUnparseableDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, db, tt.args...)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, exitInvalid, exitCode(err))
		})
	}

	out, err := run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sales recorded")
}

func TestCatalogSearch(t *testing.T) {
	db := testDB(t)

	out, err := run(t, db, "catalog", "iced")
	require.NoError(t, err)
	assert.Contains(t, out, "Iced Latte")
	assert.Contains(t, out, "cold drink")
	assert.NotContains(t, out, "Croissant")

	out, err = run(t, db, "catalog", "nothing-like-this")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching items")
}

func TestReport(t *testing.T) {
	db := testDB(t)

	for _, args := range [][]string{
		{"record", "Latte", "2", "--date", "2024-03-05"},
		{"record", "Croissant", "1", "--date", "2024-03-05"},
		{"record", "Latte", "1", "--date", "2024-04-01"},
	} {
		_, err := run(t, db, args...)
		require.NoError(t, err)
	}

	out, err := run(t, db, "--format", "json", "report", "--period", "weekly", "--limit", "1")
	require.NoError(t, err)

	var d report.Dashboard
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.True(t, d.Summary.TotalSales.Equal(core.MoneyFromInt(235)))
	assert.Equal(t, 4, d.Summary.TotalItems)
	assert.Equal(t, 3, d.Summary.TotalCount)
	assert.Equal(t, report.Weekly, d.Trend.Period)
	require.Len(t, d.Trend.Buckets, 2)
	assert.Equal(t, "2024-03-03", d.Trend.Buckets[0].Key)
	require.Len(t, d.TopSellers, 1)
	assert.Equal(t, report.ItemQuantity{ItemName: "Latte", Quantity: 3}, d.TopSellers[0])

	out, err = run(t, db, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Trend (monthly)")
	assert.Contains(t, out, "$235.00")
	assert.Contains(t, out, "1. Latte")

	_, err = run(t, db, "report", "--period", "yearly")
	require.ErrorIs(t, err, report.ErrInvalidPeriod)
}

func TestResetRequiresConfirmation(t *testing.T) {
	db := testDB(t)

	_, err := run(t, db, "record", "Latte", "1", "--date", "2024-03-05")
	require.NoError(t, err)

	_, err = run(t, db, "reset")
	require.ErrorIs(t, err, errConfirmRequired)

	out, err := run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Latte")

	out, err = run(t, db, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Journal cleared")

	out, err = run(t, db, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sales recorded")
}

func TestInvalidFormat(t *testing.T) {
	db := testDB(t)

	_, err := run(t, db, "--format", "xml", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, exitFailure, exitCode(err))
}
