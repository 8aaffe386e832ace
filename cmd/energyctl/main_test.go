package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "SendDate,Solar Power (kW),Solar energy Generation  (kWh),consumptionValue (kW)\n" +
	"2024-01-01 10:00,2.5,1200.5,0.8\n" +
	"2024-01-01 11:00,3.1,1.5,0.9\n" +
	"2024-01-02 10:00,2.0,1.0,n/a\n"

// run executes the CLI against a database and config in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	chartLimit, chartRate = 0, 0
	profileName, profileProvider = "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "config.yaml"),
		"--db", filepath.Join(dir, "data.db"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "january.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func TestImportThenStats(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "import", writeCSV(t, dir))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 records from january.csv")
	assert.Contains(t, out, "1 fields could not be parsed")

	out, err = run(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:            3")
	assert.Contains(t, out, "Unique days:        2")
	assert.Contains(t, out, "Total solar energy: 1,203.00 kWh")
}

func TestStats_Empty(t *testing.T) {
	out, err := run(t, t.TempDir(), "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached energy data")
}

func TestChart(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "import", writeCSV(t, dir))
	require.NoError(t, err)

	out, err := run(t, dir, "chart", "--rate", "10", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-01-01 10:00")
	assert.Contains(t, out, "2024-01-01 11:00")
	assert.NotContains(t, out, "2024-01-02 10:00")
	assert.Contains(t, out, "2 of 3 rows")

	out, err = run(t, dir, "chart")
	require.NoError(t, err)
	assert.Contains(t, out, "NaN", "no rate configured")
	assert.Contains(t, out, "3 of 3 rows")
}

func TestChart_FlatRateFromConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("flat_rate: 5\n"), 0o600))
	_, err := run(t, dir, "import", writeCSV(t, dir))
	require.NoError(t, err)

	out, err := run(t, dir, "chart", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "  4\n")
	assert.NotContains(t, out, "NaN")
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "import", writeCSV(t, dir))
	require.NoError(t, err)

	out, err := run(t, dir, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared energyData")

	out, err = run(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "No cached energy data")
}

func TestImport_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "import", filepath.Join(dir, "nope.csv"))
	assert.Error(t, err)
}

func TestImport_TooLarge(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("cache:\n  max_records: 2\n"), 0o600))

	_, err := run(t, dir, "import", writeCSV(t, dir))
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "profile", "show", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "No profile for u1")

	out, err = run(t, dir, "profile", "set", "u1", "--name", "Meera", "--provider", "TPDDL")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved profile u1")

	out, err = run(t, dir, "profile", "show", "u1")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:     Meera")
	assert.Contains(t, out, "Provider: TPDDL")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1,234.50", formatNumber(1234.5))
	assert.Equal(t, "NaN", formatNumber(math.NaN()))
}
