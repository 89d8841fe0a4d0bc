package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/termstore/internal/config"
)

// runCmd executes termctl with args and returns what it wrote to stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, quiet, jsonOut = false, false, false
	configPath, logLevel = "", ""
	benchFormat, benchOut = "text", ""
	benchLowMemory, benchCheck = false, false
	printDepth, printAnnos = 0, true

	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

var smallBench = []string{"bench", "--terms", "20000", "--retain", "0.1", "--width", "2", "--seed", "7"}

func TestBench_Text(t *testing.T) {
	out, err := runCmd(t, append(smallBench, "--low-memory", "--check")...)
	require.NoError(t, err)
	require.Contains(t, out, "20000 terms in")
	require.Contains(t, out, "collections")
}

func TestBench_JSON(t *testing.T) {
	out, err := runCmd(t, append(smallBench, "--json")...)
	require.NoError(t, err)

	var report BenchReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, 20000, report.Workload.Terms)
	require.Positive(t, report.Retained)
	require.Positive(t, report.Stats.Majors)
	require.GreaterOrEqual(t, report.Stats.Terms, report.Retained)
}

func TestBench_CBORToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.cbor")
	out, err := runCmd(t, append(smallBench, "--format", "cbor", "--output", path)...)
	require.NoError(t, err)
	require.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report BenchReport
	require.NoError(t, cbor.Unmarshal(data, &report))
	require.Equal(t, int64(7), report.Workload.Seed)
	require.NotEmpty(t, report.Stats.HeapID)
}

func TestBench_Errors(t *testing.T) {
	_, err := runCmd(t, append(smallBench, "--format", "xml")...)
	require.ErrorContains(t, err, "unknown format")

	_, err = runCmd(t, "bench", "--terms", "10", "--retain", "3", "--width", "2", "--seed", "1")
	require.ErrorContains(t, err, "bench.retain")
}

func TestConfig_RoundTrip(t *testing.T) {
	out, err := runCmd(t, "config")
	require.NoError(t, err)
	require.Contains(t, out, "[heap.tuning]")

	path := filepath.Join(t.TempDir(), "termctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	out, err = runCmd(t, "config", "--config", path, "--json")
	require.NoError(t, err)
	var f config.File
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	require.Equal(t, config.Default().Heap.Tuning, f.Heap.Tuning)
}

func TestPrint(t *testing.T) {
	out, err := runCmd(t, "print")
	require.NoError(t, err)
	require.Equal(t, "point(1.5,[3,2,1],<int>,#4:626c6f62){[pos,7]}\n", out)

	out, err = runCmd(t, "print", "--depth", "1", "--annotations=false")
	require.NoError(t, err)
	require.Equal(t, "point(...,...,...,...)\n", out)

	out, err = runCmd(t, "print", "--json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "point", doc["name"])
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "termctl dev")
}
