package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/termstore/store"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termctl.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, `
[heap]
low_memory = true
check_consistency = true

[heap.tuning]
min_blocks = 2

[log]
enabled = true
level = "debug"
`)
	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, f.Path)
	require.True(t, f.Heap.LowMemory)
	require.True(t, f.Heap.CheckConsistency)
	require.Equal(t, 2, f.Heap.Tuning.MinBlocks)
	require.Equal(t, store.DefaultTuning().GoodGCRatio, f.Heap.Tuning.GoodGCRatio)
	require.Equal(t, Default().Bench, f.Bench)

	opts := f.Log.LoggerOptions()
	require.True(t, opts.Enabled)
	require.Equal(t, slog.LevelDebug, opts.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "cannot read")

	_, err = Load(writeFile(t, "[heap\n"))
	require.ErrorContains(t, err, "parse error")

	_, err = Load(writeFile(t, "[heap]\nlow_memroy = true\n"))
	require.ErrorContains(t, err, "unknown key")

	_, err = Load(writeFile(t, "[bench]\nretain = 2.0\n"))
	require.ErrorContains(t, err, "bench.retain")

	_, err = Load(writeFile(t, "[log]\nlevel = \"loud\"\n"))
	require.ErrorContains(t, err, "log.level")
}

func TestWrite_RoundTrip(t *testing.T) {
	f := Default()
	f.Heap.MaxBlocks = 64
	f.Heap.Tuning.PromotionRatio = 0.8
	f.Bench.Seed = 42

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, f))
	require.Contains(t, buf.String(), "[heap.tuning]")

	got, err := Load(writeFile(t, buf.String()))
	require.NoError(t, err)
	got.Path = ""
	require.Equal(t, f, got)
}
