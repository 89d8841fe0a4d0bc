package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_DisabledDiscards(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Enabled: false, Output: &buf})
	l.Info("hello")
	require.Zero(t, buf.Len())
}

func TestNew_TextAndJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Enabled: true, Output: &buf})
	l.Info("gc cycle", "kind", "minor")
	require.Contains(t, buf.String(), "kind=minor")

	buf.Reset()
	l = New(Options{Enabled: true, Output: &buf, JSON: true})
	l.Info("gc cycle", "kind", "major")
	require.Contains(t, buf.String(), `"kind":"major"`)
}

func TestInit_ReplacesGlobal(t *testing.T) {
	prev := L
	defer func() { L = prev }()

	var buf bytes.Buffer
	Init(Options{Enabled: true, Output: &buf, Level: slog.LevelWarn})
	Info("dropped")
	Warn("kept")
	require.NotContains(t, buf.String(), "dropped")
	require.Contains(t, buf.String(), "kept")
}
