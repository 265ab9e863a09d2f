package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaze-heatmap/pkg/heatmap"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1024, cfg.Heatmap.Width)
	assert.InDelta(t, 2.0, cfg.Surface.Scale.X, 1e-9)
	assert.True(t, cfg.LiveInput)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "heatmap.json", `{
		"heatmap": {"brush_spread": 35, "uv_mode": "planar"},
		"follow": true
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.Heatmap.BrushSpread = 35
	want.Heatmap.UVMode = heatmap.UVPlanar
	want.Follow = true
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr error
	}{
		{"wrong extension", func(t *testing.T) string { return writeFile(t, "heatmap.yaml", "{}") }, nil},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.json") }, os.ErrNotExist},
		{"bad json", func(t *testing.T) string { return writeFile(t, "bad.json", "{") }, nil},
		{"invalid values", func(t *testing.T) string {
			return writeFile(t, "neg.json", `{"heatmap": {"amplitude": -2}}`)
		}, heatmap.ErrInvalidConfig},
		{"tiny ramp", func(t *testing.T) string { return writeFile(t, "ramp.json", `{"ramp_width": 1}`) }, heatmap.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path(t))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault(filepath.Join(t.TempDir(), "gone.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
