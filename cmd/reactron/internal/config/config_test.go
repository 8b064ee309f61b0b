package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "go.mod", "module example.com/acme/todo/v2\n\ngo 1.24\n")

	r, err := Resolve(dir)
	require.NoError(t, err)

	assert.Equal(t, "example.com/acme/todo/v2", r.ModulePath)
	assert.Equal(t, "todo", r.AppName)
	assert.Equal(t, DefaultBudget, r.Budget)
	assert.Equal(t, DefaultFrameInterval, r.FrameInterval)
	assert.Equal(t, DefaultTraceSamples, r.TraceSamples)
	assert.Equal(t, DefaultServerAddr, r.ServerAddr)
	assert.Equal(t, "info", r.LogLevel)
	assert.Equal(t, "text", r.LogFormat)
	assert.Zero(t, r.MaxSteps)
	assert.Zero(t, r.SlowFrame)
}

func TestResolveWithoutGoMod(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scratch")
	require.NoError(t, os.Mkdir(dir, 0o755))

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Empty(t, r.ModulePath)
	assert.Equal(t, "scratch", r.AppName)
}

func TestResolveFromFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
app:
  name: Groceries
engine:
  budget: 8ms
  max_steps: 3
  frame_interval: 33ms
  trace_samples: 60
  slow_frame: 20ms
server:
  addr: ":9000"
log:
  level: DEBUG
  format: json
`)

	r, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", r.AppName)
	assert.Equal(t, 8*time.Millisecond, r.Budget)
	assert.Equal(t, 3, r.MaxSteps)
	assert.Equal(t, 33*time.Millisecond, r.FrameInterval)
	assert.Equal(t, 60, r.TraceSamples)
	assert.Equal(t, 20*time.Millisecond, r.SlowFrame)
	assert.Equal(t, ":9000", r.ServerAddr)
	assert.Equal(t, "debug", r.LogLevel)
	assert.Equal(t, "json", r.LogFormat)
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "engine: [", "failed to parse reactron.yaml"},
		{"bad duration", "engine:\n  budget: soon\n", `engine.budget: invalid duration "soon"`},
		{"negative steps", "engine:\n  max_steps: -1\n", "engine.max_steps must not be negative"},
		{"zero interval", "engine:\n  frame_interval: 0s\n", "engine.frame_interval must be positive"},
		{"bad level", "log:\n  level: loud\n", "log.level must be"},
		{"bad format", "log:\n  format: xml\n", "log.format must be text or json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.content)
			_, err := Resolve(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestApplyOverrides(t *testing.T) {
	r, err := ResolveConfig(t.TempDir(), &Config{})
	require.NoError(t, err)

	settings := r.Settings()
	settings[KeyBudget] = "1ms"
	settings[KeyMaxSteps] = "5"
	settings[KeyLogLevel] = "Warn"
	settings[KeyAppName] = ""
	before := r.AppName

	require.NoError(t, r.Apply(func(key string) string { return settings[key] }))
	assert.Equal(t, time.Millisecond, r.Budget)
	assert.Equal(t, 5, r.MaxSteps)
	assert.Equal(t, "warn", r.LogLevel)
	assert.Equal(t, before, r.AppName, "an empty name keeps the resolved one")
}

func TestApplyRejectsInvalidAndKeepsState(t *testing.T) {
	r, err := ResolveConfig(t.TempDir(), &Config{})
	require.NoError(t, err)
	want := *r

	settings := r.Settings()
	settings[KeyTraceSamples] = "many"
	err = r.Apply(func(key string) string { return settings[key] })
	require.Error(t, err)
	assert.Equal(t, want, *r)

	settings = r.Settings()
	settings[KeyLogFormat] = "yaml"
	require.Error(t, r.Apply(func(key string) string { return settings[key] }))
	assert.Equal(t, want, *r)
}

func TestSettingsApplyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	levels := []string{"debug", "info", "warn", "error"}

	properties.Property("applying a resolved config's own settings changes nothing", prop.ForAll(
		func(budgetUs, intervalMs, slowMs, steps, samples, level int, json bool) bool {
			r := &Resolved{
				AppName:       "app",
				Budget:        time.Duration(budgetUs) * time.Microsecond,
				FrameInterval: time.Duration(intervalMs) * time.Millisecond,
				SlowFrame:     time.Duration(slowMs) * time.Millisecond,
				MaxSteps:      steps,
				TraceSamples:  samples,
				ServerAddr:    DefaultServerAddr,
				LogLevel:      levels[level],
				LogFormat:     "text",
			}
			if json {
				r.LogFormat = "json"
			}
			want := *r
			settings := r.Settings()
			if err := r.Apply(func(key string) string { return settings[key] }); err != nil {
				return false
			}
			return *r == want
		},
		gen.IntRange(0, 100000),
		gen.IntRange(1, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 64),
		gen.IntRange(1, 4096),
		gen.IntRange(0, len(levels)-1),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
