package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborpulse/pkg/contracts/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "2019-12", cfg.Metrics.BaselineMonth)
	assert.Equal(t, 3, cfg.Metrics.SmoothingWindow)
	assert.False(t, cfg.Storage.UseSecondaryStorage)
	assert.Equal(t, filepath.Join("data", "csv"), cfg.Storage.CSVDir)
	assert.Equal(t, filepath.Join("data", "labor.db"), cfg.Storage.SQLitePath)
	assert.Equal(t, []string{domain.SeriesUnemployment, domain.SeriesCPI}, cfg.FRED.MandatorySeries)
	assert.Equal(t, []string{domain.SeriesOpenings, domain.SeriesHires, domain.SeriesQuits}, cfg.FRED.OptionalSeries)

	require.NoError(t, cfg.Validate())
}

func TestBaseline(t *testing.T) {
	cfg := Default()
	baseline, err := cfg.Baseline()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, time.December, 1, 0, 0, 0, 0, time.UTC), baseline)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad baseline month",
			mutate:  func(c *Config) { c.Metrics.BaselineMonth = "December 2019" },
			wantErr: "invalid baseline month",
		},
		{
			name:    "zero smoothing window",
			mutate:  func(c *Config) { c.Metrics.SmoothingWindow = 0 },
			wantErr: "smoothing window",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: "invalid server port",
		},
		{
			name:    "no mandatory series",
			mutate:  func(c *Config) { c.FRED.MandatorySeries = nil },
			wantErr: "mandatory series",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

// chdirTemp runs the test from a fresh directory so Load picks up only the
// config.yaml the test writes.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
metrics:
  baseline_month: "2021-06"
  smoothing_window: 6
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "2021-06", cfg.Metrics.BaselineMonth)
	assert.Equal(t, 6, cfg.Metrics.SmoothingWindow)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Fields the file leaves out still get defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
metrics:
  baseline_month: "2021-06"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("LABOR_METRICS_BASELINE_MONTH", "2020-03")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "2020-03", cfg.Metrics.BaselineMonth)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "2019-12", cfg.Metrics.BaselineMonth)
	assert.Equal(t, 3, cfg.Metrics.SmoothingWindow)
}

func TestIsMandatory(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.IsMandatory(domain.SeriesUnemployment))
	assert.True(t, cfg.IsMandatory(domain.SeriesCPI))
	assert.False(t, cfg.IsMandatory(domain.SeriesOpenings))
	assert.False(t, cfg.IsMandatory("NOPE"))
}

func TestAllSeries(t *testing.T) {
	cfg := Default()
	all := cfg.AllSeries()

	assert.Len(t, all, 5)
	assert.Equal(t, domain.SeriesUnemployment, all[0], "mandatory series come first")
}
