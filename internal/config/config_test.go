package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "./configs/sources.yaml", cfg.SourcesFile)
	require.Equal(t, 200, cfg.SummaryLength)
	require.Equal(t, 10*time.Second, cfg.FetchTimeout)
	require.Equal(t, 1, cfg.FetchConcurrency)
	require.Equal(t, "America/New_York", cfg.Location.String())
	require.Equal(t, ".", cfg.OutputDir)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("NYT_KEY", " nyt-token ")
	t.Setenv("FINNHUB_KEY", "fh-token")
	t.Setenv("SUMMARY_LENGTH", "120")
	t.Setenv("TIMEZONE", "Europe/London")
	t.Setenv("FETCH_CONCURRENCY", "4")

	cfg, err := Load()
	require.NoError(t, err)

	keys := cfg.APIKeys()
	require.Equal(t, "nyt-token", keys["nyt"])
	require.Equal(t, "fh-token", keys["finnhub"])
	require.Empty(t, keys["sports"])
	require.Equal(t, 120, cfg.SummaryLength)
	require.Equal(t, "Europe/London", cfg.Location.String())
	require.Equal(t, 4, cfg.FetchConcurrency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"summary length": {"SUMMARY_LENGTH", "0"},
		"fetch timeout":  {"FETCH_TIMEOUT_SECONDS", "-1"},
		"timezone":       {"TIMEZONE", "Mars/Olympus_Mons"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestRedactedMasksKeys(t *testing.T) {
	cfg := &Config{NYTKey: "secret", FinnhubKey: ""}
	red := cfg.Redacted()
	require.Equal(t, "***", red.NYTKey)
	require.Empty(t, red.FinnhubKey)
	require.Equal(t, "secret", cfg.NYTKey)
}
