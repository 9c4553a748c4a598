package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tcgsearch/lib/cardsearch"

	"github.com/stretchr/testify/require"
)

func writeConfig(t testing.TB, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Setenv(ApiKeyEnv, "")

	dir := t.TempDir()
	path := writeConfig(t, dir, "tcgsearch.json5", `{
		base_url: "https://cards.example/v1",
		api_key: "from-file",
		timeout_seconds: 10,
		rate_limit: 2.5,
		strict_decoding: true,
		overlap_policy: "ignore-new",
		output: "table",
	}`)
	writeConfig(t, dir, "tcgsearch.local.json5", `{ proxy: { port: 9000 } }`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Proxy.Port)

	require.Equal(t, cardsearch.Options{
		BaseUrl:        "https://cards.example/v1",
		ApiKey:         "from-file",
		Timeout:        10 * time.Second,
		RateLimit:      2.5,
		StrictDecoding: true,
	}, cfg.ClientOptions())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	require.Equal(t, cardsearch.IgnoreNew, policy)

	format, err := cfg.Format()
	require.NoError(t, err)
	require.Equal(t, cardsearch.FormatTable, format)
}

func TestLoadEnvOverridesKey(t *testing.T) {
	t.Setenv(ApiKeyEnv, "from-env")

	path := writeConfig(t, t.TempDir(), "tcgsearch.json5", `{ api_key: "from-file" }`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.ApiKey)
	require.Equal(t, cardsearch.DefaultBaseUrl, cfg.BaseUrl)
	require.Equal(t, defaultProxyPort, cfg.Proxy.Port)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json5"))
	require.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []string{
		`{ overlap_policy: "sometimes" }`,
		`{ output: "xml" }`,
		`{ timeout_seconds: -1 }`,
		`{ rate_limit: -3 }`,
	}
	for _, contents := range testCases {
		path := writeConfig(t, t.TempDir(), "tcgsearch.json5", contents)
		_, err := Load(path)
		require.Error(t, err, contents)
	}
}
