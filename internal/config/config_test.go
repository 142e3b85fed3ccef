package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigName)
	err := os.WriteFile(path, []byte(`{
		base_url: "https://learn.example.edu",
		cookies: { d2lSessionVal: "abc" },
		redis: { addr: "localhost:6379" },
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, ".valence/cache.db", cfg.Cache.File)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "missing base url", cfg: Config{Cookies: map[string]string{"a": "b"}}},
		{name: "bad scheme", cfg: Config{BaseUrl: "ftp://x", Cookies: map[string]string{"a": "b"}}},
		{name: "no cookies", cfg: Config{BaseUrl: "https://x"}},
		{name: "bad timezone", cfg: Config{BaseUrl: "https://x", Cookies: map[string]string{"a": "b"}, Timezone: "Nowhere/Place"}},
		{name: "ok", cfg: Config{BaseUrl: "https://x", Cookies: map[string]string{"a": "b"}}, ok: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.ok {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
		})
	}
}
