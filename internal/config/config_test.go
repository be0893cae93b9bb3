package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(52428800), cfg.Upload.MaxFileSize)
	assert.Equal(t, 10, cfg.Upload.MaxFiles)
	assert.Equal(t, 5, cfg.Upload.MaxConcurrent)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, 256, cfg.Analysis.CacheSize)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "usercount_session", cfg.Session.CookieName)
	assert.Equal(t, 120, cfg.Rate.RequestsPerMinute)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_OverrideDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("UPLOAD_MAX_CONCURRENT", "10")
	t.Setenv("ANALYSIS_WORKERS", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Upload.MaxConcurrent)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_AltEnvVar(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestLoad_PrimaryWinsOverAlt(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoad_Duration(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "45s")
	t.Setenv("SESSION_TTL", "1h30m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 90*time.Minute, cfg.Session.TTL)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.0/12 , 192.168.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}, cfg.Security.TrustedProxies)
}

func TestLoadStruct_Required(t *testing.T) {
	var s struct {
		Token string `env:"USERCOUNT_TEST_TOKEN" required:"true"`
	}

	src, err := newSource()
	require.NoError(t, err)
	err = loadStruct(reflect.ValueOf(&s).Elem(), src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "USERCOUNT_TEST_TOKEN")

	t.Setenv("USERCOUNT_TEST_TOKEN", "abc")
	src, err = newSource()
	require.NoError(t, err)
	require.NoError(t, loadStruct(reflect.ValueOf(&s).Elem(), src))
	assert.Equal(t, "abc", s.Token)
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "usercount.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_ConfigFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TRUSTED_PROXIES", "")
	t.Setenv(ConfigPathEnvVar, writeConfigFile(t, `
server_port: 9191
session_ttl: 45m
trusted_proxies:
  - 10.0.0.0/8
  - 192.168.1.1
rate_limit_enabled: false
`))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 45*time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.Security.TrustedProxies)
	assert.False(t, cfg.Rate.Enabled)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, writeConfigFile(t, "server_port: 9191\nlog_level: debug\n"))
	t.Setenv("SERVER_PORT", "9292")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9292, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level, "empty variables do not mask the file")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ConfigPathEnvVar)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")
	cfg, err := Load()
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.Server.Port = 70000 }, "SERVER_PORT"},
		{"zero max files", func(c *Config) { c.Upload.MaxFiles = 0 }, "UPLOAD_MAX_FILES"},
		{"zero workers", func(c *Config) { c.Analysis.Workers = 0 }, "ANALYSIS_WORKERS"},
		{"zero cache", func(c *Config) { c.Analysis.CacheSize = 0 }, "ANALYSIS_CACHE_SIZE"},
		{"zero session ttl", func(c *Config) { c.Session.TTL = 0 }, "SESSION_TTL"},
		{"empty cookie name", func(c *Config) { c.Session.CookieName = " " }, "SESSION_COOKIE_NAME"},
		{"bad proxy cidr", func(c *Config) { c.Security.TrustedProxies = []string{"10.0.0.1/99"} }, "TRUSTED_PROXIES"},
		{"bad cors origin", func(c *Config) { c.Security.CORSOrigins = []string{"reports.example.com"} }, "CORS_ALLOWED_ORIGINS"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "METRICS_PATH"},
		{"invalid log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig(t)
	cfg.Server.Port = 0
	cfg.Analysis.Workers = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "ANALYSIS_WORKERS")
}

func TestValidate_RateLimitDisabled(t *testing.T) {
	cfg := validConfig(t)
	cfg.Rate.Enabled = false
	cfg.Rate.RequestsPerMinute = 0

	assert.NoError(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 3000, ":3000"},
		{"localhost", 443, "localhost:443"},
	}

	for _, tt := range tests {
		c := &ServerConfig{Host: tt.host, Port: tt.port}
		assert.Equal(t, tt.want, c.Addr())
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig(t)
	str := cfg.String()

	assert.Contains(t, str, "0.0.0.0:8080")
	assert.Contains(t, str, "Workers: 4")
}
