package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Hostname: "broker",
		Port:     "15672",
		Vhost:    "%2F",
		Username: "guest",
		Password: "guest",
		Pattern:  "orders.*",
		Timeout:  time.Second,
	}
}

func TestDefaults_FromEnvironment(t *testing.T) {
	t.Setenv("RABBITMQ_HOSTNAME", "env-broker")
	t.Setenv("RABBITMQ_PORT", "15673")
	t.Setenv("RABBITMQ_VHOST", "prod")
	t.Setenv("RABBITMQ_USER", "monitor")
	t.Setenv("RABBITMQ_PASSWORD", "secret")

	cfg := Defaults()

	assert.Equal(t, "env-broker", cfg.Hostname)
	assert.Equal(t, "15673", cfg.Port)
	assert.Equal(t, "prod", cfg.Vhost)
	assert.Equal(t, "monitor", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, DefaultPattern, cfg.Pattern)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestDefaults_WithoutEnvironment(t *testing.T) {
	for _, name := range []string{"RABBITMQ_HOSTNAME", "RABBITMQ_PORT", "RABBITMQ_VHOST", "RABBITMQ_USER", "RABBITMQ_PASSWORD"} {
		t.Setenv(name, "")
	}

	cfg := Defaults()

	assert.Empty(t, cfg.Hostname)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultVhost, cfg.Vhost)
}

func TestBindFlags(t *testing.T) {
	cfg := Config{Port: DefaultPort, Timeout: DefaultTimeout}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	err := fs.Parse([]string{"-H", "broker", "--ssl", "-w", "10:", "-c", "100:", "-t", "3s", "--pattern", "orders"})
	require.NoError(t, err)

	assert.Equal(t, "broker", cfg.Hostname)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.True(t, cfg.UseSSL)
	assert.Equal(t, "10:", cfg.Warning)
	assert.Equal(t, "100:", cfg.Critical)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "orders", cfg.Pattern)
}

func TestBindFlags_TLSAndTotalTimeout(t *testing.T) {
	var cfg Config
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	err := fs.Parse([]string{"--cert", "client.pem", "--key-file", "client-key.pem", "--total-timeout", "30s"})
	require.NoError(t, err)

	assert.Equal(t, "client.pem", cfg.ClientCert)
	assert.Equal(t, "client-key.pem", cfg.ClientKey)
	assert.Equal(t, 30*time.Second, cfg.TotalTimeout)
}

func TestLoadFile_FlagsOverrideFile(t *testing.T) {
	t.Setenv("RABBITMQ_USER", "from-env")

	path := filepath.Join(t.TempDir(), "check.yaml")
	content := `
hostname: file-broker
port: "15673"
password: file-secret
pattern: "billing\\."
critical: "500:"
timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := Defaults()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"--hostname", "flag-broker", "-w", "10:"}))

	loaded, err := LoadFile(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "flag-broker", loaded.Hostname, "flag wins over file")
	assert.Equal(t, "15673", loaded.Port, "file wins over default")
	assert.Equal(t, "from-env", loaded.Username, "environment kept when file is silent")
	assert.Equal(t, "file-secret", loaded.Password)
	assert.Equal(t, `billing\.`, loaded.Pattern)
	assert.Equal(t, "10:", loaded.Warning)
	assert.Equal(t, "500:", loaded.Critical)
	assert.Equal(t, 5*time.Second, loaded.Timeout)
}

func TestLoadFile_Errors(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), fs)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "unknown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hostnme: typo\n"), 0o600))
	_, err = LoadFile(path, fs)
	assert.Error(t, err, "unknown keys are rejected")
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	cfg.Warning = "10:"
	cfg.Critical = "@0:5"

	v, err := cfg.Validate()
	require.NoError(t, err)

	assert.True(t, v.Matcher.MatchString("orders.new"))
	assert.True(t, v.Matcher.MatchString("orders.new.retry"), "prefix match")
	assert.False(t, v.Matcher.MatchString("legacy.orders"), "anchored at start")
	require.NotNil(t, v.WarningRange)
	assert.Equal(t, 10.0, v.WarningRange.Start)
	require.NotNil(t, v.CriticalRange)
	assert.True(t, v.CriticalRange.Invert)
}

func TestValidate_UnsetRangesStayNil(t *testing.T) {
	v, err := validConfig().Validate()
	require.NoError(t, err)

	assert.Nil(t, v.WarningRange)
	assert.Nil(t, v.CriticalRange)
}

func TestValidate_Alternation(t *testing.T) {
	cfg := validConfig()
	cfg.Pattern = "orders|billing"

	v, err := cfg.Validate()
	require.NoError(t, err)

	assert.True(t, v.Matcher.MatchString("billing.invoices"))
	assert.False(t, v.Matcher.MatchString("x.billing"))
}

func TestValidate_Problems(t *testing.T) {
	tests := map[string]struct {
		modify func(*Config)
		want   []string
	}{
		"missing hostname": {
			modify: func(c *Config) { c.Hostname = "" },
			want:   []string{"hostname is required"},
		},
		"missing credentials": {
			modify: func(c *Config) { c.Username, c.Password = "", "" },
			want:   []string{"username is required", "password is required"},
		},
		"missing vhost": {
			modify: func(c *Config) { c.Vhost = "" },
			want:   []string{"vhost is required"},
		},
		"non-numeric port": {
			modify: func(c *Config) { c.Port = "http" },
			want:   []string{`port must be between 1 and 65535, got "http"`},
		},
		"port out of range": {
			modify: func(c *Config) { c.Port = "70000" },
			want:   []string{`port must be between 1 and 65535, got "70000"`},
		},
		"bad pattern": {
			modify: func(c *Config) { c.Pattern = "orders[" },
		},
		"bad warning": {
			modify: func(c *Config) { c.Warning = "ten" },
		},
		"bad critical": {
			modify: func(c *Config) { c.Critical = "5:1" },
		},
		"negative total timeout": {
			modify: func(c *Config) { c.TotalTimeout = -time.Second },
			want:   []string{"total timeout must not be negative"},
		},
		"client certificate without key": {
			modify: func(c *Config) { c.ClientCert = "client.pem" },
			want:   []string{"client certificate and key must be given together"},
		},
		"negative timeout": {
			modify: func(c *Config) { c.Timeout = -time.Second },
			want:   []string{"timeout must not be negative"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			test.modify(&cfg)

			v, err := cfg.Validate()
			assert.Nil(t, v)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Problems)
			if test.want != nil {
				assert.Equal(t, test.want, verr.Problems)
			}
		})
	}
}
