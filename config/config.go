// Package config holds the options of a queue check. Values come from
// defaults, the environment, an optional YAML file and command-line flags,
// in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/jlecren/rabbitmq-nagios-plugins/nagios"
)

const (
	DefaultPort    = "15672"
	DefaultVhost   = "%2F"
	DefaultPattern = ".*"
	DefaultTimeout = 10 * time.Second
)

// Config is the raw, unvalidated set of options.
type Config struct {
	Hostname string        `yaml:"hostname"`
	Port     string        `yaml:"port"`
	UseSSL   bool          `yaml:"ssl"`
	Vhost    string        `yaml:"vhost"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	Pattern  string        `yaml:"pattern"`
	Warning  string        `yaml:"warning"`
	Critical string        `yaml:"critical"`
	Timeout  time.Duration `yaml:"timeout"`
	// TotalTimeout bounds the whole check, all requests included. 0 disables it.
	TotalTimeout time.Duration `yaml:"total_timeout"`
	CACert       string        `yaml:"ca_cert"`
	ClientCert   string        `yaml:"client_cert"`
	ClientKey    string        `yaml:"client_key"`
	Insecure     bool          `yaml:"insecure"`
	Textfile     string        `yaml:"textfile"`
	Verbose      bool          `yaml:"verbose"`
}

// Defaults returns the built-in defaults overridden by the RABBITMQ_*
// environment variables.
func Defaults() Config {
	cfg := Config{
		Port:    DefaultPort,
		Vhost:   DefaultVhost,
		Pattern: DefaultPattern,
		Timeout: DefaultTimeout,
	}

	if v := os.Getenv("RABBITMQ_HOSTNAME"); v != "" {
		cfg.Hostname = v
	}
	if v := os.Getenv("RABBITMQ_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("RABBITMQ_VHOST"); v != "" {
		cfg.Vhost = v
	}
	cfg.Username = os.Getenv("RABBITMQ_USER")
	cfg.Password = os.Getenv("RABBITMQ_PASSWORD")

	return cfg
}

// BindFlags registers one flag per option on fs, using the current values
// of c as flag defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Hostname, "hostname", "H", c.Hostname, "Management API host")
	fs.StringVarP(&c.Port, "port", "P", c.Port, "Management API port")
	fs.BoolVar(&c.UseSSL, "ssl", c.UseSSL, "Use HTTPS for the management API")
	fs.StringVar(&c.Vhost, "vhost", c.Vhost, "URL-escaped vhost (\"/\" is %2F)")
	fs.StringVarP(&c.Username, "username", "u", c.Username, "Management API user")
	fs.StringVarP(&c.Password, "password", "p", c.Password, "Management API password")
	fs.StringVar(&c.Pattern, "pattern", c.Pattern, "Regular expression queue names must match from their start")
	fs.StringVarP(&c.Warning, "warning", "w", c.Warning, "Message count range that raises WARNING (e.g. 10:)")
	fs.StringVarP(&c.Critical, "critical", "c", c.Critical, "Message count range that raises CRITICAL (e.g. 100:)")
	fs.DurationVarP(&c.Timeout, "timeout", "t", c.Timeout, "Timeout of each API request")
	fs.DurationVar(&c.TotalTimeout, "total-timeout", c.TotalTimeout, "Timeout of the whole check, 0 for none")
	fs.StringVar(&c.CACert, "ca-cert", c.CACert, "Path to CA certificate file")
	fs.StringVar(&c.ClientCert, "cert", c.ClientCert, "Path to client certificate file")
	fs.StringVar(&c.ClientKey, "key-file", c.ClientKey, "Path to client private key file")
	fs.BoolVar(&c.Insecure, "insecure", c.Insecure, "Skip TLS certificate verification")
	fs.StringVar(&c.Textfile, "textfile", c.Textfile, "Also write the results as Prometheus metrics to this file")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "Log requests and per-queue results to stderr")
}

// LoadFile reads a YAML config file on top of the defaults and then
// re-applies every flag that was set explicitly on fs, so flags win over
// the file.
func LoadFile(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Defaults()

	content, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(content, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
	cfg.BindFlags(overlay)

	var setErr error
	fs.Visit(func(f *pflag.Flag) {
		if overlay.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		setErr = overlay.Set(f.Name, f.Value.String())
	})

	return cfg, setErr
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Validated is a Config that passed Validate, with the pattern and the
// threshold ranges parsed. It must not be modified.
type Validated struct {
	Config

	Matcher       *regexp.Regexp
	WarningRange  *nagios.Range
	CriticalRange *nagios.Range
}

// Validate checks that every required option is present and parses the
// pattern and ranges. Unset ranges stay nil.
func (c Config) Validate() (*Validated, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, req := range []struct{ name, value string }{
		{"hostname", c.Hostname},
		{"port", c.Port},
		{"vhost", c.Vhost},
		{"username", c.Username},
		{"password", c.Password},
	} {
		if req.value == "" {
			addf("%s is required", req.name)
		}
	}

	if c.Port != "" {
		if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
			addf("port must be between 1 and 65535, got %q", c.Port)
		}
	}
	if c.Timeout < 0 {
		addf("timeout must not be negative")
	}
	if c.TotalTimeout < 0 {
		addf("total timeout must not be negative")
	}
	if (c.ClientCert == "") != (c.ClientKey == "") {
		addf("client certificate and key must be given together")
	}

	v := &Validated{Config: c}

	// match from the start of the name, but not necessarily to its end
	matcher, err := regexp.Compile("^(?:" + c.Pattern + ")")
	if err != nil {
		addf("invalid pattern %q: %v", c.Pattern, err)
	}
	v.Matcher = matcher

	if c.Warning != "" {
		if v.WarningRange, err = nagios.ParseRange(c.Warning); err != nil {
			addf("warning: %v", err)
		}
	}
	if c.Critical != "" {
		if v.CriticalRange, err = nagios.ParseRange(c.Critical); err != nil {
			addf("critical: %v", err)
		}
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return v, nil
}
