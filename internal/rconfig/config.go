// Package rconfig loads connection defaults from a YAML file and
// overlays environment variables on top, the way a deployed service
// built on this connector would configure it rather than filling out
// redisconn.Opts by hand in code.
package rconfig

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mrcece/aedis/redisconn"
)

// File is the shape of the YAML configuration file.
type File struct {
	Host              string        `yaml:"host"`
	Port              string        `yaml:"port"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	ResolveTimeout    time.Duration `yaml:"resolve_timeout"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout"`
	PingInterval      time.Duration `yaml:"ping_interval"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	MaxReadSize       int64         `yaml:"max_read_size"`
	DisableCoalescing bool          `yaml:"disable_coalescing"`
	EnableEvents      bool          `yaml:"enable_events"`
	EnableReconnect   bool          `yaml:"enable_reconnect"`
}

// Load parses a YAML configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Env is the environment-variable overlay, seeded optionally from a
// .env file before processing.
type Env struct {
	Host     string `env:"REDIS_HOST"`
	Port     string `env:"REDIS_PORT"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
}

// LoadEnv loads a .env file if present (silently skipping a missing
// file) and then processes REDIS_* environment variables into an Env.
func LoadEnv(ctx context.Context) (*Env, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	var e Env
	if err := envconfig.Process(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyTo merges f onto opts. Empty strings and zero durations or sizes
// in f leave the existing value in opts untouched; the three boolean
// flags are always copied, so a false in f overwrites a true in opts.
// Calling Env.ApplyTo afterwards lets the environment take precedence.
func (f *File) ApplyTo(opts *redisconn.Opts) {
	if f == nil {
		return
	}
	if f.Host != "" {
		opts.Host = f.Host
	}
	if f.Port != "" {
		opts.Port = f.Port
	}
	if f.Username != "" {
		opts.Username = f.Username
	}
	if f.Password != "" {
		opts.Password = f.Password
	}
	if f.ResolveTimeout != 0 {
		opts.ResolveTimeout = f.ResolveTimeout
	}
	if f.ConnectTimeout != 0 {
		opts.ConnectTimeout = f.ConnectTimeout
	}
	if f.PingInterval != 0 {
		opts.PingInterval = f.PingInterval
	}
	if f.ReconnectInterval != 0 {
		opts.ReconnectInterval = f.ReconnectInterval
	}
	if f.MaxReadSize != 0 {
		opts.MaxReadSize = f.MaxReadSize
	}
	opts.DisableCoalescing = f.DisableCoalescing
	opts.EnableEvents = f.EnableEvents
	opts.EnableReconnect = f.EnableReconnect
}

// ApplyTo overlays the environment-sourced fields onto opts.
func (e *Env) ApplyTo(opts *redisconn.Opts) {
	if e == nil {
		return
	}
	if e.Host != "" {
		opts.Host = e.Host
	}
	if e.Port != "" {
		opts.Port = e.Port
	}
	if e.Username != "" {
		opts.Username = e.Username
	}
	if e.Password != "" {
		opts.Password = e.Password
	}
}
