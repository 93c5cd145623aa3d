// Package config loads tensionlab settings from a TOML or YAML file.
//
// The default location is $XDG_CONFIG_HOME/tensionlab/config.toml (falling
// back to ~/.config/tensionlab/config.toml). A missing default file is not an
// error; every setting has a default. Files ending in .yaml or .yml are read
// as YAML, anything else as TOML.
//
// Example config.toml:
//
//	[canvas]
//	width = 500
//	height = 400
//
//	[storage]
//	backend = "redis"
//	codec = "msgpack"
//	ttl = "720h"
//
//	[storage.redis]
//	addr = "localhost:6379"
//
//	[defaults]
//	p0x = 0
//	p0y = 150
//	# ... all ten fields
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/tensionlab/pkg/errors"
	"github.com/matzehuels/tensionlab/pkg/geom"
	"github.com/matzehuels/tensionlab/pkg/session"
	"github.com/matzehuels/tensionlab/pkg/state"
	"github.com/matzehuels/tensionlab/pkg/storage"
)

const appName = "tensionlab"

// Storage backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendNone   = "none"
)

// Config is the full set of settings.
type Config struct {
	Canvas   Canvas             `toml:"canvas" yaml:"canvas"`
	Storage  Storage            `toml:"storage" yaml:"storage"`
	Server   Server             `toml:"server" yaml:"server"`
	Defaults map[string]float64 `toml:"defaults" yaml:"defaults"`
}

// Canvas is the drawing area in canvas units.
type Canvas struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Frame returns the canvas as a coordinate frame.
func (c Canvas) Frame() geom.Frame {
	return geom.Frame{Width: c.Width, Height: c.Height}
}

// Storage selects and configures the blob backend.
type Storage struct {
	Backend    string        `toml:"backend" yaml:"backend"`
	Dir        string        `toml:"dir" yaml:"dir"`
	Codec      string        `toml:"codec" yaml:"codec"`
	TTL        time.Duration `toml:"ttl" yaml:"ttl"`
	QuotaBytes int           `toml:"quota_bytes" yaml:"quota_bytes"`
	Prefix     string        `toml:"prefix" yaml:"prefix"`
	Redis      Redis         `toml:"redis" yaml:"redis"`
	Mongo      Mongo         `toml:"mongo" yaml:"mongo"`
}

// Redis configures the Redis backend.
type Redis struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Password string `toml:"password" yaml:"password"`
	DB       int    `toml:"db" yaml:"db"`
}

// Mongo configures the MongoDB backend.
type Mongo struct {
	URI        string `toml:"uri" yaml:"uri"`
	Database   string `toml:"database" yaml:"database"`
	Collection string `toml:"collection" yaml:"collection"`
}

// Server configures `tensionlab serve`.
type Server struct {
	Addr        string        `toml:"addr" yaml:"addr"`
	MaxSessions int           `toml:"max_sessions" yaml:"max_sessions"`
	IdleTimeout time.Duration `toml:"idle_timeout" yaml:"idle_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas: Canvas{Width: 500, Height: 400},
		Storage: Storage{
			Backend: BackendFile,
			Codec:   "json",
			TTL:     session.DefaultTTL,
			Redis:   Redis{Addr: "localhost:6379"},
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: appName, Collection: "states"},
		},
		Server: Server{Addr: ":8080", MaxSessions: 1024, IdleTimeout: 30 * time.Minute},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the default file backend directory (~/.cache/tensionlab/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the config at path over the defaults. An empty path means the
// default location, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}

	if err := decode(path, data, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
		}
	}
	return nil
}

// Validate checks the settings that cannot be fixed up later.
func (c Config) Validate() error {
	if err := errs.ValidateCanvas(c.Canvas.Width, c.Canvas.Height); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}
	if _, err := state.CodecByName(c.Storage.Codec); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "storage codec")
	}
	if c.Storage.TTL < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "storage ttl must not be negative")
	}
	if c.Server.MaxSessions < 0 || c.Server.IdleTimeout < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server session limits must not be negative")
	}
	if _, err := c.DefaultState(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "defaults")
	}
	return nil
}

// DefaultState returns the configured starting diagram, or the built-in one
// when the config has no [defaults] table.
func (c Config) DefaultState() (state.State, error) {
	if len(c.Defaults) == 0 {
		return state.Defaults(), nil
	}
	return state.FromMap(c.Defaults)
}

// CodecOrDefault returns the configured blob codec, falling back to JSON.
func (s Storage) CodecOrDefault() state.Codec {
	codec, err := state.CodecByName(s.Codec)
	if err != nil {
		return state.JSONCodec{}
	}
	return codec
}

// Keyer returns the key scheme, prefixed when Prefix is set.
func (s Storage) Keyer() storage.Keyer {
	if s.Prefix == "" {
		return storage.NewDefaultKeyer()
	}
	return storage.NewScopedKeyer(nil, s.Prefix)
}

// Open connects the configured backend, wrapped with the quota (if any) and
// observability instrumentation.
func (s Storage) Open(ctx context.Context) (storage.Backend, error) {
	var (
		b   storage.Backend
		err error
	)
	switch s.Backend {
	case BackendFile, "":
		dir := s.Dir
		if dir == "" {
			if dir, err = CacheDir(); err != nil {
				return nil, errs.Wrap(errs.ErrCodeStorageUnavailable, err, "locate cache dir")
			}
		}
		b, err = storage.NewFileBackend(dir)
	case BackendMemory:
		b = storage.NewMemoryBackend()
	case BackendRedis:
		b, err = storage.NewRedisBackend(ctx, storage.RedisOptions{
			Addr:     s.Redis.Addr,
			Password: s.Redis.Password,
			DB:       s.Redis.DB,
		})
	case BackendMongo:
		b, err = storage.NewMongoBackend(ctx, storage.MongoOptions{
			URI:        s.Mongo.URI,
			Database:   s.Mongo.Database,
			Collection: s.Mongo.Collection,
		})
	case BackendNone:
		b = storage.NewNullBackend()
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown storage backend %q", s.Backend)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorageUnavailable, err, "open %s storage", s.Backend)
	}
	return storage.Instrument(s.Backend, storage.WithQuota(b, s.QuotaBytes)), nil
}
