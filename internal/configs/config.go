package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	kerrors "github.com/PolarWolf314/sigcrypt/internal/errors"
)

// Mode selects the direction of a run.
type Mode string

const (
	ModeEncrypt Mode = "encrypt"
	ModeDecrypt Mode = "decrypt"
)

// Listers understood by AgentConfig.Lister.
const (
	ListerCommand = "command"
	ListerSocket  = "socket"
)

// Config is the resolved configuration of one run.
type Config struct {
	Mode Mode   `toml:"-" json:"-" validate:"oneof=encrypt decrypt"`
	Salt string `toml:"-" json:"-" validate:"required_if=Mode encrypt"`

	Key    KeyConfig    `toml:"key" json:"key"`
	Agent  AgentConfig  `toml:"agent" json:"agent"`
	Cipher CipherConfig `toml:"cipher" json:"cipher"`

	// AuditLog is a JSON lines file recording each run. Empty disables it.
	AuditLog string `toml:"audit_log,omitempty" json:"audit_log,omitempty"`
}

// KeyConfig chooses the signing key.
type KeyConfig struct {
	// Identity bypasses the agent listing entirely.
	Identity string `toml:"identity,omitempty" json:"identity,omitempty"`

	// Pattern is a regular expression matched against the agent's identity lines.
	Pattern string `toml:"pattern,omitempty" json:"pattern,omitempty"`
}

// AgentConfig describes how to reach the agent.
type AgentConfig struct {
	Lister      string   `toml:"lister" json:"lister" validate:"oneof=command socket"`
	Socket      string   `toml:"socket,omitempty" json:"socket,omitempty"`
	ListCommand []string `toml:"list_command" json:"list_command" validate:"min=1,dive,required"`
	SignCommand []string `toml:"sign_command" json:"sign_command" validate:"min=1,dive,required"`
}

// CipherConfig describes the cipher engine.
type CipherConfig struct {
	Command []string `toml:"command" json:"command" validate:"min=1,dive,required"`
}

// Defaults returns the configuration used when no file overrides it.
func Defaults() *Config {
	return &Config{
		Mode: ModeEncrypt,
		Agent: AgentConfig{
			Lister:      ListerCommand,
			ListCommand: []string{"ssh-add", "-L"},
			SignCommand: []string{"ssh-keygen"},
		},
		Cipher: CipherConfig{
			Command: []string{"openssl", "enc"},
		},
	}
}

// DefaultPath returns the config file location under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(dir, "sigcrypt", "config.toml"), nil
}

// DefaultSalt returns the salt used when none is given: the time in UTC.
func DefaultSalt(now time.Time) string {
	return now.UTC().Format(time.RFC3339)
}

// Load reads the config file at path over the defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := LoadTOML(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the persistent part of cfg to path.
func Save(path string, cfg *Config) error {
	if err := SaveTOML(path, cfg); err != nil {
		return fmt.Errorf("saving config %s: %w", path, err)
	}
	return nil
}

// Validate checks the struct tags and the salt.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidConfig, err)
	}

	// The salt is a header line and must survive the round trip unchanged.
	if strings.ContainsAny(c.Salt, "\r\n") {
		return fmt.Errorf("%w: salt must be a single line", kerrors.ErrInvalidConfig)
	}

	return nil
}
