package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/PolarWolf314/sigcrypt/internal/configs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix namespaces the environment variables that override the config
// file, e.g. SIGCRYPT_KEY or SIGCRYPT_AUDIT_LOG.
const envPrefix = "SIGCRYPT"

// layeredKeys are the settings that flags and the environment may override,
// keyed by flag name.
var layeredKeys = []string{"config", "key", "identity", "salt", "lister", "audit-log"}

// newViper binds the command's flags and the SIGCRYPT_ environment.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range layeredKeys {
		flag := cmd.Flags().Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag --%s: %w", key, err)
		}
	}
	return v, nil
}

// configPath returns the config file named by --config or SIGCRYPT_CONFIG,
// or the default location.
func configPath(v *viper.Viper) (string, error) {
	if path := v.GetString("config"); path != "" {
		return path, nil
	}
	return configs.DefaultPath()
}

// loadConfig resolves the configuration for a run in the given mode: the
// file first, then the environment, then flags.
func loadConfig(cmd *cobra.Command, mode configs.Mode) (*configs.Config, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}

	path, err := configPath(v)
	if err != nil {
		return nil, err
	}
	Logger.Debugf("Loading config from %s", path)

	cfg, err := configs.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	overlay(v, "key", &cfg.Key.Pattern)
	overlay(v, "identity", &cfg.Key.Identity)
	overlay(v, "lister", &cfg.Agent.Lister)
	overlay(v, "audit-log", &cfg.AuditLog)
	overlay(v, "salt", &cfg.Salt)

	if mode == configs.ModeEncrypt && cfg.Salt == "" {
		cfg.Salt = configs.DefaultSalt(time.Now())
	}
	if mode == configs.ModeDecrypt && cfg.Salt != "" {
		Logger.Infof("Ignoring the salt; decryption uses the one recorded in the header")
		cfg.Salt = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay replaces *dst when key was set by a flag or the environment.
func overlay(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}
