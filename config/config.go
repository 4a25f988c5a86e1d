package config

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigSearchTimeout       = "search-timeout"
	ConfigSearchStartDepth    = "search-start-depth"
	ConfigSearchMaxDepth      = "search-max-depth"
	ConfigTTableEnabled       = "ttable-enabled"
	ConfigTTableFractionOfMem = "ttable-fraction-of-mem"
	ConfigAutoplayThreads     = "autoplay-threads"
	ConfigCPUProfile          = "cpu-profile"
	ConfigMemProfile          = "mem-profile"
	ConfigConfigPath          = "config-path"
)

type Config struct {
	*viper.Viper
	args []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigSearchTimeout, 5*time.Second)
	v.SetDefault(ConfigSearchStartDepth, 2)
	v.SetDefault(ConfigSearchMaxDepth, 20)
	v.SetDefault(ConfigTTableEnabled, true)
	v.SetDefault(ConfigTTableFractionOfMem, 0.01)
	v.SetDefault(ConfigAutoplayThreads, runtime.NumCPU())
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
}

// DefaultConfig returns a config holding only the defaults. Handy for tests.
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	return &Config{Viper: v}
}

// Load reads flags from args, then REVERSI_* environment variables, then an
// optional config.yaml. Flags win over the environment, which wins over the
// file.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	setDefaults(c.Viper)

	fs := pflag.NewFlagSet("reversi", pflag.ContinueOnError)
	// Stop at the first shell command so its own -options pass through.
	fs.SetInterspersed(false)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Duration(ConfigSearchTimeout, 5*time.Second, "wall-clock budget per computer move")
	fs.Int(ConfigSearchStartDepth, 2, "first depth of iterative deepening")
	fs.Int(ConfigSearchMaxDepth, 20, "deepest iteration allowed")
	fs.Bool(ConfigTTableEnabled, true, "memoize search results in a transposition table")
	fs.Float64(ConfigTTableFractionOfMem, 0.01, "fraction of system memory to give the transposition table")
	fs.Int(ConfigAutoplayThreads, runtime.NumCPU(), "games to play at once in autoplay")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	fs.String(ConfigMemProfile, "", "write a memory profile to this file")
	fs.String(ConfigConfigPath, ".", "directory holding config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}

	c.SetEnvPrefix("REVERSI")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath(c.GetString(ConfigConfigPath))
	if err := c.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		log.Debug().Msg("no-config-file-found")
	}
	return nil
}

// Args are the command-line arguments left over after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings returns the settings worth logging at startup.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}
