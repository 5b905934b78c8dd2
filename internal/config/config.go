package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alstlr0307/interviewmon-front/internal/grading"
)

// Config is the resolved runtime configuration, merged from flags,
// INTERVIEWMON_* environment variables and the config file.
type Config struct {
	APIBase   string
	APIPrefix string

	Count      int
	JobTitle   string
	Difficulty string

	MinChars int
	Debounce time.Duration
	Autosave bool
	StarMode bool

	LLMURL   string
	LLMKey   string
	LLMModel string

	DBPath string
}

// ForCmd binds a command's flags and environment to a fresh viper instance
// and resolves the configuration.
func ForCmd(cmd *cobra.Command) (*Config, *viper.Viper) {
	v := viperForCmd(cmd)

	cfg := &Config{
		APIBase:    v.GetString("api-base"),
		APIPrefix:  v.GetString("api-prefix"),
		Count:      v.GetInt("count"),
		JobTitle:   v.GetString("job-title"),
		Difficulty: v.GetString("difficulty"),
		MinChars:   v.GetInt("min-chars"),
		Debounce:   time.Duration(v.GetInt("debounce-ms")) * time.Millisecond,
		Autosave:   v.GetBool("autosave"),
		StarMode:   v.GetBool("star"),
		LLMURL:     v.GetString("llm-url"),
		LLMKey:     v.GetString("llm-key"),
		LLMModel:   v.GetString("llm-model"),
		DBPath:     v.GetString("db"),
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.Count <= 0 {
		cfg.Count = 5
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = "normal"
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = grading.DefaultMinChars
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = grading.DefaultDebounce
	}
	return cfg, v
}

// SetupLogging installs the default slog logger from log-level and
// log-format.
func SetupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper
// instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())
	_ = v.BindPFlags(cmd.Root().PersistentFlags())

	v.SetEnvPrefix("INTERVIEWMON")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("interviewmon")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/interviewmon")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	return v
}
