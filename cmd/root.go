package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Trivo121/side-projects/internal/server"
	"github.com/Trivo121/side-projects/internal/session"
)

const (
	app       = "ribbit"
	envPrefix = "RIBBIT"
)

type Config struct {
	Catalog      string          `mapstructure:"catalog"`
	MaxLogLength int             `mapstructure:"max-log-length"`
	AI           *AIConfig       `mapstructure:"ai"`
	Voice        *VoiceConfig    `mapstructure:"voice"`
	Server       server.Config   `mapstructure:"server"`
	Sessions     *SessionsConfig `mapstructure:"sessions"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Retries  int           `mapstructure:"retries"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey      string  `mapstructure:"api-key"`
	APIKeyFile  string  `mapstructure:"api-key-file"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base-url"`
	Temperature float32 `mapstructure:"temperature"`
}

type OpenAIConfig struct {
	APIKey             string `mapstructure:"api-key"`
	APIKeyFile         string `mapstructure:"api-key-file"`
	BaseURL            string `mapstructure:"base-url"`
	Model              string `mapstructure:"model"`
	TranscriptionModel string `mapstructure:"transcription-model"`
}

type VoiceConfig struct {
	Sarvam *SarvamConfig `mapstructure:"sarvam"`
}

type SarvamConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	URL        string `mapstructure:"url"`
	Model      string `mapstructure:"model"`
	Speaker    string `mapstructure:"speaker"`
}

type SessionsConfig struct {
	Backend string              `mapstructure:"backend"`
	TTL     time.Duration       `mapstructure:"ttl"`
	Redis   session.RedisConfig `mapstructure:"redis"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "ribbit matches students with internships and answers voice questions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is ribbit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "")
	v.SetDefault("max-log-length", 200)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.retries", 1)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.gemini.base-url", "")
	v.SetDefault("ai.gemini.temperature", 0.3)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.transcription-model", "whisper-1")

	v.SetDefault("voice.sarvam.api-key", "")
	v.SetDefault("voice.sarvam.api-key-file", "")
	v.SetDefault("voice.sarvam.url", "")
	v.SetDefault("voice.sarvam.model", "")
	v.SetDefault("voice.sarvam.speaker", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.read-timeout", time.Minute)
	v.SetDefault("server.write-timeout", 5*time.Minute)
	v.SetDefault("server.body-limit", 10*1024*1024)
	v.SetDefault("server.access-log", true)

	v.SetDefault("sessions.backend", "memory")
	v.SetDefault("sessions.ttl", session.DefaultTTL)
	v.SetDefault("sessions.redis.address", "localhost:6379")
	v.SetDefault("sessions.redis.password", "")
	v.SetDefault("sessions.redis.db", 0)
}

func initConfig() {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}
}

// readConfig loads the config file. Only an explicitly requested file is
// required to exist.
func readConfig(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !(cfgFile == "" && errors.As(err, &notFound)) {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig() (*Config, error) {
	if err := readConfig(viper.GetViper()); err != nil {
		return nil, err
	}
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if config == nil {
		config = &Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.AI.OpenAI == nil {
		config.AI.OpenAI = &OpenAIConfig{}
	}
	if config.Voice == nil {
		config.Voice = &VoiceConfig{}
	}
	if config.Voice.Sarvam == nil {
		config.Voice.Sarvam = &SarvamConfig{}
	}
	if config.Sessions == nil {
		config.Sessions = &SessionsConfig{}
	}
	return config, nil
}
