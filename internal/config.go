package internal

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/lrstanley/go-ytdlp"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// AppName names the XDG directories, the env prefix and the binary
const AppName = "lngai"

// DefaultChannelID is the channel the pipeline was built for
const DefaultChannelID = "UCKngQgSGHd3Hp3nkPs15YSA"

// Config holds application settings
type Config struct {
	// User configurable settings
	AudioRoot           string
	RawRoot             string
	DatasetRoot         string
	GeneratedRoot       string
	ChannelID           string
	FetchLimit          int
	RepetitionThreshold float64
	PromptWindow        int
	DurationProbe       string
	FineTuneBaseModel   string
	WhisperTimeout      time.Duration
	CompletionTimeout   time.Duration
	Seeds               string
	LogLevel            string
	Verbose             bool
	Quiet               bool
	OpenAIAPIKey        string

	// Fixed XDG paths (not configurable)
	ConfigDir  string
	DataDir    string
	CacheDir   string
	ConfigFile string
}

//go:embed config.toml seed_prompts.txt
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// ensureDefaultFile checks if a file exists in the specified directory
// and creates it from the embedded default if it doesn't exist
func ensureDefaultFile(configDir, embedFilename, description string) error {
	filePath := filepath.Join(configDir, embedFilename)

	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile(embedFilename)
	if err != nil {
		return fmt.Errorf("reading embedded default %s: %w", description, err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default %s: %w", description, err)
	}

	fmt.Fprintf(os.Stderr, "Created default %s at %s\n", description, filePath)
	return nil
}

// EnsureDefaultConfig checks if a config file exists in the XDG config directory
// and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	return ensureDefaultFile(configDir, "config.toml", "configuration")
}

// EnsureDefaultSeeds copies the embedded seed prompts into the config directory
func EnsureDefaultSeeds(configDir string) error {
	return ensureDefaultFile(configDir, seedPromptsFile, "seed prompts")
}

var installYtdlp = func(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

// EnsureYtdlp installs yt-dlp when it is missing
func EnsureYtdlp(ctx context.Context) error {
	if err := installYtdlp(ctx); err != nil {
		return fmt.Errorf("installing yt-dlp: %w", err)
	}
	return nil
}

// InitConfig loads .env, then the config file, then LNGAI_* environment variables
func InitConfig() *Config {
	return LoadConfig(xdg.ConfigHome, xdg.DataHome, xdg.CacheHome, "")
}

// LoadConfig builds the configuration from explicit base directories and an optional config file
func LoadConfig(configHome, dataHome, cacheHome, configFile string) *Config {
	// OPENAI_API_KEY usually lives in .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env: %v\n", err)
	}

	configDir := filepath.Join(configHome, AppName)
	dataDir := filepath.Join(dataHome, AppName)
	cacheDir := filepath.Join(cacheHome, AppName)

	v := viper.New()

	v.SetDefault("audio_root", filepath.Join(dataDir, "audio_files"))
	v.SetDefault("raw_root", filepath.Join(cacheDir, "raw_3gg_files"))
	v.SetDefault("dataset_root", filepath.Join(dataDir, "jsonl_dataset"))
	v.SetDefault("generated_root", filepath.Join(dataDir, "generated_files"))
	v.SetDefault("channel_id", DefaultChannelID)
	v.SetDefault("fetch_limit", 10)
	v.SetDefault("repetition_threshold", 0.1)
	v.SetDefault("prompt_window", DefaultPromptWindow)
	v.SetDefault("duration_probe", "mp3")
	v.SetDefault("fine_tune_base_model", "babbage-002")
	v.SetDefault("whisper_timeout", 10*time.Minute)
	v.SetDefault("completion_timeout", time.Minute)
	v.SetDefault("seeds", "") // if empty will use the seed prompts file
	v.SetDefault("log_level", "info")
	v.SetDefault("verbose", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	return &Config{
		AudioRoot:           v.GetString("audio_root"),
		RawRoot:             v.GetString("raw_root"),
		DatasetRoot:         v.GetString("dataset_root"),
		GeneratedRoot:       v.GetString("generated_root"),
		ChannelID:           v.GetString("channel_id"),
		FetchLimit:          v.GetInt("fetch_limit"),
		RepetitionThreshold: v.GetFloat64("repetition_threshold"),
		PromptWindow:        v.GetInt("prompt_window"),
		DurationProbe:       v.GetString("duration_probe"),
		FineTuneBaseModel:   v.GetString("fine_tune_base_model"),
		WhisperTimeout:      v.GetDuration("whisper_timeout"),
		CompletionTimeout:   v.GetDuration("completion_timeout"),
		Seeds:               v.GetString("seeds"),
		LogLevel:            v.GetString("log_level"),
		Verbose:             v.GetBool("verbose"),
		OpenAIAPIKey:        v.GetString("openai_api_key"),

		ConfigDir:  configDir,
		DataDir:    dataDir,
		CacheDir:   cacheDir,
		ConfigFile: v.ConfigFileUsed(),
	}
}

// CatalogPath returns the episode catalog database location
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	if c.RepetitionThreshold < 0 || c.RepetitionThreshold > 1 {
		return fmt.Errorf("%w: repetition_threshold %v outside [0, 1]", ErrInvalidArgument, c.RepetitionThreshold)
	}
	if c.PromptWindow < 1 {
		return fmt.Errorf("%w: prompt_window must be positive, got %d", ErrInvalidArgument, c.PromptWindow)
	}
	if c.FetchLimit < 1 {
		return fmt.Errorf("%w: fetch_limit must be positive, got %d", ErrInvalidArgument, c.FetchLimit)
	}
	if c.DurationProbe != "mp3" && c.DurationProbe != "ffprobe" {
		return fmt.Errorf("%w: duration_probe %q (supported: mp3, ffprobe)", ErrInvalidArgument, c.DurationProbe)
	}
	return nil
}

// configView is the TOML shape of the user configurable settings
type configView struct {
	AudioRoot           string  `toml:"audio_root"`
	RawRoot             string  `toml:"raw_root"`
	DatasetRoot         string  `toml:"dataset_root"`
	GeneratedRoot       string  `toml:"generated_root"`
	ChannelID           string  `toml:"channel_id"`
	FetchLimit          int     `toml:"fetch_limit"`
	RepetitionThreshold float64 `toml:"repetition_threshold"`
	PromptWindow        int     `toml:"prompt_window"`
	DurationProbe       string  `toml:"duration_probe"`
	FineTuneBaseModel   string  `toml:"fine_tune_base_model"`
	WhisperTimeout      string  `toml:"whisper_timeout"`
	CompletionTimeout   string  `toml:"completion_timeout"`
	Seeds               string  `toml:"seeds"`
	LogLevel            string  `toml:"log_level"`
	Verbose             bool    `toml:"verbose"`
}

// TOML renders the effective settings in config file syntax; the API key is never included
func (c *Config) TOML() ([]byte, error) {
	data, err := toml.Marshal(configView{
		AudioRoot:           c.AudioRoot,
		RawRoot:             c.RawRoot,
		DatasetRoot:         c.DatasetRoot,
		GeneratedRoot:       c.GeneratedRoot,
		ChannelID:           c.ChannelID,
		FetchLimit:          c.FetchLimit,
		RepetitionThreshold: c.RepetitionThreshold,
		PromptWindow:        c.PromptWindow,
		DurationProbe:       c.DurationProbe,
		FineTuneBaseModel:   c.FineTuneBaseModel,
		WhisperTimeout:      c.WhisperTimeout.String(),
		CompletionTimeout:   c.CompletionTimeout.String(),
		Seeds:               c.Seeds,
		LogLevel:            c.LogLevel,
		Verbose:             c.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
