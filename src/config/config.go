package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	PathEnv     = "FINDASH_CONFIG"
	HomeEnv     = "FINDASH_HOME"
	DefaultPath = "findash.yaml"
)

type Config struct {
	Timezone  string          `yaml:"timezone" default:"Asia/Seoul" validate:"required"`
	UserAgent string          `yaml:"user_agent" default:"financeProj/1.0" validate:"required"`
	Timeout   time.Duration   `yaml:"timeout" default:"30s" validate:"gt=0"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Stocks    StocksConfig    `yaml:"stocks"`
	Crypto    CryptoConfig    `yaml:"crypto"`
	Sentiment SentimentConfig `yaml:"sentiment"`
	Charts    ChartsConfig    `yaml:"charts"`
}

type StorageConfig struct {
	// BaseDir anchors the relative paths below. Empty means Home().
	BaseDir      string   `yaml:"base_dir"`
	EnvFile      string   `yaml:"env_file" default:".env"`
	LocalRoot    string   `yaml:"local_root" default:"local_storage" validate:"required"`
	CloudRoot    string   `yaml:"cloud_root"`
	CloudSubpath string   `yaml:"cloud_subpath"`
	CloudEnvVars []string `yaml:"cloud_env_vars" default:"[\"OneDrive\",\"OneDriveCommercial\"]"`
}

type LogConfig struct {
	Dir     string `yaml:"dir" default:"./log/"`
	File    bool   `yaml:"file" default:"true"`
	Debug   bool   `yaml:"debug"`
	MaxSize int    `yaml:"max_size" default:"100" validate:"gte=1"`
	MaxAge  int    `yaml:"max_age" default:"7" validate:"gte=1"`
}

type StocksConfig struct {
	Symbols   []string      `yaml:"symbols" default:"[\"PLTR\",\"TSLA\",\"NVDA\",\"GOOGL\",\"MSFT\",\"META\",\"AMZN\",\"GC=F\"]" validate:"unique,dive,required"`
	RawName   string        `yaml:"raw_name" default:"mag7_gold" validate:"required"`
	CloseName string        `yaml:"close_name" default:"mag7_gold_close" validate:"required"`
	Pause     time.Duration `yaml:"pause" default:"200ms"`
	BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
	HistURL   string        `yaml:"history_url" default:"https://query2.finance.yahoo.com" validate:"url"`
}

type Coin struct {
	ID     string `yaml:"id" validate:"required"`
	Symbol string `yaml:"symbol" validate:"required"`
}

type CryptoConfig struct {
	Coins       []Coin        `yaml:"coins" validate:"unique=ID,unique=Symbol,dive"`
	Name        string        `yaml:"name" default:"crypto_prices" validate:"required"`
	Currency    string        `yaml:"currency" default:"usd" validate:"required"`
	Days        int           `yaml:"days" default:"365" validate:"gte=1,lte=365"`
	MaxAttempts int           `yaml:"max_attempts" default:"4" validate:"gte=1"`
	BaseBackoff time.Duration `yaml:"base_backoff" default:"1s" validate:"gt=0"`
	MaxJitter   time.Duration `yaml:"max_jitter" default:"500ms" validate:"gte=0"`
	BaseURL     string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"url"`
}

// SetDefaults is called by defaults.Set after the tag defaults are applied.
func (c *CryptoConfig) SetDefaults() {
	if len(c.Coins) == 0 {
		c.Coins = []Coin{
			{ID: "bitcoin", Symbol: "BTC"},
			{ID: "ethereum", Symbol: "ETH"},
			{ID: "solana", Symbol: "SOL"},
			{ID: "dogecoin", Symbol: "DOGE"},
			{ID: "shiba-inu", Symbol: "SHIB"},
			{ID: "nexpace", Symbol: "NXPC"},
		}
	}
}

type SentimentConfig struct {
	Name    string `yaml:"name" default:"fear_greed_index" validate:"required"`
	BaseURL string `yaml:"base_url" default:"https://api.alternative.me" validate:"url"`
}

type ChartsConfig struct {
	DPI       float64 `yaml:"dpi" default:"150" validate:"gt=0"`
	Width     float64 `yaml:"width" default:"11" validate:"gt=0"`
	Height    float64 `yaml:"height" default:"6" validate:"gt=0"`
	HTML      bool    `yaml:"html" default:"true"`
	Sentiment bool    `yaml:"sentiment" default:"true"`
	Stocks    bool    `yaml:"stocks"`
	Crypto    bool    `yaml:"crypto"`
}

// Default returns the configuration used when no file is present.
func Default() (*Config, error) {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return c, nil
}

// Load reads the YAML file at path on top of the defaults. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		// an explicit empty coin list in the file still means the default list
		c.Crypto.SetDefaults()
	}
	c.Storage.BaseDir = inHome(c.Storage.BaseDir)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadFromEnv loads the file named by FINDASH_CONFIG, or findash.yaml in Home().
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = filepath.Join(Home(), DefaultPath)
	}
	return Load(path)
}

// Home is the installation directory: FINDASH_HOME when set, else the directory
// of the running executable. It does not depend on the working directory.
func Home() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return absPath(dir)
	}
	exe, err := os.Executable()
	if err != nil {
		return absPath(".")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

func inHome(p string) string {
	if p == "" {
		return Home()
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(Home(), p)
}

// Path resolves p against the storage base directory unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Storage.BaseDir, p)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location is the zone run dates are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
