package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPort は PORT が指定されていない場合のリッスンポート
const DefaultPort = 5000

// Config はアプリケーション全体の設定を保持する構造体
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig はHTTPサーバーの設定
type ServerConfig struct {
	Host string `yaml:"-"`    // リッスンするホスト (常に全インターフェース)
	Port int    `yaml:"port"` // リッスンするポート番号

	// タイムアウト設定
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // 読み込みタイムアウト
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // 書き込みタイムアウト
	IdleTimeout     time.Duration `yaml:"idle_timeout"`     // アイドルタイムアウト
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // グレースフルシャットダウンの上限
}

// SiteConfig は配信するサイトの設定
type SiteConfig struct {
	TemplateDir   string `yaml:"template_dir"`   // テンプレートディレクトリ
	IndexTemplate string `yaml:"index_template"` // ルートで返すテンプレートファイル
	StaticDir     string `yaml:"static_dir"`     // 静的アセットディレクトリ
	Embedded      bool   `yaml:"embedded"`       // バイナリ埋め込みのサイトを使う
}

// LogConfig はログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text または json
}

// MetricsConfig は運用リスナーの設定
type MetricsConfig struct {
	Addr string `yaml:"addr"` // 空の場合は無効
}

// RateLimitConfig はクライアント毎のレート制限設定
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`   // 0 の場合は無効
	Burst int     `yaml:"burst"` // 最大バースト
}

// Default はデフォルト設定を返す
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            DefaultPort,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Site: SiteConfig{
			TemplateDir:   "templates",
			IndexTemplate: "index.html",
			StaticDir:     "static",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			Burst: 20,
		},
	}
}

// Load は設定を読み込む
// 優先順位: 環境変数 > CONFIG_FILE > デフォルト値
func Load() (*Config, error) {
	// .env ファイルを読み込む (存在しない場合は無視)
	_ = godotenv.Load()

	return LoadFrom(os.Getenv("CONFIG_FILE"))
}

// LoadFrom は path のYAML設定ファイルを使って設定を読み込む
// path が空の場合はデフォルト値と環境変数のみを使う
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// ホストは設定ファイルや環境変数に関係なく全インターフェース
	cfg.Server.Host = "0.0.0.0"

	// 設定の検証
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}

	return cfg, nil
}

// LoadFile はYAML設定ファイルの値を現在の設定に上書きする
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	port, err := getEnvAsIntOrDefault("PORT", c.Server.Port)
	if err != nil {
		return err
	}
	c.Server.Port = port

	shutdownTimeout, err := getEnvAsDurationOrDefault("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	if err != nil {
		return err
	}
	c.Server.ShutdownTimeout = shutdownTimeout

	c.Site.TemplateDir = getEnvOrDefault("TEMPLATE_DIR", c.Site.TemplateDir)
	c.Site.IndexTemplate = getEnvOrDefault("INDEX_TEMPLATE", c.Site.IndexTemplate)
	c.Site.StaticDir = getEnvOrDefault("STATIC_DIR", c.Site.StaticDir)
	c.Site.Embedded = getEnvAsBoolOrDefault("SITE_EMBEDDED", c.Site.Embedded)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnvOrDefault("LOG_FORMAT", c.Log.Format)

	c.Metrics.Addr = getEnvOrDefault("METRICS_ADDR", c.Metrics.Addr)

	if value := os.Getenv("RATE_LIMIT_RPS"); value != "" {
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("無効な RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = rps
	}
	burst, err := getEnvAsIntOrDefault("RATE_LIMIT_BURST", c.RateLimit.Burst)
	if err != nil {
		return err
	}
	c.RateLimit.Burst = burst

	return nil
}

// Validate は設定の妥当性を検証する
func (c *Config) Validate() error {
	// サーバー設定の検証
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("無効なポート番号: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("無効なシャットダウンタイムアウト: %s", c.Server.ShutdownTimeout)
	}

	// サイト設定の検証
	if !c.Site.Embedded {
		if c.Site.TemplateDir == "" {
			return fmt.Errorf("テンプレートディレクトリが指定されていません")
		}
		if c.Site.StaticDir == "" {
			return fmt.Errorf("静的アセットディレクトリが指定されていません")
		}
	}
	if c.Site.IndexTemplate == "" {
		return fmt.Errorf("インデックステンプレートが指定されていません")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("無効なログフォーマット: %s", c.Log.Format)
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("無効なレート制限: %v", c.RateLimit.RPS)
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst < 1 {
		return fmt.Errorf("無効なバーストサイズ: %d", c.RateLimit.Burst)
	}

	return nil
}

// ServerAddress はサーバーのリッスンアドレスを返す
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// getEnvOrDefault は環境変数を取得し、設定されていない場合はデフォルト値を返す
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault は環境変数を整数として取得する
// 値が整数でない場合はエラーを返す
func getEnvAsIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("無効な %s: %w", key, err)
	}
	return intVal, nil
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("無効な %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
