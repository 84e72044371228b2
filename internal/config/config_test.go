package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestConfigLoad は設定の読み込みをテストする
func TestConfigLoad(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CONFIG_FILE", "")

	// 設定を読み込む
	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// サーバー設定の検証
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("ホストが全インターフェースではありません: %s", cfg.Server.Host)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("デフォルトポートが一致しません: got %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.ReadTimeout <= 0 {
		t.Error("読み込みタイムアウトが設定されていません")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		t.Error("シャットダウンタイムアウトが設定されていません")
	}

	// サイト設定の検証
	if cfg.Site.TemplateDir != "templates" {
		t.Errorf("テンプレートディレクトリ: got %s, want templates", cfg.Site.TemplateDir)
	}
	if cfg.Site.IndexTemplate != "index.html" {
		t.Errorf("インデックステンプレート: got %s, want index.html", cfg.Site.IndexTemplate)
	}
	if cfg.Site.StaticDir != "static" {
		t.Errorf("静的アセットディレクトリ: got %s, want static", cfg.Site.StaticDir)
	}
}

// TestPortOverride は PORT 環境変数によるポートの上書きをテストする
func TestPortOverride(t *testing.T) {
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("環境変数のポートが反映されていません: got %d, want 8080", cfg.Server.Port)
	}
	if got := cfg.ServerAddress(); got != "0.0.0.0:8080" {
		t.Errorf("サーバーアドレスが一致しません: got %s, want 0.0.0.0:8080", got)
	}
}

// TestInvalidPort は不正な PORT が起動エラーになることをテストする
func TestInvalidPort(t *testing.T) {
	testCases := []struct {
		name  string
		value string
	}{
		{"数値以外", "http"},
		{"範囲外", "70000"},
		{"ゼロ", "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("PORT", tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("PORT=%s でエラーが期待されましたが、エラーが発生しませんでした", tc.value)
			}
		})
	}
}

// TestConfigValidation は設定の検証をテストする
func TestConfigValidation(t *testing.T) {
	testCases := []struct {
		name      string
		modify    func(c *Config)
		expectErr bool
	}{
		{
			name:      "正常な設定",
			modify:    func(c *Config) {},
			expectErr: false,
		},
		{
			name:      "無効なポート番号",
			modify:    func(c *Config) { c.Server.Port = 99999 },
			expectErr: true,
		},
		{
			name:      "テンプレートディレクトリなし",
			modify:    func(c *Config) { c.Site.TemplateDir = "" },
			expectErr: true,
		},
		{
			name: "埋め込みサイトではディレクトリ不要",
			modify: func(c *Config) {
				c.Site.Embedded = true
				c.Site.TemplateDir = ""
				c.Site.StaticDir = ""
			},
			expectErr: false,
		},
		{
			name:      "インデックステンプレートなし",
			modify:    func(c *Config) { c.Site.IndexTemplate = "" },
			expectErr: true,
		},
		{
			name:      "無効なログフォーマット",
			modify:    func(c *Config) { c.Log.Format = "xml" },
			expectErr: true,
		},
		{
			name: "バーストなしのレート制限",
			modify: func(c *Config) {
				c.RateLimit.RPS = 5
				c.RateLimit.Burst = 0
			},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.expectErr && err == nil {
				t.Error("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !tc.expectErr && err != nil {
				t.Errorf("予期しないエラーが発生しました: %v", err)
			}
		})
	}
}

// TestServerAddress はサーバーアドレスの生成をテストする
func TestServerAddress(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Host: "192.168.1.100",
			Port: 9090,
		},
	}

	expected := "192.168.1.100:9090"
	actual := cfg.ServerAddress()

	if actual != expected {
		t.Errorf("サーバーアドレスが一致しません: got %s, want %s", actual, expected)
	}
}

// TestConfigFile はYAML設定ファイルと環境変数の優先順位をテストする
func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "smartlighting.yaml")

	content := `server:
  port: 7000
  shutdown_timeout: 2s
site:
  template_dir: /srv/site/templates
  static_dir: /srv/site/static
log:
  format: json
rate_limit:
  rps: 10
  burst: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("設定ファイルの作成に失敗しました: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")
	t.Setenv("STATIC_DIR", "/opt/assets")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("ファイルのポートが反映されていません: got %d, want 7000", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("シャットダウンタイムアウト: got %s, want 2s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Site.TemplateDir != "/srv/site/templates" {
		t.Errorf("テンプレートディレクトリ: got %s", cfg.Site.TemplateDir)
	}
	// 環境変数がファイルより優先される
	if cfg.Site.StaticDir != "/opt/assets" {
		t.Errorf("環境変数の静的ディレクトリが反映されていません: got %s", cfg.Site.StaticDir)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("ログフォーマット: got %s, want json", cfg.Log.Format)
	}
	if cfg.RateLimit.RPS != 10 || cfg.RateLimit.Burst != 5 {
		t.Errorf("レート制限: got %v/%d, want 10/5", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("ホストが全インターフェースではありません: %s", cfg.Server.Host)
	}
}

// TestConfigFileMissing は存在しない設定ファイルがエラーになることをテストする
func TestConfigFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("エラーが期待されましたが、エラーが発生しませんでした")
	}
}
