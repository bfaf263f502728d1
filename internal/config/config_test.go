package config

import (
	"os"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WEB_BIND", "CORS_ORIGINS", "SHUTDOWN_TIMEOUT", "LOG_FORMAT", "LOCALE", "DISCORD_TOKEN", "DATABASE_URL", "ARCHIVE_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebBind != "0.0.0.0:3000" {
		t.Errorf("WebBind = %q", cfg.WebBind)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.ArchiveTimeout != 2*time.Second {
		t.Errorf("ArchiveTimeout = %v", cfg.ArchiveTimeout)
	}
	if cfg.DiscordEnabled() || cfg.ArchiveEnabled() {
		t.Error("optional collaborators enabled without configuration")
	}
	if cfg.LanguageTag() != language.Japanese {
		t.Errorf("LanguageTag = %v", cfg.LanguageTag())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("WEB_BIND", "127.0.0.1:8080")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOCALE", "en-US")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost/taru")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WebBind != "127.0.0.1:8080" || len(cfg.CORSOrigins) != 2 || cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
	if !cfg.DiscordEnabled() || !cfg.ArchiveEnabled() {
		t.Error("optional collaborators not enabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid", cfg: Config{WebBind: ":3000", Locale: "ja", LogFormat: "json"}},
		{name: "empty bind", cfg: Config{WebBind: " ", Locale: "ja", LogFormat: "json"}, wantErr: true},
		{name: "bad locale", cfg: Config{WebBind: ":3000", Locale: "!!", LogFormat: "json"}, wantErr: true},
		{name: "bad format", cfg: Config{WebBind: ":3000", Locale: "ja", LogFormat: "xml"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
