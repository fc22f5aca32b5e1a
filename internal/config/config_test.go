package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"waketube/internal/config"
)

func TestNewDefaults(t *testing.T) {
	got, err := config.New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if got.Pinger.Interval != 30*time.Second {
		t.Errorf("expected 30s pinger interval, got %v", got.Pinger.Interval)
	}

	if got.Pinger.Weblist != "weblist.txt" {
		t.Errorf("expected weblist.txt, got %q", got.Pinger.Weblist)
	}

	if got.Pinger.VirtualStart != "2025-06-13 00:00:00" {
		t.Errorf("unexpected virtual start: %q", got.Pinger.VirtualStart)
	}

	if got.Pinger.TailLines != 100 {
		t.Errorf("expected 100 tail lines, got %d", got.Pinger.TailLines)
	}

	if !got.Pinger.Headless {
		t.Errorf("expected headless default true")
	}

	if !filepath.IsAbs(got.Dir.Downloads) {
		t.Errorf("expected absolute downloads path, got %s", got.Dir.Downloads)
	}

	if !filepath.IsAbs(got.Dir.Cache) {
		t.Errorf("expected absolute cache path, got %s", got.Dir.Cache)
	}

	if !filepath.IsAbs(got.DepManager.BinsDir) {
		t.Errorf("expected absolute bins dir, got %s", got.DepManager.BinsDir)
	}
}

func TestNewOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "pinger interval and weblist",
			env: map[string]string{
				"WAKETUBE_PINGER_INTERVAL": "5s",
				"WAKETUBE_PINGER_WEBLIST":  "sites.txt",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				if cfg.Pinger.Interval != 5*time.Second {
					t.Errorf("expected 5s interval, got %v", cfg.Pinger.Interval)
				}

				if cfg.Pinger.Weblist != "sites.txt" {
					t.Errorf("expected sites.txt, got %q", cfg.Pinger.Weblist)
				}
			},
		},
		{
			name: "session ttl",
			env: map[string]string{
				"WAKETUBE_SESSION_TTL": "2h",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				if cfg.Session.TTL != 2*time.Hour {
					t.Errorf("expected 2h ttl, got %v", cfg.Session.TTL)
				}
			},
		},
		{
			name: "downloader port and proxy",
			env: map[string]string{
				"WAKETUBE_HTTP_DOWNLOADER_PORT": ":9090",
				"WAKETUBE_YTDLP_PROXY":          "socks5h://127.0.0.1:1080",
			},
			check: func(t *testing.T, cfg *config.Config) {
				t.Helper()

				if cfg.HTTP.DownloaderPort != ":9090" {
					t.Errorf("expected :9090, got %q", cfg.HTTP.DownloaderPort)
				}

				if cfg.Ytdlp.Proxy != "socks5h://127.0.0.1:1080" {
					t.Errorf("unexpected proxy: %q", cfg.Ytdlp.Proxy)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			got, err := config.New()
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			tt.check(t, got)
		})
	}
}
