// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration for both binaries.
type Config struct {
	App        App
	HTTP       HTTP
	Pinger     Pinger
	Session    Session
	Dir        Dir
	Ytdlp      Ytdlp
	DepManager DepManager
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"WAKETUBE_APP_LOG_LEVEL" envDefault:"info"`
}

// HTTP holds HTTP server configuration for both binaries.
type HTTP struct {
	PingerPort      string        `env:"WAKETUBE_HTTP_PINGER_PORT"      envDefault:":5000"`
	DownloaderPort  string        `env:"WAKETUBE_HTTP_DOWNLOADER_PORT"  envDefault:":8080"`
	HandlerTimeout  time.Duration `env:"WAKETUBE_HTTP_HANDLER_TIMEOUT"  envDefault:"20s"`
	DownloadTimeout time.Duration `env:"WAKETUBE_HTTP_DOWNLOAD_TIMEOUT" envDefault:"30m"`
	ShutdownTimeout time.Duration `env:"WAKETUBE_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Pinger holds the keep-alive visitor loop configuration.
type Pinger struct {
	// Interval is the sleep between visitor iterations.
	Interval time.Duration `env:"WAKETUBE_PINGER_INTERVAL" envDefault:"30s"`
	// Weblist is the newline-delimited URL list, re-read every iteration.
	Weblist string `env:"WAKETUBE_PINGER_WEBLIST" envDefault:"weblist.txt"`
	// BootFile persists the first-run timestamp.
	BootFile string `env:"WAKETUBE_PINGER_BOOT_FILE" envDefault:"boot_time.txt"`
	// LogFile is the append-only visit log.
	LogFile string `env:"WAKETUBE_PINGER_LOG_FILE" envDefault:"logs.txt"`
	// VirtualStart is the fixed epoch the displayed clock is offset from.
	VirtualStart string `env:"WAKETUBE_PINGER_VIRTUAL_START" envDefault:"2025-06-13 00:00:00"`
	// TailLines is how many log lines the status page shows.
	TailLines int `env:"WAKETUBE_PINGER_TAIL_LINES" envDefault:"100"`
	// Headless controls the browser mode.
	Headless bool `env:"WAKETUBE_PINGER_HEADLESS" envDefault:"true"`
	// VisitTimeout bounds a single page visit; 0 disables the bound.
	VisitTimeout time.Duration `env:"WAKETUBE_PINGER_VISIT_TIMEOUT" envDefault:"0"`
}

// Session holds session storage configuration.
type Session struct {
	TTL             time.Duration `env:"WAKETUBE_SESSION_TTL"              envDefault:"1h"`
	CleanupInterval time.Duration `env:"WAKETUBE_SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}

// Dir holds directory paths for downloads, cache, and cookie file.
type Dir struct {
	// Downloads is the base under which per-download temp dirs are created.
	Downloads string `env:"WAKETUBE_DIR_DOWNLOADS" envDefault:"./data/downloads"`
	// Cache is the yt-dlp cache (meta, sigs).
	Cache string `env:"WAKETUBE_DIR_CACHE" envDefault:"./data/cache"`

	// must contain a cookies.txt file
	// see: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
	CookieFile string `env:"WAKETUBE_DIR_COOKIE_FILE" envDefault:""`
}

// SetAbsPaths converts all directory paths to absolute paths.
func (d *Dir) SetAbsPaths() error {
	var err error
	if d.Downloads, err = filepath.Abs(d.Downloads); err != nil {
		return fmt.Errorf("downloads: %w", err)
	}

	if d.Cache, err = filepath.Abs(d.Cache); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	if d.CookieFile != "" {
		if d.CookieFile, err = filepath.Abs(d.CookieFile); err != nil {
			return fmt.Errorf("cookie file: %w", err)
		}
	}

	return nil
}

// Ytdlp holds extraction engine pass-through options.
type Ytdlp struct {
	// Proxy routes engine traffic through a proxy URL when set.
	Proxy string `env:"WAKETUBE_YTDLP_PROXY" envDefault:""`
}

// DepManager holds binary dependency management configuration.
type DepManager struct {
	// BinsDir is the directory where binaries are stored.
	BinsDir string `env:"WAKETUBE_DEPMANAGER_BINS_DIR" envDefault:"./bins"`
	// UseSystemBinaries indicates whether to use system-installed binaries or download them.
	UseSystemBinaries bool `env:"WAKETUBE_DEPMANAGER_USE_SYSTEM_BINARIES" envDefault:"false"`
	// UpdateInterval is how often to check for binary updates.
	UpdateInterval time.Duration `env:"WAKETUBE_DEPMANAGER_UPDATE_INTERVAL" envDefault:"24h"`

	// yt-dlp binary URLs per platform.
	YTdlpSHA256SumsURL string `env:"WAKETUBE_DEPMANAGER_YTDLP_SHA256SUMS_URL" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/SHA2-256SUMS"`      //nolint:lll
	YTdlpLinuxARM64    string `env:"WAKETUBE_DEPMANAGER_YTDLP_LINUX_ARM64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux_aarch64"` //nolint:lll
	YTdlpLinuxAMD64    string `env:"WAKETUBE_DEPMANAGER_YTDLP_LINUX_AMD64" envDefault:"https://github.com/yt-dlp/yt-dlp/releases/latest/download/yt-dlp_linux"`         //nolint:lll

	// ffmpeg binary URLs per platform.
	FFmpegSHA256SumsURL string `env:"WAKETUBE_DEPMANAGER_FFMPEG_SHA256SUMS_URL" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/checksums.sha256"`                        //nolint:lll
	FFmpegLinuxARM64    string `env:"WAKETUBE_DEPMANAGER_FFMPEG_LINUX_ARM64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linuxarm64-gpl.tar.xz"` //nolint:lll
	FFmpegLinuxAMD64    string `env:"WAKETUBE_DEPMANAGER_FFMPEG_LINUX_AMD64" envDefault:"https://github.com/BtbN/FFmpeg-Builds/releases/latest/download/ffmpeg-master-latest-linux64-gpl.tar.xz"`    //nolint:lll
}

// SetAbsPaths converts the BinsDir path to an absolute path.
func (d *DepManager) SetAbsPaths() error {
	var err error
	if d.BinsDir, err = filepath.Abs(d.BinsDir); err != nil {
		return fmt.Errorf("bins dir: %w", err)
	}

	return nil
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	err = cfg.DepManager.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set dep manager absolute paths: %w", err)
	}

	return cfg, nil
}
