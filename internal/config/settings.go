package config

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ytget/video-api/internal/model"
)

// Environment variable names
const (
	EnvAddr            = "VIDEO_API_ADDR"
	EnvDownloadDir     = "VIDEO_API_DOWNLOAD_DIR"
	EnvMaxParallel     = "VIDEO_API_MAX_PARALLEL"
	EnvTaskTimeout     = "VIDEO_API_TASK_TIMEOUT"
	EnvTaskTTL         = "VIDEO_API_TASK_TTL"
	EnvMaxTasks        = "VIDEO_API_MAX_TASKS"
	EnvJanitorInterval = "VIDEO_API_JANITOR_INTERVAL"
	EnvInstallYTDLP    = "VIDEO_API_INSTALL_YTDLP"
)

// Default values
const (
	DefaultAddr            = ":8000"
	DefaultDownloadDir     = "downloads"
	DefaultMaxParallel     = 2
	DefaultTaskTimeout     = 30 * time.Minute
	DefaultTaskTTL         = 24 * time.Hour
	DefaultMaxTasks        = 10000
	DefaultJanitorInterval = time.Minute
)

// Bounds
const (
	MinMaxParallel     = 1
	MaxMaxParallel     = 10
	MinTaskTimeout     = time.Second
	MinJanitorInterval = time.Second
)

// Settings holds the service configuration
type Settings struct {
	Addr            string
	DownloadDir     string
	MaxParallel     int
	TaskTimeout     time.Duration
	TaskTTL         time.Duration
	MaxTasks        int
	JanitorInterval time.Duration
	InstallYTDLP    bool
}

// NewSettings returns settings populated with defaults
func NewSettings() *Settings {
	return &Settings{
		Addr:            DefaultAddr,
		DownloadDir:     DefaultDownloadDir,
		MaxParallel:     DefaultMaxParallel,
		TaskTimeout:     DefaultTaskTimeout,
		TaskTTL:         DefaultTaskTTL,
		MaxTasks:        DefaultMaxTasks,
		JanitorInterval: DefaultJanitorInterval,
	}
}

// Load builds settings from command line arguments, falling back to
// environment variables (read through getenv) and then to defaults.
// Flags take precedence over the environment.
func Load(args []string, getenv func(string) string) (*Settings, error) {
	s := NewSettings()
	if err := s.applyEnv(getenv); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("video-api", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&s.Addr, "addr", s.Addr, "HTTP listen address")
	fs.StringVar(&s.DownloadDir, "download-dir", s.DownloadDir, "shared download directory")
	fs.IntVar(&s.MaxParallel, "max-parallel", s.MaxParallel, "maximum number of concurrent downloads")
	fs.DurationVar(&s.TaskTimeout, "task-timeout", s.TaskTimeout, "deadline for a single download")
	fs.DurationVar(&s.TaskTTL, "task-ttl", s.TaskTTL, "how long finished tasks are kept (0 keeps them forever)")
	fs.IntVar(&s.MaxTasks, "max-tasks", s.MaxTasks, "maximum number of tasks kept in memory (0 for no limit)")
	fs.DurationVar(&s.JanitorInterval, "janitor-interval", s.JanitorInterval, "how often expired tasks are evicted")
	fs.BoolVar(&s.InstallYTDLP, "install-ytdlp", s.InstallYTDLP, "download the yt-dlp binary on startup if missing")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := s.normalize(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	if v := getenv(EnvAddr); v != "" {
		s.Addr = v
	}
	if v := getenv(EnvDownloadDir); v != "" {
		s.DownloadDir = v
	}
	if v := getenv(EnvMaxParallel); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxParallel, err)
		}
		s.MaxParallel = n
	}
	if v := getenv(EnvTaskTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTaskTimeout, err)
		}
		s.TaskTimeout = d
	}
	if v := getenv(EnvTaskTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTaskTTL, err)
		}
		s.TaskTTL = d
	}
	if v := getenv(EnvMaxTasks); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxTasks, err)
		}
		s.MaxTasks = n
	}
	if v := getenv(EnvJanitorInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvJanitorInterval, err)
		}
		s.JanitorInterval = d
	}
	if v := getenv(EnvInstallYTDLP); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvInstallYTDLP, err)
		}
		s.InstallYTDLP = b
	}
	return nil
}

// normalize clamps numeric settings and resolves the download directory
func (s *Settings) normalize() error {
	s.SetMaxParallelDownloads(s.MaxParallel)
	s.SetTaskTimeout(s.TaskTimeout)
	if s.TaskTTL < 0 {
		s.TaskTTL = 0
	}
	if s.MaxTasks < 0 {
		s.MaxTasks = 0
	}
	if s.JanitorInterval < MinJanitorInterval {
		s.JanitorInterval = MinJanitorInterval
	}
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	return s.SetDownloadDirectory(s.DownloadDir)
}

// SetDownloadDirectory sets the download directory as an absolute path
func (s *Settings) SetDownloadDirectory(dir string) error {
	if dir == "" {
		dir = DefaultDownloadDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve download directory %q: %w", dir, err)
	}
	s.DownloadDir = abs
	return nil
}

// SetMaxParallelDownloads sets the maximum number of parallel downloads
func (s *Settings) SetMaxParallelDownloads(count int) {
	if count < MinMaxParallel {
		count = MinMaxParallel
	}
	if count > MaxMaxParallel {
		count = MaxMaxParallel
	}
	s.MaxParallel = count
}

// SetTaskTimeout sets the per-download deadline; values below the minimum
// fall back to the default
func (s *Settings) SetTaskTimeout(d time.Duration) {
	if d < MinTaskTimeout {
		d = DefaultTaskTimeout
	}
	s.TaskTimeout = d
}

// GetQualityPresetOptions returns the accepted quality hints
func (s *Settings) GetQualityPresetOptions() []model.Quality {
	return []model.Quality{model.QualityHigh, model.QualityMedium, model.QualityLow}
}
