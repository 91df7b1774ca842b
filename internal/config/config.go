package config

import (
	"os"
	"runtime"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL" env-default:"warn"`
	PostgresString    string `env:"POSTGRES_DBSTRING"`
	MinIOHost         string `env:"MINIO_HOST" env-default:"127.0.0.1:9000"`
	MinIOLogin        string `env:"MINIO_LOGIN"`
	MinIOPassword     string `env:"MINIO_PASSWORD"`
	MinIOBucket       string `env:"MINIO_BUCKET" env-default:"submissions"`
	MinIOReportBucket string `env:"MINIO_REPORT_BUCKET"`
	RabbitMQHost      string `env:"RABBIT_HOST" env-default:"127.0.0.1"`
	RabbitMQPort      int    `env:"RABBIT_PORT" env-default:"5672"`
	RabbitMQUser      string `env:"RABBIT_USER"`
	RabbitMQPassword  string `env:"RABBIT_PASSWORD"`
	WorkersCount      int    `env:"WORKERS_COUNT" env-default:"0"`
	HTTPAddr          string `env:"HTTP_ADDR" env-default:":8080"`

	BaseDir    string   `env:"BASE_DIR"`
	StaticDirs []string `env:"STATIC_DIRS" env-separator:","`

	JPlagJarPath         string            `env:"JPLAG_JAR_PATH"`
	JPlagJavaPath        string            `env:"JPLAG_JAVA_PATH"`
	JPlagReportRoot      string            `env:"JPLAG_REPORT_ROOT"`
	JPlagReportURLPrefix string            `env:"JPLAG_REPORT_URL_PREFIX"`
	JPlagViewerURLPrefix string            `env:"JPLAG_VIEWER_URL_PREFIX"`
	JPlagViewerAssetsDir string            `env:"JPLAG_VIEWER_ASSETS_DIR"`
	JPlagTmpRoot         string            `env:"JPLAG_TMP_ROOT"`
	JPlagLanguageMap     map[string]string `env:"JPLAG_LANGUAGE_MAP"`
	JPlagExtensionMap    map[string]string `env:"JPLAG_EXTENSION_MAP"`
	JPlagExtraArgs       string            `env:"JPLAG_EXTRA_ARGS"`
}

// NewConfig reads path (when it exists) and the process environment.
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, err
	}
	if cfg.WorkersCount <= 0 {
		cfg.WorkersCount = runtime.NumCPU()
	}
	if cfg.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
	}

	return cfg, nil
}

func (c *Config) Overrides() Overrides {
	return Overrides{
		AnalyzerPath:    c.JPlagJarPath,
		RunnerPath:      c.JPlagJavaPath,
		ReportRoot:      c.JPlagReportRoot,
		ReportURLPrefix: c.JPlagReportURLPrefix,
		ViewerURLPrefix: c.JPlagViewerURLPrefix,
		ViewerAssetsDir: c.JPlagViewerAssetsDir,
		ScratchRoot:     c.JPlagTmpRoot,
		LanguagePlugins: c.JPlagLanguageMap,
		Extensions:      c.JPlagExtensionMap,
		ExtraArgsLine:   c.JPlagExtraArgs,
	}
}

func (c *Config) Defaults() Defaults {
	return Defaults{
		BaseDir:    c.BaseDir,
		StaticDirs: c.StaticDirs,
	}
}

func (c *Config) RunConfig() RunConfig {
	return Resolve(c.Overrides(), c.Defaults())
}
