package config

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/shlex"
)

const (
	DefaultRunner          = "java"
	DefaultExtension       = "txt"
	DefaultReportURLPrefix = "/static/jplag_reports"
	DefaultViewerBase      = "/static/jplag-viewer/"
	DefaultAnalyzerJar     = "jplag-6.3.0.jar"
	reportDirName          = "jplag_reports"
)

var (
	defaultLanguagePlugins = map[string]string{
		"C":      "c",
		"C++":    "cpp",
		"Java":   "java",
		"Python": "python3",
	}
	defaultExtensions = map[string]string{
		"C":      "c",
		"C++":    "cpp",
		"Java":   "java",
		"Python": "py",
	}
)

// RunConfig is resolved once and then only read.
type RunConfig struct {
	AnalyzerPath string
	// Empty means DefaultRunner looked up on PATH.
	RunnerPath      string
	ReportRoot      string
	ReportURLPrefix string
	ViewerURLPrefix string
	// Files copied into every report directory when no viewer prefix is set.
	ViewerAssetsDir string
	ScratchRoot     string
	LanguagePlugins map[string]string
	Extensions      map[string]string
	ExtraArgs       []string
}

func (c RunConfig) Runner() string {
	if c.RunnerPath != "" {
		return c.RunnerPath
	}
	return DefaultRunner
}

func (c RunConfig) Plugin(language string) (string, bool) {
	plugin, ok := c.LanguagePlugins[language]
	return plugin, ok && plugin != ""
}

func (c RunConfig) Extension(language string) string {
	if ext := c.Extensions[language]; ext != "" {
		return ext
	}
	return DefaultExtension
}

// ViewerBase is the viewer application URL used when rebuilding stored links.
func (c RunConfig) ViewerBase() string {
	if c.ViewerURLPrefix != "" {
		return c.ViewerURLPrefix
	}
	return DefaultViewerBase
}

// Overrides holds explicitly configured values. Zero values mean "not set".
type Overrides struct {
	AnalyzerPath    string
	RunnerPath      string
	ReportRoot      string
	ReportURLPrefix string
	ViewerURLPrefix string
	ViewerAssetsDir string
	ScratchRoot     string
	LanguagePlugins map[string]string
	Extensions      map[string]string
	// ExtraArgs wins over ExtraArgsLine when non-nil.
	ExtraArgs     []string
	ExtraArgsLine string
}

type Defaults struct {
	BaseDir    string
	StaticDirs []string
}

// Resolve applies overrides on top of computed defaults. It performs no I/O.
func Resolve(o Overrides, d Defaults) RunConfig {
	cfg := RunConfig{
		AnalyzerPath:    o.AnalyzerPath,
		RunnerPath:      o.RunnerPath,
		ReportRoot:      o.ReportRoot,
		ReportURLPrefix: o.ReportURLPrefix,
		ViewerURLPrefix: o.ViewerURLPrefix,
		ViewerAssetsDir: o.ViewerAssetsDir,
		ScratchRoot:     o.ScratchRoot,
	}

	if cfg.AnalyzerPath == "" {
		cfg.AnalyzerPath = filepath.Join(d.BaseDir, "opt", DefaultAnalyzerJar)
	}
	if cfg.ReportRoot == "" {
		if len(d.StaticDirs) > 0 && d.StaticDirs[0] != "" {
			cfg.ReportRoot = filepath.Join(d.StaticDirs[0], reportDirName)
		} else {
			cfg.ReportRoot = filepath.Join(d.BaseDir, reportDirName)
		}
	}
	if cfg.ReportURLPrefix == "" {
		cfg.ReportURLPrefix = DefaultReportURLPrefix
	}

	if o.LanguagePlugins != nil {
		cfg.LanguagePlugins = maps.Clone(o.LanguagePlugins)
	} else {
		cfg.LanguagePlugins = maps.Clone(defaultLanguagePlugins)
	}
	if o.Extensions != nil {
		cfg.Extensions = maps.Clone(o.Extensions)
	} else {
		cfg.Extensions = maps.Clone(defaultExtensions)
	}

	switch {
	case o.ExtraArgs != nil:
		cfg.ExtraArgs = slices.Clone(o.ExtraArgs)
	case o.ExtraArgsLine != "":
		cfg.ExtraArgs = SplitArgs(o.ExtraArgsLine)
	}

	return cfg
}

// SplitArgs tokenizes a command line on whitespace, honouring shell quoting.
// Input that does not parse as a shell line is split on whitespace only.
func SplitArgs(line string) []string {
	args, err := shlex.Split(line)
	if err != nil {
		return strings.Fields(line)
	}
	return args
}
