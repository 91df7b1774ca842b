package similarity

import (
	"path/filepath"
	"strings"

	"github.com/cutekitek/rankode-jplag/internal/config"
)

const (
	resultsName  = "results"
	resultsFile  = "results.jplag"
	directViewer = "index.html"
)

// ReportKey identifies a report subtree: report_root/<run>/<unit>/<language>.
type ReportKey struct {
	Run      string
	Unit     string
	Language string
}

func (k ReportKey) parts() []string {
	return []string{k.Run, k.Unit, k.Language}
}

// Validate rejects keys that would escape the report root.
func (k ReportKey) Validate() error {
	for _, part := range k.parts() {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return &ConfigError{Reason: ReasonInvalidReportKey, Detail: part}
		}
	}
	return nil
}

func (k ReportKey) String() string {
	return strings.Join(k.parts(), "/")
}

func ReportDir(cfg config.RunConfig, key ReportKey) string {
	return filepath.Join(append([]string{cfg.ReportRoot}, key.parts()...)...)
}

// ResultTarget is the result-file prefix handed to the analyzer's -r flag.
func ResultTarget(cfg config.RunConfig, key ReportKey) string {
	return filepath.Join(ReportDir(cfg, key), resultsName)
}

// ReportURL returns the public link for a finished report. In viewer mode the
// file path is appended as is; characters such as '+' stay literal.
func ReportURL(cfg config.RunConfig, key ReportKey) string {
	if cfg.ViewerURLPrefix != "" {
		return cfg.ViewerURLPrefix + "?file=" + publicPath(cfg.ReportURLPrefix, key, resultsFile)
	}
	return publicPath(cfg.ReportURLPrefix, key, directViewer)
}

func publicPath(prefix string, key ReportKey, file string) string {
	parts := append(key.parts(), file)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return strings.Join(parts, "/")
	}
	return prefix + "/" + strings.Join(parts, "/")
}
