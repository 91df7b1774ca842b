package similarity

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	ReasonRunnerNotFound      = "runner not found"
	ReasonAnalyzerNotFound    = "analyzer not found"
	ReasonUnsupportedLanguage = "unsupported language"
	ReasonInvalidReportKey    = "invalid report key"
)

// ConfigError means the run cannot succeed without a configuration change.
type ConfigError struct {
	Reason string
	Detail string
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return "jplag: " + e.Reason
	}
	return fmt.Sprintf("jplag: %s: %s", e.Reason, e.Detail)
}

// ToolInvocationError is returned when the analyzer exits with a non-zero status.
type ToolInvocationError struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ToolInvocationError) Error() string {
	output := strings.TrimSpace(e.Stderr)
	if output == "" {
		output = strings.TrimSpace(e.Stdout)
	}
	return fmt.Sprintf("jplag exited with status %d: %s", e.ExitCode, output)
}

type StagingIOError struct {
	Path string
	Err  error
}

func (e *StagingIOError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Path, e.Err)
}

func (e *StagingIOError) Unwrap() error {
	return e.Err
}

func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

func IsToolInvocationError(err error) bool {
	var target *ToolInvocationError
	return errors.As(err, &target)
}

func IsStagingIOError(err error) bool {
	var target *StagingIOError
	return errors.As(err, &target)
}
