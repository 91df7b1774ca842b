package similarity

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/cutekitek/rankode-jplag/internal/config"
	"github.com/cutekitek/rankode-jplag/pkg/shell"
	"github.com/pkg/errors"
)

// Analyzer compares the staged submissions in workspace and writes its report to target.
type Analyzer interface {
	Invoke(ctx context.Context, cfg config.RunConfig, language, workspace, target string) error
}

// Invoker runs JPlag as a child process.
type Invoker struct {
	exec   shell.Executor
	logger *slog.Logger
}

func NewInvoker(executor shell.Executor, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{exec: executor, logger: logger}
}

// Command validates the configuration and returns the analyzer command line.
func Command(cfg config.RunConfig, language, workspace, target string) ([]string, error) {
	runner := cfg.Runner()
	if cfg.RunnerPath != "" {
		resolved, err := locate(cfg.RunnerPath)
		if err != nil {
			return nil, &ConfigError{Reason: ReasonRunnerNotFound, Detail: cfg.RunnerPath}
		}
		runner = resolved
	}
	if _, err := os.Stat(cfg.AnalyzerPath); err != nil {
		return nil, &ConfigError{Reason: ReasonAnalyzerNotFound, Detail: cfg.AnalyzerPath}
	}
	plugin, ok := cfg.Plugin(language)
	if !ok {
		return nil, &ConfigError{Reason: ReasonUnsupportedLanguage, Detail: language}
	}

	cmd := []string{runner, "-jar", cfg.AnalyzerPath, "-l", plugin, "-r", target}
	cmd = append(cmd, cfg.ExtraArgs...)
	cmd = append(cmd, workspace)
	return cmd, nil
}

// locate accepts an existing path, or a bare program name found on PATH.
func locate(path string) (string, error) {
	if !strings.ContainsRune(path, os.PathSeparator) {
		return exec.LookPath(path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

func (i *Invoker) Invoke(ctx context.Context, cfg config.RunConfig, language, workspace, target string) error {
	cmd, err := Command(cfg, language, workspace, target)
	if err != nil {
		return err
	}

	i.logger.Debug("running jplag", "args", cmd)
	res, err := i.exec.Execute(ctx, cmd[0], cmd[1:]...)
	if err != nil {
		return errors.Wrap(err, "failed to execute jplag")
	}
	if res.ExitCode != 0 {
		i.logger.Error("jplag failed", "exitStatus", res.ExitCode, "stderr", string(res.Stderr))
		return &ToolInvocationError{
			ExitCode: res.ExitCode,
			Stdout:   string(res.Stdout),
			Stderr:   string(res.Stderr),
		}
	}
	return nil
}
