package runner

import (
	"context"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
)

type Runner interface {
	// Synchronously produces the similarity report of one unit. Blocks until the analyzer exits.
	Run(context.Context, *dto.RunRequest) (*dto.RunResult, error)
}
