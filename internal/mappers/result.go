package mappers

import (
	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
)

func RunResultToContestResult(req *dto.RunRequest, result *dto.RunResult) models.ContestResult {
	row := models.ContestResult{
		Contest:  req.RunKey,
		Problem:  req.UnitKey,
		Language: req.Language,
	}
	if result == nil {
		return row
	}
	row.SubmissionCount = result.SubmissionCount
	if result.HasReport {
		url := result.ReportURL
		row.URL = &url
	}
	return row
}
