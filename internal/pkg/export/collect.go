package export

import (
	"context"
	"fmt"

	"github.com/sitecrew/workforce-backend-go/internal/domain/summary"
)

const collectPageSize = 500

// SummaryLister is the listing side of summary.SummaryService.
type SummaryLister interface {
	List(ctx context.Context, filter summary.SummaryFilter) ([]summary.MonthlySummary, int64, error)
}

// CollectPeriod pages through every summary of a period.
func CollectPeriod(ctx context.Context, lister SummaryLister, month, year int) ([]summary.MonthlySummary, error) {
	var all []summary.MonthlySummary
	for page := 1; ; page++ {
		list, total, err := lister.List(ctx, summary.SummaryFilter{Month: &month, Year: &year, Page: page, Limit: collectPageSize})
		if err != nil {
			return nil, fmt.Errorf("failed to list monthly summaries: %w", err)
		}
		all = append(all, list...)
		if len(list) == 0 || int64(len(all)) >= total {
			return all, nil
		}
	}
}
