package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Skotchmaster/sales_reports/internal/repo"
	"github.com/samber/lo"
)

var (
	ErrValidation  = errors.New("validation")              // 400
	ErrUnavailable = errors.New("data source unavailable") // 503
)

const (
	topProductsN = 10
	ukThreshold  = 1000.0
)

// marketing targets are the segments below the top 40% of spenders
const marketingFirstGroup = 3

type ReportService struct {
	Repo *repo.GormRepo
}

// MonthGrowth is one row of the monthly growth report. Change and ChangePct
// are nil for the first reported month of each year; ChangePct is also nil
// when the previous month's revenue is zero.
type MonthGrowth struct {
	Year      int      `json:"year"`
	Month     int      `json:"month"`
	Revenue   float64  `json:"revenue"`
	Change    *float64 `json:"change"`
	ChangePct *float64 `json:"change_pct"`
	YTD       float64  `json:"ytd"`
}

func (s *ReportService) YearRevenue(ctx context.Context, year int) (float64, error) {
	if year < 1 || year > 9999 {
		return 0, fmt.Errorf("%w: year %d out of range", ErrValidation, year)
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	total, err := s.Repo.PeriodRevenue(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("%w: report=year_revenue year=%d: %v", ErrUnavailable, year, err)
	}
	return total, nil
}

// MonthlyGrowth groups line revenue by (year, month) and derives the
// month-over-month change and the running year-to-date total, reset each
// year. Rows are sorted ascending by year, then month.
func (s *ReportService) MonthlyGrowth(ctx context.Context) ([]MonthGrowth, error) {
	lines, err := s.Repo.RevenueLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: report=monthly_growth: %v", ErrUnavailable, err)
	}

	type yearMonth struct {
		y, m int
	}
	buckets := lo.GroupBy(lines, func(l repo.RevenueLine) yearMonth {
		return yearMonth{l.OrderDate.Year(), int(l.OrderDate.Month())}
	})

	keys := lo.Keys(buckets)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].y != keys[j].y {
			return keys[i].y < keys[j].y
		}
		return keys[i].m < keys[j].m
	})

	out := make([]MonthGrowth, 0, len(keys))
	var (
		prev    *float64
		ytd     float64
		curYear int
	)
	for _, k := range keys {
		revenue := lo.SumBy(buckets[k], func(l repo.RevenueLine) float64 { return l.Revenue })

		if k.y != curYear {
			curYear = k.y
			ytd = 0
			prev = nil
		}
		ytd += revenue

		row := MonthGrowth{Year: k.y, Month: k.m, Revenue: revenue, YTD: ytd}
		if prev != nil {
			change := revenue - *prev
			row.Change = &change
			if *prev != 0 {
				pct := change / *prev * 100
				row.ChangePct = &pct
			}
		}

		p := revenue
		prev = &p
		out = append(out, row)
	}
	return out, nil
}

func (s *ReportService) CustomerSpend(ctx context.Context) ([]repo.CustomerSpend, error) {
	rows, err := s.Repo.CustomerSpend(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: report=customer_spend: %v", ErrUnavailable, err)
	}
	return rows, nil
}

func (s *ReportService) CustomerSegments(ctx context.Context) ([]repo.CustomerSegment, error) {
	rows, err := s.Repo.CustomerSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: report=customer_segments: %v", ErrUnavailable, err)
	}
	return rows, nil
}

// MarketingTargets reuses the segmentation report and keeps groups 3..5,
// i.e. everyone outside the top 40% of spenders.
func (s *ReportService) MarketingTargets(ctx context.Context) ([]repo.CustomerSegment, error) {
	segments, err := s.Repo.CustomerSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: report=marketing_targets: %v", ErrUnavailable, err)
	}
	return lo.Filter(segments, func(seg repo.CustomerSegment, _ int) bool {
		return seg.GroupNo >= marketingFirstGroup
	}), nil
}

func (s *ReportService) TopProducts(ctx context.Context) ([]repo.ProductRevenue, error) {
	rows, err := s.Repo.TopProducts(ctx, topProductsN)
	if err != nil {
		return nil, fmt.Errorf("%w: report=top_products: %v", ErrUnavailable, err)
	}
	return rows, nil
}

func (s *ReportService) UKHighValue(ctx context.Context) ([]repo.ContactSpend, error) {
	rows, err := s.Repo.UKHighValue(ctx, ukThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: report=uk_high_value: %v", ErrUnavailable, err)
	}
	return rows, nil
}

func (s *ReportService) DataIntegrity(ctx context.Context) (*repo.IntegrityCounts, error) {
	counts, err := s.Repo.IntegrityCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: report=data_integrity: %v", ErrUnavailable, err)
	}
	return counts, nil
}
