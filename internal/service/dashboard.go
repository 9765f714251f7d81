package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/rolodexapp/rolodex-server/internal/domain"
	"github.com/rolodexapp/rolodex-server/internal/errors"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// tagPalette supplies fallback colors for tags without a stored color.
// A tag's position in the usage-ordered listing picks palette[pos mod 10],
// so up to ten tags stay visually distinct.
var tagPalette = [10]string{
	"#3B82F6", // blue
	"#EF4444", // red
	"#10B981", // emerald
	"#F59E0B", // amber
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#14B8A6", // teal
	"#F97316", // orange
	"#6366F1", // indigo
	"#84CC16", // lime
}

// recentActivityLimit is the size of the dashboard's recent slice.
const recentActivityLimit = 10

// DashboardService derives read-only aggregation snapshots. No call here
// mutates state.
type DashboardService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(store *store.Store, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		store:  store,
		logger: logger,
	}
}

// Overview assembles the full dashboard snapshot for one owner.
func (s *DashboardService) Overview(ctx context.Context, ownerID string) (*domain.Dashboard, error) {
	contacts, err := s.store.ListContacts(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing contacts")
	}

	tags, err := s.store.ListTags(ctx, ownerID, store.TagOrderUsageDesc)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "listing tags")
	}

	totalActivities, err := s.store.CountActivities(ctx, ownerID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "counting activities")
	}

	recent, err := s.store.GetRecentActivities(ctx, ownerID, recentActivityLimit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "fetching recent activities")
	}

	timeline, err := s.activityTimeline(ctx, ownerID, time.Now())
	if err != nil {
		return nil, err
	}

	recentValues := make([]domain.Activity, 0, len(recent))
	for _, a := range recent {
		recentValues = append(recentValues, *a)
	}

	return &domain.Dashboard{
		Stats: domain.DashboardStats{
			TotalContacts:    len(contacts),
			TotalActivities:  totalActivities,
			TotalTags:        len(tags),
			RecentActivities: len(recentValues),
		},
		Companies:      companyDistribution(contacts),
		Timeline:       timeline,
		Tags:           tagDistribution(tags),
		RecentActivity: recentValues,
	}, nil
}

// companyDistribution groups contacts by company, counts, sorts descending,
// and returns exactly CompanyBucketCount entries, padding with zero-count
// placeholders when fewer companies exist.
func companyDistribution(contacts []*domain.Contact) []domain.CompanyBucket {
	counts := make(map[string]int)
	for _, c := range contacts {
		company := c.Company
		if company == "" {
			company = domain.NoCompanyBucket
		}
		counts[company]++
	}

	buckets := make([]domain.CompanyBucket, 0, len(counts))
	for company, count := range counts {
		buckets = append(buckets, domain.CompanyBucket{Company: company, Count: count})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Company < buckets[j].Company
	})

	if len(buckets) > domain.CompanyBucketCount {
		buckets = buckets[:domain.CompanyBucketCount]
	}
	for len(buckets) < domain.CompanyBucketCount {
		buckets = append(buckets, domain.CompanyBucket{})
	}

	return buckets
}

// activityTimeline buckets the trailing seven calendar days of activity,
// oldest first, with explicit zeros for quiet days. Day indices run 1..7.
func (s *DashboardService) activityTimeline(ctx context.Context, ownerID string, now time.Time) ([]domain.TimelineEntry, error) {
	windowStart := startOfDay(now).AddDate(0, 0, -(domain.TimelineDays - 1))

	activities, err := s.store.GetActivitiesSince(ctx, ownerID, windowStart)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "fetching timeline activities")
	}

	perDay := make(map[string]int)
	for _, a := range activities {
		perDay[a.CreatedAt.Format("2006-01-02")]++
	}

	timeline := make([]domain.TimelineEntry, domain.TimelineDays)
	for i := 0; i < domain.TimelineDays; i++ {
		day := windowStart.AddDate(0, 0, i)
		timeline[i] = domain.TimelineEntry{
			Day:   i + 1,
			Count: perDay[day.Format("2006-01-02")],
		}
	}

	return timeline, nil
}

// tagDistribution pairs every tag with its usage count and a display color.
// Input arrives usage-descending; position in that order drives the palette
// fallback.
func tagDistribution(tags []*domain.Tag) []domain.TagSlice {
	slices := make([]domain.TagSlice, 0, len(tags))
	for pos, t := range tags {
		color := t.Color
		if color == "" {
			color = tagPalette[pos%len(tagPalette)]
		}
		slices = append(slices, domain.TagSlice{
			Name:  t.Name,
			Count: t.UsageCount,
			Color: color,
		})
	}
	return slices
}

// startOfDay truncates a time to local midnight.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
