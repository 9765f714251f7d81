package domain

// CompanyBucket is one entry in the company distribution series.
// The series always has exactly CompanyBucketCount entries; missing companies
// are padded with zero-count placeholders so rendering can rely on the shape.
type CompanyBucket struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// CompanyBucketCount is the fixed length of the company distribution series.
const CompanyBucketCount = 5

// NoCompanyBucket is the bucket name for contacts without a company.
const NoCompanyBucket = "No Company"

// TimelineEntry is one calendar day in the trailing activity window.
// Day runs 1..TimelineDays, oldest to newest.
type TimelineEntry struct {
	Day   int `json:"day"`
	Count int `json:"count"`
}

// TimelineDays is the fixed length of the activity timeline.
const TimelineDays = 7

// TagSlice is one entry in the tag distribution: a tag name, its monotonic
// usage count, and a display color (stored color or a palette fallback).
type TagSlice struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// DashboardStats holds the per-owner summary counters.
type DashboardStats struct {
	TotalContacts    int `json:"total_contacts"`
	TotalActivities  int `json:"total_activities"`
	TotalTags        int `json:"total_tags"`
	RecentActivities int `json:"recent_activities"`
}

// Dashboard is the full read-only aggregation snapshot for one owner.
type Dashboard struct {
	Stats          DashboardStats  `json:"stats"`
	Companies      []CompanyBucket `json:"companies"`
	Timeline       []TimelineEntry `json:"timeline"`
	Tags           []TagSlice      `json:"tags"`
	RecentActivity []Activity      `json:"recent_activity"`
}
