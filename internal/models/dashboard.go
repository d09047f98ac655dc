package models

import "time"

// DashboardStats is the role-aware landing summary.
type DashboardStats struct {
	TotalCompanies     int             `json:"totalCompanies"`
	ContactedCompanies int             `json:"contactedCompanies"`
	PendingApprovals   *int            `json:"pendingApprovals,omitempty"`
	AssignedCompanies  *int            `json:"assignedCompanies,omitempty"`
	MyPendingEdits     *int            `json:"myPendingEdits,omitempty"`
	UpcomingEvents     []CalendarEvent `json:"upcomingEvents"`
	GeneratedAt        time.Time       `json:"generatedAt"`
}

// SystemMetrics represents process level metrics captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	EditsSubmitted           uint64    `json:"editsSubmitted"`
	EditsApproved            uint64    `json:"editsApproved"`
	EditsRejected            uint64    `json:"editsRejected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
