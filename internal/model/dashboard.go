package model

import (
	"github.com/shopspring/decimal"
)

// DashboardStats aggregates headline counters.
type DashboardStats struct {
	Vessels         int64            `json:"vessels"`
	Audits          int64            `json:"audits"`
	AuditsByStatus  map[string]int64 `json:"audits_by_status"`
	OpenFindings    int64            `json:"open_findings"`
	ClosedFindings  int64            `json:"closed_findings"`
	OverdueFindings int64            `json:"overdue_findings"`
	ClosureRate     decimal.Decimal  `json:"closure_rate"` // percentage of findings closed
}

// NamedCount is a label with a count, used for chart series.
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// VesselFindings counts findings per vessel by status.
type VesselFindings struct {
	VesselID   string `json:"vessel_id"`
	VesselName string `json:"vessel_name"`
	Open       int64  `json:"open"`
	Closed     int64  `json:"closed"`
}

// DashboardCharts holds the series rendered on the dashboard.
type DashboardCharts struct {
	AuditsByType       []NamedCount     `json:"audits_by_type"`
	AuditsByParty      []NamedCount     `json:"audits_by_party"`
	FindingsBySeverity []NamedCount     `json:"findings_by_severity"`
	FindingsByVessel   []VesselFindings `json:"findings_by_vessel"`
}

// TrendPoint counts findings opened and closed in a month (YYYY-MM).
type TrendPoint struct {
	Month  string `json:"month"`
	Opened int64  `json:"opened"`
	Closed int64  `json:"closed"`
}
