package domain

// ReportSession is a session joined with the billing terms of its project.
type ReportSession struct {
	*Session
	// DateKey is the YYYY-MM-DD bucket of the session date.
	DateKey           string
	ProjectTitle      string
	BillingType       BillingType
	BillingAmount     int64
	EstimatedDuration int64
}

// ReportDay is one calendar-date bucket. It is rebuilt on every
// aggregation and never mutated incrementally.
type ReportDay struct {
	Date         string
	TotalSeconds int64
	TotalAmount  float64
	Sessions     []ReportSession
}
