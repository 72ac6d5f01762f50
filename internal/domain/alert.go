package domain

import (
	"fmt"
	"time"
)

// AlertSeverity enumerates alert and anomaly severity.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// ParseAlertSeverity validates a raw severity value.
func ParseAlertSeverity(raw string) (AlertSeverity, error) {
	switch AlertSeverity(raw) {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return AlertSeverity(raw), nil
	}
	return "", fmt.Errorf("unknown alert severity %q", raw)
}

// SystemAlert is a deduplicated operational alert. (RefID, Summary) is the
// dedup key; Acknowledged moves false->true only.
type SystemAlert struct {
	ID           string
	Severity     AlertSeverity
	Summary      string
	Detail       string
	RefID        string
	CreatedAt    time.Time
	Acknowledged bool
}

// AnomalyType enumerates known irregular-event classes.
type AnomalyType string

const (
	AnomalyLowDisk     AnomalyType = "LOW_DISK"
	AnomalyBulkDelete  AnomalyType = "BULK_DELETE"
	AnomalyLargeImport AnomalyType = "LARGE_IMPORT"
	AnomalyLoginBurst  AnomalyType = "LOGIN_BURST"
)

// Anomaly is an operator- or system-flagged irregular event, distinct from
// a ticket.
type Anomaly struct {
	ID         string
	Type       AnomalyType
	Quantity   int
	Severity   AlertSeverity
	DetectedAt time.Time
}
