// Package types provides common type definitions for the streak tracker.
package types

import (
	"strings"
	"time"
)

// DailySendLimit is the number of sends allowed per sender per calendar day
const DailySendLimit = 1

// Milestones are the streak values that trigger a milestone record.
// Membership is exact: reaching 8 does not count because 7 is a milestone.
var Milestones = []int{7, 10, 30, 60, 100}

// IsMilestone reports whether streak is exactly one of the milestone values
func IsMilestone(streak int) bool {
	for _, m := range Milestones {
		if streak == m {
			return true
		}
	}
	return false
}

// TimeLayout is the storage format for timestamps (UTC, millisecond precision)
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders a timestamp in the storage format
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp. Any RFC3339 variant is accepted.
func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// NormalizeIdentity case-folds a caller supplied address for key construction.
// No format or checksum validation is performed.
func NormalizeIdentity(identity string) string {
	return strings.ToLower(identity)
}

// IsBlankIdentity reports whether an identity is missing
func IsBlankIdentity(identity string) bool {
	return strings.TrimSpace(identity) == ""
}

// UserStreak is the per-identity streak record
type UserStreak struct {
	Address     string     `json:"address,omitempty"`
	Streak      int        `json:"streak"`
	LastCheckIn *time.Time `json:"lastCheckIn"`

	// HasStreak is false when the record carries no streak value at all
	HasStreak bool `json:"-"`
}

// SendLimit is the per-sender daily send counter
type SendLimit struct {
	Count    int        `json:"count"`
	LastSent *time.Time `json:"lastSent"`
}

// SendLimitStatus is the effective quota view for the current calendar day
type SendLimitStatus struct {
	LimitReached bool `json:"limitReached"`
	Count        int  `json:"count"`
	Limit        int  `json:"limit"`
}

// LeaderboardEntry is one ranked identity
type LeaderboardEntry struct {
	Address string `json:"address"`
	Streak  int    `json:"streak"`
}

// Receipt records one inbound send in the recipient's history
type Receipt struct {
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Milestone is the audit record written when a milestone streak is reached
type Milestone struct {
	Milestone int       `json:"milestone"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationTarget is where notifications for an external identifier are delivered
type NotificationTarget struct {
	FID   int64  `json:"fid"`
	URL   string `json:"url"`
	Token string `json:"token"`
}
