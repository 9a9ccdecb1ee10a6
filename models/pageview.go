package models

import "time"

// TrackRequest is the payload the client tracker sends once per navigation.
type TrackRequest struct {
	SessionID string     `json:"sessionId" binding:"required"`
	PagePath  string     `json:"pagePath" binding:"required"`
	FullPath  string     `json:"fullPath"`
	PageTitle string     `json:"pageTitle"`
	Referrer  string     `json:"referrer"`
	UserAgent string     `json:"userAgent"`
	Timestamp *time.Time `json:"timestamp"`
}

// UpdateTimeRequest carries the caller-computed elapsed seconds for one page view.
type UpdateTimeRequest struct {
	PageViewID string `json:"pageViewId"`
	TimeSpent  int    `json:"timeSpent"`
}

// PageView is the durable record of a single navigation event.
// TimeSpent starts at 0 and is only ever overwritten, never incremented.
type PageView struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	PagePath   string    `json:"pagePath"`
	FullPath   string    `json:"fullPath,omitempty"`
	PageTitle  string    `json:"pageTitle,omitempty"`
	Referrer   string    `json:"referrer,omitempty"`
	UserAgent  string    `json:"userAgent"`
	DeviceType string    `json:"deviceType"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	IPAddress  string    `json:"ipAddress"`
	UserID     *int      `json:"userId,omitempty"`
	TimeSpent  int       `json:"timeSpent"`
	CreatedAt  time.Time `json:"createdAt"`
}

type TopPathResult struct {
	PagePath string `json:"pagePath"`
	Count    uint64 `json:"count"`
}
