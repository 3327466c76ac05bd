package model

import "time"

// Report is a saved, point-in-time snapshot of a filtered record list.
type Report struct {
	ID             string            `json:"_id"`
	Title          string            `json:"title"`
	SourceType     string            `json:"sourceType"`
	FilterCriteria map[string]string `json:"filterCriteria"`
	ReportData     []*Row            `json:"reportData"`
	CreatedBy      string            `json:"createdBy"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Object describes one stored blob in object storage.
type Object struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}
