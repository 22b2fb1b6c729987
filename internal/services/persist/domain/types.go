// Package domain holds types and ports for the persistence stage
package domain

import "time"

// Analytics is the normalized payload carried inside a result blob
// pointer fields stay nil when the engine omitted them; the repo persists
// absent fields as absent, never as fabricated empties
type Analytics struct {
	CallSummary  *string  `json:"call_summary"`
	Categories   []string `json:"call_categories"`
	Topics       []string `json:"topics"`
	Transcript   *string  `json:"transcript"`
	AudioSummary *string  `json:"audio_summary"`
	TopicSummary *string  `json:"topic_summary"`
}

// Record is one persisted analytics row keyed by (hash, epoch timestamp)
type Record struct {
	Hash          string
	EpochTS       int64
	CallID        string
	S3InputURI    string
	S3OutputURI   *string
	InvocationARN *string
	Status        string

	Analytics

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PipelineEvent is a best-effort observability row for the columnar sink
type PipelineEvent struct {
	Stage      string
	CallID     string
	Hash       string
	Status     string
	Detail     string
	OccurredAt time.Time
}
