// Package domain holds DTOs for the recordings retrieval surface
package domain

// Record is the wire form of one persisted analytics row
type Record struct {
	Hash           string   `json:"hash"`
	EpochTimestamp int64    `json:"epochTimestamp"`
	CallID         string   `json:"call_id"`
	S3InputURI     string   `json:"s3_input_uri"`
	S3OutputURI    *string  `json:"s3_output_uri,omitempty"`
	InvocationARN  *string  `json:"bedrock_invocation_arn,omitempty"`
	Status         string   `json:"bedrock_status"`
	CallSummary    *string  `json:"call_summary,omitempty"`
	CallCategories []string `json:"call_categories,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	Transcript     *string  `json:"transcript,omitempty"`
	AudioSummary   *string  `json:"audio_summary,omitempty"`
	TopicSummary   *string  `json:"topic_summary,omitempty"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
}

// RetrieveInput is the raw retrieval request before resolution
// Hash wins over CallID; both empty means an unscoped recent listing
type RetrieveInput struct {
	Hash      string
	CallID    string
	PageSize  string
	NextToken string
}

// Page is one page of records plus continuation state
type Page struct {
	Message   string
	Items     []Record
	PageSize  int
	NextToken string
	HasMore   bool
}
