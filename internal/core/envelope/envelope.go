// Package envelope unwraps and classifies queue-delivered message bodies.
//
// Bodies arrive either as the target JSON document itself or wrapped in a
// publish envelope whose Message field carries the document as a JSON string.
// Classification is explicit: probe the body for each variant's tag fields,
// unwrap exactly once when only a Message field is present, then parse the
// selected variant. Unknown shapes are errors, never silent fallthrough.
package envelope

import (
	"encoding/json"
	"net/url"
	"strings"

	perr "callrec/internal/platform/errors"
	"callrec/internal/platform/validate"
)

// Kind identifies which message variant a body carries
type Kind int

const (
	// KindUnknown means the body matched no known variant
	KindUnknown Kind = iota

	// KindNotification is an inbound transcription request
	KindNotification

	// KindCompletion is a storage event announcing result objects
	KindCompletion
)

// String returns the variant name for logs
func (k Kind) String() string {
	switch k {
	case KindNotification:
		return "notification"
	case KindCompletion:
		return "completion"
	default:
		return "unknown"
	}
}

// Notification is the inbound transcription request payload
type Notification struct {
	CallID     string         `json:"callId" validate:"required,min=1,max=255"`
	AudioS3URI string         `json:"audioS3Uri" validate:"required,s3uri"`
	Timestamp  string         `json:"timestamp,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ObjectRef names one object announced by a completion event
// Key is already percent-decoded
type ObjectRef struct {
	Bucket string
	Key    string
	Size   int64
}

// probe holds the tag fields of every variant this package understands
type probe struct {
	CallID  string          `json:"callId"`
	Records json.RawMessage `json:"Records"`
	Message string          `json:"Message"`
}

// Detect classifies body and returns the unwrapped document it carries
func Detect(body []byte) ([]byte, Kind, error) {
	var p probe
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, KindUnknown, perr.Wrap(err, perr.ErrorCodeJSON, "malformed message body")
	}
	if k := p.kind(); k != KindUnknown {
		return body, k, nil
	}
	if p.Message == "" {
		return nil, KindUnknown, perr.JSONErrf("message body matches no known variant")
	}

	inner := []byte(p.Message)
	var ip probe
	if err := json.Unmarshal(inner, &ip); err != nil {
		return nil, KindUnknown, perr.Wrap(err, perr.ErrorCodeJSON, "malformed wrapped message")
	}
	if k := ip.kind(); k != KindUnknown {
		return inner, k, nil
	}
	return nil, KindUnknown, perr.JSONErrf("wrapped message matches no known variant")
}

func (p probe) kind() Kind {
	switch {
	case len(p.Records) > 0:
		return KindCompletion
	case p.CallID != "":
		return KindNotification
	default:
		return KindUnknown
	}
}

// ParseNotification detects and validates an inbound notification body
func ParseNotification(body []byte) (Notification, error) {
	doc, kind, err := Detect(body)
	if err != nil {
		return Notification{}, err
	}
	if kind != KindNotification {
		return Notification{}, perr.JSONErrf("expected a notification, got %s", kind)
	}
	var n Notification
	if err := json.Unmarshal(doc, &n); err != nil {
		return Notification{}, perr.Wrap(err, perr.ErrorCodeJSON, "malformed notification")
	}
	if err := validate.Struct(n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// s3Event is the storage event variant as delivered on the wire
type s3Event struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseCompletion detects a completion body and returns its object references
func ParseCompletion(body []byte) ([]ObjectRef, error) {
	doc, kind, err := Detect(body)
	if err != nil {
		return nil, err
	}
	if kind != KindCompletion {
		return nil, perr.JSONErrf("expected a completion event, got %s", kind)
	}
	var ev s3Event
	if err := json.Unmarshal(doc, &ev); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "malformed completion event")
	}

	refs := make([]ObjectRef, 0, len(ev.Records))
	for _, rec := range ev.Records {
		key, err := DecodeKey(rec.S3.Object.Key)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ObjectRef{
			Bucket: rec.S3.Bucket.Name,
			Key:    key,
			Size:   rec.S3.Object.Size,
		})
	}
	return refs, nil
}

// DecodeKey reverses the storage event key encoding (percent escapes, + as space)
func DecodeKey(raw string) (string, error) {
	key, err := url.QueryUnescape(raw)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeValidation, "undecodable object key")
	}
	return key, nil
}

// resultSuffix marks the engine's analytics output objects
const resultSuffix = "result.json"

// IsResultKey reports whether key names an analytics result object
// non-result objects in the output location are skipped, not failed
func IsResultKey(key string) bool { return strings.HasSuffix(key, resultSuffix) }

// ExtractCallID pulls the business identifier out of a result object key
// keys follow the writer's layout <prefix>/<callId>/...
func ExtractCallID(key string) (string, error) {
	parts := strings.Split(key, "/")
	if len(parts) < 2 || parts[1] == "" {
		return "", perr.Validationf("cannot extract call id from object key %q", key)
	}
	return parts[1], nil
}
