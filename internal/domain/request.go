package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestType selects which breed query a message runs.
type RequestType string

const (
	RequestListAll        RequestType = "LIST_ALL"
	RequestGetByID        RequestType = "GET_BY_ID"
	RequestSearchByTrait  RequestType = "SEARCH_BY_TRAIT"
	RequestSearchByOrigin RequestType = "SEARCH_BY_ORIGIN"
)

// legacyRequestTypes maps the names written by older producers onto the
// canonical set. Messages already on the queue keep working across a deploy.
var legacyRequestTypes = map[string]RequestType{
	"GET_ALL_BREEDS":            RequestListAll,
	"GET_BREED_BY_ID":           RequestGetByID,
	"GET_BREEDS_BY_TEMPERAMENT": RequestSearchByTrait,
	"GET_BREEDS_BY_ORIGIN":      RequestSearchByOrigin,
}

// ParseRequestType resolves s (canonical or legacy name) to a supported type.
func ParseRequestType(s string) (RequestType, bool) {
	switch t := RequestType(s); t {
	case RequestListAll, RequestGetByID, RequestSearchByTrait, RequestSearchByOrigin:
		return t, true
	}
	if t, ok := legacyRequestTypes[s]; ok {
		return t, true
	}
	return "", false
}

// RequestMessage is the durable unit of work carried by the queue.
// It is passed by value and never mutated after creation.
type RequestMessage struct {
	RequestID   string      `json:"requestId"`
	RequestType RequestType `json:"requestType"`
	Recipient   string      `json:"recipient"`
	Parameters  string      `json:"parameters"`
	CreatedAt   int64       `json:"createdAt"`
}

// NewRequestMessage builds a message for q addressed to recipient.
func NewRequestMessage(recipient string, q Query, now time.Time) RequestMessage {
	return RequestMessage{
		RequestID:   uuid.New().String(),
		RequestType: q.Type(),
		Recipient:   recipient,
		Parameters:  q.Encode(),
		CreatedAt:   now.UnixMilli(),
	}
}

// wireMessage accepts both the current field names and the ones used by
// the legacy producer (email, queryParameters, timestamp).
type wireMessage struct {
	RequestID       string `json:"requestId"`
	RequestType     string `json:"requestType"`
	Recipient       string `json:"recipient"`
	Email           string `json:"email"`
	Parameters      string `json:"parameters"`
	QueryParameters string `json:"queryParameters"`
	CreatedAt       int64  `json:"createdAt"`
	Timestamp       int64  `json:"timestamp"`
}

// DecodeRequestMessage parses a queue body. A body without a request id or a
// recipient is malformed: there is nobody to notify about it.
func DecodeRequestMessage(body []byte) (RequestMessage, error) {
	var w wireMessage
	if err := json.Unmarshal(body, &w); err != nil {
		return RequestMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	m := RequestMessage{
		RequestID:   strings.TrimSpace(w.RequestID),
		RequestType: RequestType(strings.TrimSpace(w.RequestType)),
		Recipient:   strings.TrimSpace(firstNonEmpty(w.Recipient, w.Email)),
		Parameters:  firstNonEmpty(w.Parameters, w.QueryParameters),
		CreatedAt:   w.CreatedAt,
	}
	if m.CreatedAt == 0 {
		m.CreatedAt = w.Timestamp
	}

	if m.RequestID == "" {
		return RequestMessage{}, fmt.Errorf("%w: missing requestId", ErrMalformedMessage)
	}
	if m.Recipient == "" {
		return RequestMessage{}, fmt.Errorf("%w: missing recipient", ErrMalformedMessage)
	}
	return m, nil
}

// Encode returns the canonical JSON body for the queue.
func (m RequestMessage) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal request message: %w", err)
	}
	return string(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
