package entity

import "time"

const (
	TableNameSessionHistory = "session_history"

	SessionHistoryFieldID        = "id"
	SessionHistoryFieldSessionID = "session_id"
	SessionHistoryFieldQuery     = "query"
	SessionHistoryFieldResponse  = "response"
	SessionHistoryFieldMetadata  = "metadata"
	SessionHistoryFieldCreatedAt = "created_at"
)

// SessionHistory is one stored query/response exchange. Metadata holds the
// response metadata serialized as a JSON string.
type SessionHistory struct {
	ID        int64     `xorm:"pk autoincr id" json:"id"`
	SessionID string    `xorm:"session_id" json:"session_id"`
	Query     string    `xorm:"query" json:"query"`
	Response  string    `xorm:"response" json:"response"`
	Metadata  string    `xorm:"metadata" json:"metadata"`
	CreatedAt time.Time `xorm:"created_at" json:"created_at"`
}

func (e *SessionHistory) TableName() string {
	return TableNameSessionHistory
}
