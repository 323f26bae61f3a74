package entity

import "time"

const (
	TableNameSession = "session"

	SessionFieldID         = "id"
	SessionFieldCreatedAt  = "created_at"
	SessionFieldLastActive = "last_active"
)

type Session struct {
	ID         string    `xorm:"pk id" json:"id"`
	CreatedAt  time.Time `xorm:"created_at" json:"created_at"`
	LastActive time.Time `xorm:"last_active" json:"last_active"`
}

func (e *Session) TableName() string {
	return TableNameSession
}
