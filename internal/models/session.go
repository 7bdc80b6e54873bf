package models

// Session is a persisted HTTP session. Data is the encoded session payload
// produced by the Fiber session store.
type Session struct {
	SID       string `gorm:"column:sid;primaryKey;type:varchar(64)"`
	Data      []byte `gorm:"not null"`
	ExpiresAt int64  `gorm:"index;not null"` // unix seconds, 0 = never
}

// TableName keeps the table name shared with existing deployments.
func (Session) TableName() string {
	return "user_sessions"
}
