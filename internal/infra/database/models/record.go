package models

import (
	"time"
)

// Record is a stored record row. The identifier triple (owner, kind,
// record_id) is the primary key; the identifier text is canonical
// uppercase, so index order over record_id is chronological for
// time-ordered kinds.
type Record struct {
	Owner    string    `json:"owner" gorm:"primaryKey;type:text"`
	Kind     string    `json:"kind" gorm:"primaryKey;type:text"`
	RecordID string    `json:"recordID" gorm:"primaryKey;type:text"`
	URI      string    `json:"uri" gorm:"type:text;index:record_uri,unique"`
	Content  string    `json:"content" gorm:"type:text"`
	CDate    time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
