package model

import "time"

// KVEntry backs the database key-value store.
type KVEntry struct {
	Key       string    `gorm:"column:entry_key;primaryKey;type:varchar(255)" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
