package models

import "time"

// OptionModel is a generic name/value row. The admin-managed system config is
// stored here as a single JSON blob under a fixed name.
type OptionModel struct {
	Base
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"`
}

func (OptionModel) TableName() string { return "options" }

// UserSessionModel tracks signed-in JWT sessions so logout can revoke them.
type UserSessionModel struct {
	Base
	AccountID string     `json:"account_id" gorm:"index;not null"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"         gorm:"type:text"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"index;not null"`
	RevokedAt *time.Time `json:"revoked_at" gorm:"index"`
}

func (UserSessionModel) TableName() string { return "user_sessions" }
