package models

import "gorm.io/gorm"

// PushToken stores an FCM registration token used for push fallback when
// a user has no live websocket channel.
type PushToken struct {
	gorm.Model
	UserID uint   `json:"userId" gorm:"not null;index"`
	Token  string `json:"token" gorm:"not null;uniqueIndex"`
	User   *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name
func (PushToken) TableName() string {
	return "push_tokens"
}
