package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the external identity units reference by id. The registry core
// reads it for lookup payloads but never mutates it.
type User struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email       string    `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	DisplayName string    `gorm:"column:display_name;not null;default:''"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
