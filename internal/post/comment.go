package post

import (
	"time"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

type Comment struct {
	ID       string    `gorm:"primaryKey"` // UUID
	PostID   string    `gorm:"type:uuid;index"`
	AuthorID string    `gorm:"type:uuid;index"`
	Author   user.User `gorm:"foreignKey:AuthorID"`
	Text     string
	Created  time.Time `gorm:"column:created;index"`
}
