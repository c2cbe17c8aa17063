package post

import (
	"time"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

type Post struct {
	ID       string    `gorm:"primaryKey"` // UUID
	PubDate  time.Time `gorm:"column:pub_date;index"`
	AuthorID string    `gorm:"type:uuid;index"`
	Author   user.User `gorm:"foreignKey:AuthorID"`
	Text     string
	ImageURL string
	GroupID  *string `gorm:"type:uuid;index"` // nil = sans groupe
}
