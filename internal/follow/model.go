package follow

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

type Follow struct {
	ID        string `gorm:"primaryKey"` // UUID
	CreatedAt time.Time
	UserID    string `gorm:"type:uuid;uniqueIndex:idx_user_following"`
	// FollowingID devient NULL si le compte suivi est supprimé
	FollowingID *string    `gorm:"type:uuid;uniqueIndex:idx_user_following"`
	Following   *user.User `gorm:"foreignKey:FollowingID"`
}

func IsFollowing(userID, followingID string) (bool, error) {
	var f Follow
	err := database.DB.
		Where("user_id = ? AND following_id = ?", userID, followingID).
		First(&f).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // l'utilisateur ne suit pas
		}
		return false, err // une erreur s'est produite
	}

	return true, nil // l'utilisateur suit
}
