package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
)

// IsAdmin vérifie si un utilisateur est admin à partir de son ID
func IsAdmin(userID string) (bool, error) {
	var isAdmin bool
	if err := database.DB.Model(&User{}).Select("is_admin").Where("id = ?", userID).Scan(&isAdmin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil // utilisateur introuvable, donc pas admin
		}
		return false, err // erreur autre
	}
	return isAdmin, nil
}
