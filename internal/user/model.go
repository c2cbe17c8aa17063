package user

import "time"

// User reflète l'identité gérée par le service d'auth externe.
// Seuls l'id et le username sont utilisés par l'API.
type User struct {
	ID        string `gorm:"primaryKey"` // UUID venant de auth.users
	CreatedAt time.Time
	Username  string `gorm:"uniqueIndex"`
	Email     string
	IsAdmin   bool
}
