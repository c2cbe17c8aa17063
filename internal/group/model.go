package group

type Group struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:200"`
	Slug        string `json:"slug" gorm:"uniqueIndex"`
	Description string `json:"description"`
}
