package admin

import (
	"fmt"
	"net/http"
	"os"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/follow"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/group"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/logs"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/post"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/storage"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

// Même règle que le SlugField : latin, chiffres, tiret, underscore
var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// CreateGroup POST /api/admin/groups
func CreateGroup(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")

	var input struct {
		Title       string `json:"title"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	details := gin.H{}
	if input.Title == "" {
		details["title"] = "champ obligatoire"
	} else if len([]rune(input.Title)) > 200 {
		details["title"] = "200 caractères maximum"
	}
	if input.Slug == "" {
		details["slug"] = "champ obligatoire"
	} else if !slugPattern.MatchString(input.Slug) {
		details["slug"] = "identifiant non valide pour une URL"
	}
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation échouée", "details": details})
		return
	}

	var existing group.Group
	if err := database.DB.First(&existing, "slug = ?", input.Slug).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"slug": "identifiant déjà utilisé"},
		})
		return
	}

	newGroup := group.Group{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Slug:        input.Slug,
		Description: input.Description,
	}

	if err := database.DB.Create(&newGroup).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du groupe"})
		logs.LogJSON("ERROR", "Error creating group", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, newGroup)
	logs.LogJSON("INFO", "Group created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("groupID : %s", newGroup.ID),
	})
}

// DeleteGroup DELETE /api/admin/groups/:id
// Les posts rattachés repassent à "sans groupe", pas de cascade.
func DeleteGroup(c *gin.Context) {
	route := c.FullPath()
	userID := c.GetString("user_id")
	groupID := c.Param("id")

	var grp group.Group
	if err := database.DB.First(&grp, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Groupe non trouvé"})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&post.Post{}).Where("group_id = ?", grp.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&grp).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du groupe"})
		logs.LogJSON("ERROR", "Error deleting group", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("groupID : %s", groupID),
		})
		return
	}

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Group deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("groupID : %s", groupID),
	})
}

// DeleteUser DELETE /api/admin/users/:id
// Supprime le compte chez le service d'auth puis nettoie les données
// locales : posts et commentaires en cascade, abonnements sortants
// supprimés, abonnements entrants conservés avec cible à NULL.
func DeleteUser(c *gin.Context) {
	route := c.FullPath()
	currentUserID := c.GetString("user_id")
	id := c.Param("id")

	var u user.User
	if err := database.DB.First(&u, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	authURL := os.Getenv("NEXT_PUBLIC_SUPABASE_URL")
	serviceKey := os.Getenv("SUPABASE_SERVICE_ROLE_KEY")

	client := resty.New()
	resp, err := client.R().
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		Delete(authURL + "/auth/v1/admin/users/" + id)

	if err != nil || resp.IsError() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur service d'auth de suppression d'utilisateur"})
		logs.LogJSON("ERROR", "Auth service user deletion error", map[string]interface{}{
			"route":  route,
			"userID": currentUserID,
			"extra":  fmt.Sprintf("deletedUserID : %s", id),
		})
		return
	}

	// Ses posts d'abord, pour retirer les images du stockage après le commit
	var posts []post.Post
	if err := database.DB.Where("author_id = ?", id).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des posts"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id IN (?)",
			tx.Model(&post.Post{}).Select("id").Where("author_id = ?", id)).
			Delete(&post.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&post.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&post.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&follow.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&follow.Follow{}).Where("following_id = ?", id).
			Update("following_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&u).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression de l'utilisateur"})
		logs.LogJSON("ERROR", "Error deleting user data", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": currentUserID,
			"extra":  fmt.Sprintf("deletedUserID : %s", id),
		})
		return
	}

	for _, p := range posts {
		if p.ImageURL == "" {
			continue
		}
		if key := storage.MediaKeyFromURL(p.ImageURL); key != "" {
			if err := storage.DeleteFromS3(key); err != nil {
				logs.LogJSON("WARN", "Media delete failed", map[string]interface{}{
					"error": err.Error(),
					"route": route,
					"extra": fmt.Sprintf("mediaKey : %s", key),
				})
			}
		}
	}

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "User deleted", map[string]interface{}{
		"route":  route,
		"userID": currentUserID,
		"extra":  fmt.Sprintf("deletedUserID : %s", id),
	})
}
