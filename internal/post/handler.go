package post

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/group"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/logs"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/pagination"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/storage"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

var validImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".webp": true, ".heic": true,
}

// GetPosts GET /api/v1/posts
// Lecture ouverte aux anonymes, triée du plus récent au plus ancien.
func GetPosts(c *gin.Context) {
	route := c.FullPath()
	params := pagination.Parse(c)

	var count int64
	if err := database.DB.Model(&Post{}).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des posts"})
		logs.LogJSON("ERROR", "Error counting posts", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	var posts []Post
	if err := database.DB.Preload("Author").Order("pub_date DESC").
		Limit(params.Limit).Offset(params.Offset).Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des posts"})
		logs.LogJSON("ERROR", "Error retrieving posts", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	results := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		results = append(results, postResponse(p))
	}

	c.JSON(http.StatusOK, pagination.Envelope(c, count, params, results))
}

// GetPostByID GET /api/v1/posts/:id
func GetPostByID(c *gin.Context) {
	postID := c.Param("id")

	var p Post
	if err := database.DB.Preload("Author").First(&p, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	c.JSON(http.StatusOK, postResponse(p))
}

// CreatePost POST /api/v1/posts
// Accepte du JSON {text, group} ou un formulaire multipart avec une image.
// L'auteur et la date de publication sont toujours assignés côté serveur.
func CreatePost(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var text, groupID string
	var file multipart.File
	var header *multipart.FileHeader

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		text = c.PostForm("text")
		groupID = c.PostForm("group")

		var err error
		file, header, err = c.Request.FormFile("image")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image invalide", "details": err.Error()})
			return
		}
		if file != nil {
			defer file.Close()
		}
	} else {
		// les champs author/pub_date éventuellement présents dans le corps
		// ne sont pas liés, donc ignorés
		var input struct {
			Text  string  `json:"text"`
			Group *string `json:"group"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
			return
		}
		text = input.Text
		if input.Group != nil {
			groupID = *input.Group
		}
	}

	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"text": "champ obligatoire"},
		})
		return
	}

	var me user.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	var grpID *string
	if groupID != "" {
		var grp group.Group
		if err := database.DB.First(&grp, "id = ?", groupID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Validation échouée",
				"details": gin.H{"group": "groupe inconnu"},
			})
			return
		}
		grpID = &grp.ID
	}

	postID := uuid.New().String()

	imageURL := ""
	if file != nil && header != nil {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !validImageExtensions[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Extension de fichier invalide"})
			return
		}

		filename := fmt.Sprintf("post_%s%s", postID, ext)
		url, err := storage.UploadToS3(file, filename, header.Header.Get("Content-Type"), "posts")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'upload", "details": err.Error()})
			logs.LogJSON("ERROR", "Image upload failed", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
			})
			return
		}
		imageURL = url
	}

	newPost := Post{
		ID:       postID,
		PubDate:  time.Now(),
		AuthorID: userID,
		Text:     text,
		ImageURL: imageURL,
		GroupID:  grpID,
	}

	if err := database.DB.Create(&newPost).Error; err != nil {
		// l'upload a déjà eu lieu, on tente de retirer le fichier orphelin
		if imageURL != "" {
			if key := storage.MediaKeyFromURL(imageURL); key != "" {
				_ = storage.DeleteFromS3(key)
			}
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du post"})
		logs.LogJSON("ERROR", "Error creating post", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	newPost.Author = me
	c.JSON(http.StatusCreated, postResponse(newPost))
	logs.LogJSON("INFO", "Post created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("postID : %s", postID),
	})
}

// UpdatePost PUT/PATCH /api/v1/posts/:id
// Réservé à l'auteur. Un non-auteur reçoit 403, jamais 404 :
// l'existence du post n'est pas cachée.
func UpdatePost(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	postID := c.Param("id")
	var p Post
	if err := database.DB.First(&p, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	if p.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Modification du contenu d'autrui interdite"})
		logs.LogJSON("WARN", "Non-author tried to update post", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("postID : %s", postID),
		})
		return
	}

	var input map[string]interface{}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	// les champs assignés côté serveur sont retirés quoi qu'envoie le client
	delete(input, "id")
	delete(input, "author")
	delete(input, "pub_date")
	delete(input, "image")

	updates := map[string]interface{}{}

	if raw, ok := input["text"]; ok {
		text, _ := raw.(string)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Validation échouée",
				"details": gin.H{"text": "champ obligatoire"},
			})
			return
		}
		updates["text"] = text
	} else if c.Request.Method == http.MethodPut {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"text": "champ obligatoire"},
		})
		return
	}

	if raw, ok := input["group"]; ok {
		if raw == nil {
			updates["group_id"] = nil
		} else {
			gid, ok := raw.(string)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "Validation échouée",
					"details": gin.H{"group": "identifiant de groupe invalide"},
				})
				return
			}
			if gid == "" {
				updates["group_id"] = nil
			} else {
				var grp group.Group
				if err := database.DB.First(&grp, "id = ?", gid).Error; err != nil {
					c.JSON(http.StatusBadRequest, gin.H{
						"error":   "Validation échouée",
						"details": gin.H{"group": "groupe inconnu"},
					})
					return
				}
				updates["group_id"] = gid
			}
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&p).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du post"})
			logs.LogJSON("ERROR", "Error updating post", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  fmt.Sprintf("postID : %s", postID),
			})
			return
		}
	}

	if err := database.DB.Preload("Author").First(&p, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération du post"})
		return
	}

	c.JSON(http.StatusOK, postResponse(p))
	logs.LogJSON("INFO", "Post updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("postID : %s", postID),
	})
}

// DeletePost DELETE /api/v1/posts/:id
// Réservé à l'auteur. Les commentaires partent avec le post dans la même
// transaction ; l'image n'est retirée du stockage qu'après le commit,
// et son absence n'est pas une erreur.
func DeletePost(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	postID := c.Param("id")
	var p Post
	if err := database.DB.First(&p, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return
	}

	if p.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Suppression du contenu d'autrui interdite"})
		logs.LogJSON("WARN", "Non-author tried to delete post", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("postID : %s", postID),
		})
		return
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", p.ID).Delete(&Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du post"})
		logs.LogJSON("ERROR", "Error deleting post", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("postID : %s", postID),
		})
		return
	}

	if p.ImageURL != "" {
		if key := storage.MediaKeyFromURL(p.ImageURL); key != "" {
			if err := storage.DeleteFromS3(key); err != nil {
				// le post est déjà supprimé, on logge sans remonter l'erreur
				logs.LogJSON("WARN", "Media delete failed", map[string]interface{}{
					"error":  err.Error(),
					"route":  route,
					"userID": userID,
					"extra":  fmt.Sprintf("mediaKey : %s", key),
				})
			}
		}
	}

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Post deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("postID : %s", postID),
	})
}

// getParentPost résout le post parent du chemin. Répond 404 si absent,
// avant toute autre vérification.
func getParentPost(c *gin.Context) (*Post, bool) {
	var p Post
	if err := database.DB.First(&p, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post non trouvé"})
		return nil, false
	}
	return &p, true
}

// GetComments GET /api/v1/posts/:id/comments
func GetComments(c *gin.Context) {
	route := c.FullPath()

	parent, ok := getParentPost(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)

	var count int64
	if err := database.DB.Model(&Comment{}).Where("post_id = ?", parent.ID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des commentaires"})
		logs.LogJSON("ERROR", "Error counting comments", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	var comments []Comment
	if err := database.DB.Preload("Author").Where("post_id = ?", parent.ID).
		Order("created").Limit(params.Limit).Offset(params.Offset).Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des commentaires"})
		logs.LogJSON("ERROR", "Error retrieving comments", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	results := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		results = append(results, commentResponse(cm))
	}

	c.JSON(http.StatusOK, pagination.Envelope(c, count, params, results))
}

// GetCommentByID GET /api/v1/posts/:id/comments/:comment_id
func GetCommentByID(c *gin.Context) {
	parent, ok := getParentPost(c)
	if !ok {
		return
	}

	var cm Comment
	if err := database.DB.Preload("Author").
		First(&cm, "id = ? AND post_id = ?", c.Param("comment_id"), parent.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commentaire non trouvé"})
		return
	}

	c.JSON(http.StatusOK, commentResponse(cm))
}

// CreateComment POST /api/v1/posts/:id/comments
// Le post parent vient du chemin, l'auteur du principal courant ;
// aucun des deux n'est accepté depuis le corps.
func CreateComment(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	parent, ok := getParentPost(c)
	if !ok {
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"text": "champ obligatoire"},
		})
		return
	}

	var me user.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	cm := Comment{
		ID:       uuid.New().String(),
		PostID:   parent.ID,
		AuthorID: userID,
		Text:     input.Text,
		Created:  time.Now(),
	}

	if err := database.DB.Create(&cm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du commentaire"})
		logs.LogJSON("ERROR", "Error creating comment", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("postID : %s", parent.ID),
		})
		return
	}

	cm.Author = me
	c.JSON(http.StatusCreated, commentResponse(cm))
	logs.LogJSON("INFO", "Comment created", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("postID : %s", parent.ID),
	})
}

// UpdateComment PUT/PATCH /api/v1/posts/:id/comments/:comment_id
func UpdateComment(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	parent, ok := getParentPost(c)
	if !ok {
		return
	}

	commentID := c.Param("comment_id")
	var cm Comment
	if err := database.DB.First(&cm, "id = ? AND post_id = ?", commentID, parent.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commentaire non trouvé"})
		return
	}

	if cm.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Modification du contenu d'autrui interdite"})
		logs.LogJSON("WARN", "Non-author tried to update comment", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("commentID : %s", commentID),
		})
		return
	}

	var input map[string]interface{}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	// seul le texte est modifiable, le reste est assigné côté serveur
	raw, hasText := input["text"]
	if !hasText && c.Request.Method == http.MethodPut {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"text": "champ obligatoire"},
		})
		return
	}

	if hasText {
		text, _ := raw.(string)
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Validation échouée",
				"details": gin.H{"text": "champ obligatoire"},
			})
			return
		}
		if err := database.DB.Model(&cm).Update("text", text).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour du commentaire"})
			logs.LogJSON("ERROR", "Error updating comment", map[string]interface{}{
				"error":  err.Error(),
				"route":  route,
				"userID": userID,
				"extra":  fmt.Sprintf("commentID : %s", commentID),
			})
			return
		}
		cm.Text = text
	}

	var me user.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err == nil {
		cm.Author = me
	}

	c.JSON(http.StatusOK, commentResponse(cm))
	logs.LogJSON("INFO", "Comment updated", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("commentID : %s", commentID),
	})
}

// DeleteComment DELETE /api/v1/posts/:id/comments/:comment_id
func DeleteComment(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	parent, ok := getParentPost(c)
	if !ok {
		return
	}

	commentID := c.Param("comment_id")
	var cm Comment
	if err := database.DB.First(&cm, "id = ? AND post_id = ?", commentID, parent.ID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commentaire non trouvé"})
		return
	}

	if cm.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Suppression du contenu d'autrui interdite"})
		logs.LogJSON("WARN", "Non-author tried to delete comment", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("commentID : %s", commentID),
		})
		return
	}

	if err := database.DB.Delete(&cm).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression du commentaire"})
		logs.LogJSON("ERROR", "Error deleting comment", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("commentID : %s", commentID),
		})
		return
	}

	c.Status(http.StatusNoContent)
	logs.LogJSON("INFO", "Comment deleted", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("commentID : %s", commentID),
	})
}
