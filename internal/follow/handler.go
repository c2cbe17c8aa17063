package follow

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/logs"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/pagination"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

// GetFollows GET /api/v1/follow
// Renvoie uniquement les abonnements sortants du principal courant.
// ?search= filtre sur une sous-chaîne du username suivi.
func GetFollows(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var me user.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	params := pagination.Parse(c)
	search := c.Query("search")

	countQuery := database.DB.Model(&Follow{}).Where("follows.user_id = ?", userID)
	listQuery := database.DB.Model(&Follow{}).Preload("Following").
		Where("follows.user_id = ?", userID).
		Order("follows.created_at DESC").
		Limit(params.Limit).Offset(params.Offset)

	if search != "" {
		join := "JOIN users ON users.id = follows.following_id"
		like := "%" + search + "%"
		countQuery = countQuery.Joins(join).Where("users.username ILIKE ?", like)
		listQuery = listQuery.Select("follows.*").Joins(join).Where("users.username ILIKE ?", like)
	}

	var count int64
	if err := countQuery.Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des abonnements"})
		logs.LogJSON("ERROR", "Error counting follows", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	var follows []Follow
	if err := listQuery.Find(&follows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des abonnements"})
		logs.LogJSON("ERROR", "Error retrieving follows", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	results := make([]gin.H, 0, len(follows))
	for _, f := range follows {
		var following interface{}
		if f.Following != nil {
			following = f.Following.Username
		}
		results = append(results, gin.H{
			"id":        f.ID,
			"user":      me.Username,
			"following": following,
		})
	}

	c.JSON(http.StatusOK, pagination.Envelope(c, count, params, results))
}

// CreateFollow POST /api/v1/follow
// Corps attendu : {"following": "<username>"}. Le champ user est toujours
// le principal courant, jamais lu depuis le corps.
func CreateFollow(c *gin.Context) {
	route := c.FullPath()

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var input struct {
		Following string `json:"following"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Following == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"following": "champ obligatoire"},
		})
		return
	}

	var target user.User
	if err := database.DB.First(&target, "username = ?", input.Following).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"following": "utilisateur inconnu"},
		})
		return
	}

	if target.ID == userID {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"following": "on ne peut pas se suivre soi-même"},
		})
		logs.LogJSON("WARN", "Impossible to follow yourself", map[string]interface{}{
			"route":  route,
			"userID": userID,
		})
		return
	}

	already, err := IsFollowing(userID, target.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la vérification du suivi"})
		logs.LogJSON("ERROR", "Error checking existing follow", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}
	if already {
		// l'unicité du couple (user, following) est signalée sur les deux champs
		msg := "déjà abonné à cet utilisateur"
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation échouée",
			"details": gin.H{"user": msg, "following": msg},
		})
		logs.LogJSON("WARN", "Already followed", map[string]interface{}{
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("followingID : %s", target.ID),
		})
		return
	}

	var me user.User
	if err := database.DB.First(&me, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur non trouvé"})
		return
	}

	newFollow := Follow{
		ID:          uuid.New().String(),
		UserID:      userID,
		FollowingID: &target.ID,
	}

	if err := database.DB.Create(&newFollow).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout du follow", "details": err.Error()})
		logs.LogJSON("ERROR", "Error adding follow", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
			"extra":  fmt.Sprintf("followingID : %s", target.ID),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        newFollow.ID,
		"user":      me.Username,
		"following": target.Username,
	})
	logs.LogJSON("INFO", "Followed user", map[string]interface{}{
		"route":  route,
		"userID": userID,
		"extra":  fmt.Sprintf("followingID : %s", target.ID),
	})
}
