package group

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/logs"
)

// GetGroups GET /api/v1/groups
// Liste non paginée, accessible en anonyme.
func GetGroups(c *gin.Context) {
	route := c.FullPath()

	groups := make([]Group, 0)
	if err := database.DB.Order("title").Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la récupération des groupes"})
		logs.LogJSON("ERROR", "Error retrieving groups", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroupByID GET /api/v1/groups/:id
func GetGroupByID(c *gin.Context) {
	groupID := c.Param("id")

	var grp Group
	if err := database.DB.First(&grp, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Groupe non trouvé"})
		return
	}

	c.JSON(http.StatusOK, grp)
}
