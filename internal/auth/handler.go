package auth

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"

	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/database"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/logs"
	"github.com/Forget-me-not-crossyroad/api-final-yatube/internal/user"
)

// Signup POST /api/v1/signup
// L'émission du compte est déléguée au service d'auth externe ; on ne garde
// ici qu'un miroir id/username/email pour les références des entités.
func Signup(c *gin.Context) {
	route := c.FullPath()
	authBaseURL := os.Getenv("NEXT_PUBLIC_SUPABASE_URL")
	authAnonKey := os.Getenv("SUPABASE_ANON_KEY")

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if err := c.BindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	if input.Email == "" || input.Password == "" || input.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis manquants"})
		return
	}

	// Vérification que email et username n'existent pas
	if user.ExistsByEmail(input.Email) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email déjà utilisé"})
		return
	}
	if user.ExistsByUsername(input.Username) {
		c.JSON(http.StatusConflict, gin.H{"error": "Nom d'utilisateur déjà utilisé"})
		return
	}

	// Étape 1 : création du compte chez le service d'auth
	var authResp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("apikey", authAnonKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"email":    input.Email,
			"password": input.Password,
		}).
		SetResult(&authResp).
		Post(authBaseURL + "/auth/v1/signup")

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur service d'auth"})
		logs.LogJSON("ERROR", "Auth service unreachable", map[string]interface{}{
			"error": err.Error(),
			"route": route,
		})
		return
	}
	if resp.IsError() {
		c.JSON(resp.StatusCode(), gin.H{"error": "Erreur Auth", "details": resp.String()})
		return
	}

	userID := authResp.User.ID
	if userID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Aucun ID utilisateur renvoyé par le service d'auth"})
		return
	}

	// Étape 2 : miroir local de l'identité
	newUser := user.User{
		ID:        userID,
		CreatedAt: time.Now(),
		Username:  input.Username,
		Email:     input.Email,
	}

	if err := database.DB.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur insertion base utilisateurs"})
		logs.LogJSON("ERROR", "User mirror insert failed", map[string]interface{}{
			"error":  err.Error(),
			"route":  route,
			"userID": userID,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       newUser.ID,
		"username": newUser.Username,
		"email":    newUser.Email,
	})
	logs.LogJSON("INFO", "User signed up", map[string]interface{}{
		"route":  route,
		"userID": userID,
	})
}

// Login POST /api/v1/login
// Simple proxy vers le service d'auth, la réponse (tokens) est renvoyée telle quelle.
func Login(c *gin.Context) {
	authBaseURL := os.Getenv("NEXT_PUBLIC_SUPABASE_URL")

	var body map[string]string
	if err := c.BindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Requête invalide"})
		return
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("apikey", os.Getenv("SUPABASE_ANON_KEY")).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(authBaseURL + "/auth/v1/token?grant_type=password")

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion service d'auth"})
		return
	}

	c.Data(resp.StatusCode(), "application/json", resp.Body())
}
