package middleware

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
)

// refreshAccessToken échange un refresh token contre un nouvel access token
// auprès du service d'auth.
func refreshAccessToken(refreshToken string) (string, error) {
	var result struct {
		AccessToken string `json:"access_token"`
	}

	client := resty.New()
	resp, err := client.R().
		SetHeader("apikey", os.Getenv("SUPABASE_ANON_KEY")).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"refresh_token": refreshToken}).
		SetResult(&result).
		Post(os.Getenv("NEXT_PUBLIC_SUPABASE_URL") + "/auth/v1/token?grant_type=refresh_token")

	if err != nil {
		return "", err
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", fmt.Errorf("rafraîchissement du token refusé")
	}

	return result.AccessToken, nil
}
