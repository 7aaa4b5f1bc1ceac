package utils

import (
	"log"

	"github.com/go-resty/resty/v2"

	"learnhub/config"
)

// CleanupMedia asks the media backend to destroy uploaded assets by public
// ID. Best effort: failures are logged and never fail the request that
// triggered the cleanup, so callers usually run it in a goroutine.
func CleanupMedia(publicIDs []string) {
	cfg := config.AppConfig
	if cfg.MediaApiURL == "" || len(publicIDs) == 0 {
		return
	}

	client := resty.New()
	for _, publicID := range publicIDs {
		resp, err := client.R().
			SetHeader("Authorization", "Bearer "+cfg.MediaApiKey).
			SetBody(map[string]string{"public_id": publicID}).
			Post(cfg.MediaApiURL + "/destroy")
		if err != nil {
			log.Printf("[MEDIA] Destroy failed for %s: %v", publicID, err)
			continue
		}
		if resp.StatusCode() != 200 {
			log.Printf("[MEDIA] Destroy rejected for %s: %d %s", publicID, resp.StatusCode(), resp.String())
		}
	}
}
