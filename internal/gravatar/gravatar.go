package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"

	"github.com/lesezeit/lesezeit/internal/config"
)

const baseURL = "https://www.gravatar.com/avatar/"

// URL returns the avatar image URL for email, or "" when avatars are
// disabled or the email is empty.
func URL(email string, cfg *config.AvatarConfig) string {
	email = config.NormalizeEmail(email)
	if cfg == nil || !cfg.Enabled || email == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(email))
	u := baseURL + hex.EncodeToString(hash[:])

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Set("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Set("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Set("s", strconv.Itoa(cfg.Size))
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}
