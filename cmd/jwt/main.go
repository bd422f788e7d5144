package main

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
)

// Generates the signing secret for the media API's JWT middleware.
// Paste the output into config.yaml under jwt.secret_key.
func main() {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		slog.Error("Failed to generate JWT secret", "err", err)
		return
	}

	slog.Info("Generated JWT secret", "secret", base64.URLEncoding.EncodeToString(key))
}
