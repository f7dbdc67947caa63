package reststore

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
)

// TokenFromFile reads an oauth2.Token saved as JSON, e.g. a user session
// token for a hosted backend with row level security.
func TokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) //nolint:gosec // path from trusted config
	if err != nil {
		return nil, fmt.Errorf("opening token file: %w", err)
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token file: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token file %s has no access_token", path)
	}
	return tok, nil
}
