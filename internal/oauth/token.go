package oauth

import (
	"encoding/json"
	"os"

	"golang.org/x/oauth2"

	"github.com/placelink/placelink/pkg/constants"
	"github.com/placelink/placelink/pkg/errors"
)

// SaveToken writes tok as JSON readable only by the current user.
func SaveToken(path string, tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, constants.SecureFilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	if tok.AccessToken == "" {
		return nil, errors.NewParseError("json", path, "no access_token", errors.ErrInvalidInput)
	}
	return &tok, nil
}
