package yaml

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sjseo298/webmirror"
)

// envPaths are the credential files searched in priority order, relative
// to the working directory.
var envPaths = []string{
	filepath.Join("config", ".env"),
	".env",
}

// legacyTokenFile is the pre-.env token location still honored for
// existing setups.
const legacyTokenFile = "confluence_token.txt"

// LoadCredentials resolves wiki API credentials: a .env-style file at
// config/.env or .env, falling back to the legacy token file with email
// and base URL taken from the configuration. Returns nil when no
// credential source exists.
func LoadCredentials(dir string, cfg *webmirror.Config) (*webmirror.Credentials, error) {
	for _, rel := range envPaths {
		path := filepath.Join(dir, rel)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, webmirror.Errorf(webmirror.EINVALID, "cannot read %s: %v", path, err)
		}

		env := ParseEnv(string(data))
		creds := &webmirror.Credentials{
			Email:   env["CONFLUENCE_EMAIL"],
			Token:   env["CONFLUENCE_TOKEN"],
			BaseURL: env["CONFLUENCE_BASE_URL"],
		}
		if creds.Token != "" {
			return creds, nil
		}
	}

	return loadLegacyToken(dir, cfg)
}

// ParseEnv parses .env-style content: KEY=VALUE lines, # comments and
// blanks ignored, surrounding quotes stripped from values.
func ParseEnv(content string) map[string]string {
	env := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = strings.Trim(value, `"'`)
		if key != "" {
			env[key] = value
		}
	}
	return env
}

func loadLegacyToken(dir string, cfg *webmirror.Config) (*webmirror.Credentials, error) {
	path := filepath.Join(dir, legacyTokenFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EINVALID, "cannot read %s: %v", path, err)
	}

	creds := &webmirror.Credentials{Token: strings.TrimSpace(string(data))}
	if cfg != nil {
		creds.BaseURL = cfg.Website.BaseURL
	}
	return creds, nil
}
