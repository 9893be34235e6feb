// Package yaml loads the crawl configuration file and the wiki API
// credentials that accompany it.
package yaml

import (
	"os"

	"github.com/sjseo298/webmirror"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML configuration file on top of the defaults and
// validates the result.
func LoadConfig(path string) (*webmirror.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, webmirror.Errorf(webmirror.EINVALID, "cannot read config file %s: %v", path, err)
	}

	cfg := webmirror.DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, webmirror.Errorf(webmirror.EPARSE, "cannot parse config file %s: %v", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
