package webmirror

import (
	"regexp"
	"strings"
	"time"
)

// Worker pool bounds.
const (
	DefaultMaxWorkers = 5
	MinWorkers        = 1
	MaxWorkers        = 50
)

// Default timeouts. Page fetches use the connect/read pair; auxiliary
// resources use a tighter budget; the job budget bounds a whole fetch+save
// cycle for one URL.
const (
	DefaultConnectTimeout         = 5 * time.Second
	DefaultReadTimeout            = 15 * time.Second
	DefaultResourceConnectTimeout = 3 * time.Second
	DefaultResourceReadTimeout    = 10 * time.Second
	DefaultJobBudget              = 60 * time.Second
)

// Tristate is an auto/true/false configuration switch.
type Tristate string

const (
	TristateAuto  Tristate = "auto"
	TristateTrue  Tristate = "true"
	TristateFalse Tristate = "false"
)

// Valid returns true for a recognized tristate value; the empty string is
// treated as auto.
func (t Tristate) Valid() bool {
	switch t {
	case TristateAuto, TristateTrue, TristateFalse, "":
		return true
	}
	return false
}

// Config is the single configuration record recognized by the crawler.
// Field names mirror the YAML configuration file keys.
type Config struct {
	Website  WebsiteConfig  `yaml:"website"`
	Crawling CrawlingConfig `yaml:"crawling"`
	Output   OutputConfig   `yaml:"output"`
	Files    FilesConfig    `yaml:"files"`
	Advanced AdvancedConfig `yaml:"advanced"`
	Content  ContentConfig  `yaml:"content"`
}

// WebsiteConfig scopes the crawl to a site.
type WebsiteConfig struct {
	BaseURL          string           `yaml:"base_url"`
	BaseDomain       string           `yaml:"base_domain"`
	StartURL         string           `yaml:"start_url"`
	ValidURLPatterns []string         `yaml:"valid_url_patterns"`
	ExcludePatterns  []string         `yaml:"exclude_patterns"`
	Confluence       ConfluenceConfig `yaml:"confluence"`
}

// ConfluenceConfig controls site-type detection and API mode selection.
type ConfluenceConfig struct {
	IsConfluence Tristate `yaml:"is_confluence"`
	UseAPI       Tristate `yaml:"use_api"`
}

// CrawlingConfig bounds the crawl.
type CrawlingConfig struct {
	MaxDepth       int     `yaml:"max_depth"`
	SpaceName      string  `yaml:"space_name"`
	MaxWorkers     int     `yaml:"max_workers"`
	RequestDelay   float64 `yaml:"request_delay"`   // seconds, advisory
	RequestTimeout float64 `yaml:"request_timeout"` // seconds
}

// OutputConfig controls artifact layout and formats.
type OutputConfig struct {
	Format       Format                 `yaml:"format"`
	OutputDir    string                 `yaml:"output_dir"`
	ResourcesDir string                 `yaml:"resources_dir"`
	Confluence   ConfluenceOutputConfig `yaml:"confluence_output"`
}

// ConfluenceOutputConfig toggles the optional API-mode artifacts.
type ConfluenceOutputConfig struct {
	SaveAPIResponse bool `yaml:"save_api_response"`
	SaveMetadataYML bool `yaml:"save_metadata_yml"`
	SaveAttachments bool `yaml:"save_attachments"`
}

// FilesConfig locates the store and the cookie source.
type FilesConfig struct {
	DatabaseFile string `yaml:"database_file"`
	CookiesFile  string `yaml:"cookies_file"`
}

// AdvancedConfig holds the HTTP client identity.
type AdvancedConfig struct {
	UserAgent string            `yaml:"user_agent"`
	Headers   map[string]string `yaml:"headers"`
}

// ContentConfig toggles auxiliary resource downloads.
type ContentConfig struct {
	DownloadResources bool `yaml:"download_resources"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Website: WebsiteConfig{
			Confluence: ConfluenceConfig{
				IsConfluence: TristateAuto,
				UseAPI:       TristateAuto,
			},
		},
		Crawling: CrawlingConfig{
			MaxDepth:   3,
			MaxWorkers: DefaultMaxWorkers,
		},
		Output: OutputConfig{
			Format:       FormatMarkdown,
			OutputDir:    "downloaded_site",
			ResourcesDir: "resources",
			Confluence: ConfluenceOutputConfig{
				SaveAPIResponse: true,
				SaveMetadataYML: true,
				SaveAttachments: true,
			},
		},
		Files: FilesConfig{
			DatabaseFile: "crawler_data.db",
		},
	}
}

// Validate returns an error describing the first invalid field.
func (c *Config) Validate() error {
	if c.Website.StartURL == "" {
		return Errorf(EINVALID, "website.start_url required")
	}
	if _, err := CleanURL(c.Website.StartURL); err != nil {
		return Errorf(EINVALID, "website.start_url: %s", ErrorMessage(err))
	}
	if c.Crawling.MaxDepth < 0 {
		return Errorf(EINVALID, "crawling.max_depth must be non-negative")
	}
	if !c.Output.Format.Valid() {
		return Errorf(EINVALID, "output.format must be markdown or html")
	}
	if !c.Website.Confluence.IsConfluence.Valid() {
		return Errorf(EINVALID, "website.confluence.is_confluence must be auto, true, or false")
	}
	if !c.Website.Confluence.UseAPI.Valid() {
		return Errorf(EINVALID, "website.confluence.use_api must be auto, true, or false")
	}
	return nil
}

// Workers returns the configured worker count clamped to [1, 50].
func (c *Config) Workers() int {
	n := c.Crawling.MaxWorkers
	if n <= 0 {
		n = DefaultMaxWorkers
	}
	if n < MinWorkers {
		n = MinWorkers
	}
	if n > MaxWorkers {
		n = MaxWorkers
	}
	return n
}

// RequestDelay returns the advisory inter-request delay as a duration.
func (c *Config) RequestDelay() time.Duration {
	if c.Crawling.RequestDelay <= 0 {
		return 0
	}
	return time.Duration(c.Crawling.RequestDelay * float64(time.Second))
}

// confluenceURLPatterns identify Confluence-hosted sites by URL shape.
var confluenceURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.atlassian\.net`),
	regexp.MustCompile(`(?i)/wiki/`),
	regexp.MustCompile(`(?i)/confluence/`),
	regexp.MustCompile(`(?i)/display/`),
	regexp.MustCompile(`(?i)/pages/`),
	regexp.MustCompile(`(?i)/rest/api/content/`),
}

// IsConfluenceURL reports whether a URL matches any known Confluence
// hosting pattern.
func IsConfluenceURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	for _, re := range confluenceURLPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}
	return false
}

// IsConfluenceSite applies the is_confluence override, falling back to URL
// shape detection on the start and base URLs.
func (c *Config) IsConfluenceSite() bool {
	switch c.Website.Confluence.IsConfluence {
	case TristateTrue:
		return true
	case TristateFalse:
		return false
	}
	return IsConfluenceURL(c.Website.StartURL) || IsConfluenceURL(c.Website.BaseURL)
}

// Credentials authenticate against the wiki REST API.
type Credentials struct {
	Email   string
	Token   string
	BaseURL string
}

// Valid returns true when all three fields are set.
func (c *Credentials) Valid() bool {
	return c != nil && c.Email != "" && c.Token != "" && c.BaseURL != ""
}

// APIBase derives the REST API base URL by ensuring the /wiki/rest/api
// suffix on the configured base URL.
func (c *Credentials) APIBase() string {
	if c == nil || c.BaseURL == "" {
		return ""
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.Contains(base, "/rest/api") {
		return base
	}
	if strings.Contains(base, "/wiki") {
		return base + "/rest/api"
	}
	return base + "/wiki/rest/api"
}

// UseAPIDriver decides whether the wiki API driver should run, applying the
// use_api override. Forced API mode without valid credentials is a fatal
// configuration error.
func (c *Config) UseAPIDriver(creds *Credentials) (bool, error) {
	if !c.IsConfluenceSite() {
		return false, nil
	}
	switch c.Website.Confluence.UseAPI {
	case TristateTrue:
		if !creds.Valid() {
			return false, Errorf(EAUTH, "confluence API mode is required but credentials are not configured")
		}
		return true, nil
	case TristateFalse:
		return false, nil
	}
	return creds.Valid(), nil
}
