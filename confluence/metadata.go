package confluence

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/sjseo298/webmirror"
)

// Content is the decoded shape of a content API response with the full
// expansion set. Fields not consumed anywhere are left out; the verbatim
// payload is preserved separately for the index.json artifact.
type Content struct {
	ID     string `json:"id"`
	ARI    string `json:"ari"`
	Type   string `json:"type"`
	Status string `json:"status"`
	Title  string `json:"title"`

	Space struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"space"`

	Version struct {
		Number    int    `json:"number"`
		When      string `json:"when"`
		Message   string `json:"message"`
		MinorEdit bool   `json:"minorEdit"`
		By        actor  `json:"by"`
	} `json:"version"`

	History struct {
		CreatedDate string `json:"createdDate"`
		CreatedBy   actor  `json:"createdBy"`
		LastUpdated struct {
			When string `json:"when"`
			By   actor  `json:"by"`
		} `json:"lastUpdated"`
	} `json:"history"`

	Body struct {
		View struct {
			Value string `json:"value"`
		} `json:"view"`
		Storage struct {
			Value string `json:"value"`
		} `json:"storage"`
	} `json:"body"`

	Children struct {
		Page struct {
			Results []struct {
				ID    string   `json:"id"`
				Title string   `json:"title"`
				Links apiLinks `json:"_links"`
			} `json:"results"`
		} `json:"page"`
	} `json:"children"`

	Links apiLinks `json:"_links"`
}

type actor struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	AccountID   string `json:"accountId"`
}

type apiLinks struct {
	WebUI    string `json:"webui"`
	Self     string `json:"self"`
	TinyUI   string `json:"tinyui"`
	Download string `json:"download"`
	Next     string `json:"next"`
}

type searchResponse struct {
	Results []struct {
		ID    string   `json:"id"`
		Title string   `json:"title"`
		Links apiLinks `json:"_links"`
	} `json:"results"`
	Links apiLinks `json:"_links"`
}

type attachmentResult struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Metadata struct {
		MediaType string `json:"mediaType"`
	} `json:"metadata"`
	Extensions struct {
		FileSize int64  `json:"fileSize"`
		Comment  string `json:"comment"`
	} `json:"extensions"`
	Version struct {
		Number int    `json:"number"`
		When   string `json:"when"`
		By     actor  `json:"by"`
	} `json:"version"`
	Links apiLinks `json:"_links"`
}

type attachmentResponse struct {
	Results []attachmentResult `json:"results"`
	Links   apiLinks           `json:"_links"`
}

// ExtractMetadata converts an API content payload into the page metadata
// record, computing the derived statistics.
func ExtractMetadata(content *Content, cleanURL string, resolve func(string) string) *webmirror.PageMetadata {
	viewHTML := content.Body.View.Value

	meta := &webmirror.PageMetadata{
		PageID:    content.ID,
		CleanURL:  cleanURL,
		ARI:       content.ARI,
		Type:      content.Type,
		Status:    content.Status,
		Title:     content.Title,
		SpaceKey:  content.Space.Key,
		SpaceName: content.Space.Name,
		Version: webmirror.VersionInfo{
			Number:    content.Version.Number,
			When:      content.Version.When,
			By:        content.Version.By.DisplayName,
			ByEmail:   content.Version.By.Email,
			ByAccount: content.Version.By.AccountID,
			Message:   content.Version.Message,
			MinorEdit: content.Version.MinorEdit,
		},
		Created: webmirror.ActorInfo{
			When:      content.History.CreatedDate,
			By:        content.History.CreatedBy.DisplayName,
			ByEmail:   content.History.CreatedBy.Email,
			ByAccount: content.History.CreatedBy.AccountID,
		},
		Updated: webmirror.ActorInfo{
			When:      content.History.LastUpdated.When,
			By:        content.History.LastUpdated.By.DisplayName,
			ByEmail:   content.History.LastUpdated.By.Email,
			ByAccount: content.History.LastUpdated.By.AccountID,
		},
		WebLink:          resolve(content.Links.WebUI),
		RestLink:         content.Links.Self,
		TinyLink:         resolve(content.Links.TinyUI),
		ContentCharCount: len(viewHTML),
		HasTables:        strings.Contains(viewHTML, "<table"),
	}

	meta.DaysSinceUpdate = daysSince(content.History.LastUpdated.When)
	return meta
}

// daysSince computes whole days elapsed since an RFC 3339 timestamp, or
// nil when the timestamp cannot be parsed.
func daysSince(when string) *int {
	t, err := time.Parse(time.RFC3339, when)
	if err != nil {
		return nil
	}
	days := int(math.Floor(time.Since(t).Hours() / 24))
	return &days
}

// MetadataDoc is the index.yml document.
type MetadataDoc struct {
	Source      SourceSection      `yaml:"source"`
	Content     ContentSection     `yaml:"content"`
	History     HistorySection     `yaml:"history"`
	Version     VersionSection     `yaml:"version"`
	Derived     DerivedSection     `yaml:"derived"`
	Paths       PathsSection       `yaml:"paths"`
	Attachments AttachmentsSection `yaml:"attachments"`
}

type SourceSection struct {
	Endpoint   string `yaml:"endpoint"`
	Query      string `yaml:"query"`
	RequestURL string `yaml:"request_url"`
	Rest       string `yaml:"rest"`
	Web        string `yaml:"web"`
	Tiny       string `yaml:"tiny"`
}

type ContentSection struct {
	ID        string `yaml:"id"`
	ARI       string `yaml:"ari"`
	Type      string `yaml:"type"`
	Status    string `yaml:"status"`
	SpaceKey  string `yaml:"space_key"`
	SpaceName string `yaml:"space_name"`
	Title     string `yaml:"title"`
}

type HistorySection struct {
	Created ActorSection `yaml:"created"`
	Updated ActorSection `yaml:"updated"`
}

type ActorSection struct {
	When      string `yaml:"when"`
	By        string `yaml:"by"`
	ByEmail   string `yaml:"by_email"`
	ByAccount string `yaml:"by_account"`
}

type VersionSection struct {
	Number    int    `yaml:"number"`
	Minor     bool   `yaml:"minor"`
	By        string `yaml:"by"`
	ByEmail   string `yaml:"by_email"`
	ByAccount string `yaml:"by_account"`
	When      string `yaml:"when"`
	Comment   string `yaml:"comment"`
}

type DerivedSection struct {
	HasAttachments   bool   `yaml:"has_attachments"`
	AttachmentCount  int    `yaml:"attachment_count"`
	DaysSinceUpdate  *int   `yaml:"days_since_update"`
	ContentCharCount int    `yaml:"content_char_count"`
	HasTables        bool   `yaml:"has_tables"`
}

type PathsSection struct {
	Base           string `yaml:"base"`
	HTML           string `yaml:"html"`
	Markdown       string `yaml:"markdown"`
	JSON           string `yaml:"json"`
	Metadata       string `yaml:"metadata"`
	AttachmentsDir string `yaml:"attachments_dir"`
}

type AttachmentsSection struct {
	Count int              `yaml:"count"`
	Items []AttachmentItem `yaml:"items"`
}

type AttachmentItem struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	MediaType      string `yaml:"media_type"`
	Version        int    `yaml:"version"`
	FileSizeAPI    int64  `yaml:"file_size_api"`
	FileSizeLocal  int64  `yaml:"file_size_local"`
	Created        string `yaml:"created"`
	CreatedBy      string `yaml:"created_by"`
	Comment        string `yaml:"comment"`
	SourceDownload string `yaml:"source_download"`
	LocalPath      string `yaml:"local_path"`
}

// BuildMetadataDoc assembles the index.yml document for a saved page.
func BuildMetadataDoc(meta *webmirror.PageMetadata, attachments []*webmirror.Attachment, pageDir, requestURL string) *MetadataDoc {
	doc := &MetadataDoc{
		Source: SourceSection{
			Endpoint:   "content",
			Query:      "expand=" + contentExpand,
			RequestURL: requestURL,
			Rest:       meta.RestLink,
			Web:        meta.WebLink,
			Tiny:       meta.TinyLink,
		},
		Content: ContentSection{
			ID:        meta.PageID,
			ARI:       meta.ARI,
			Type:      meta.Type,
			Status:    meta.Status,
			SpaceKey:  meta.SpaceKey,
			SpaceName: meta.SpaceName,
			Title:     meta.Title,
		},
		History: HistorySection{
			Created: ActorSection{
				When:      meta.Created.When,
				By:        meta.Created.By,
				ByEmail:   meta.Created.ByEmail,
				ByAccount: meta.Created.ByAccount,
			},
			Updated: ActorSection{
				When:      meta.Updated.When,
				By:        meta.Updated.By,
				ByEmail:   meta.Updated.ByEmail,
				ByAccount: meta.Updated.ByAccount,
			},
		},
		Version: VersionSection{
			Number:    meta.Version.Number,
			Minor:     meta.Version.MinorEdit,
			By:        meta.Version.By,
			ByEmail:   meta.Version.ByEmail,
			ByAccount: meta.Version.ByAccount,
			When:      meta.Version.When,
			Comment:   meta.Version.Message,
		},
		Derived: DerivedSection{
			HasAttachments:   meta.HasAttachments,
			AttachmentCount:  meta.AttachmentCount,
			DaysSinceUpdate:  meta.DaysSinceUpdate,
			ContentCharCount: meta.ContentCharCount,
			HasTables:        meta.HasTables,
		},
		Paths: PathsSection{
			Base:           pageDir,
			HTML:           filepath.Join(pageDir, "index.html"),
			Markdown:       filepath.Join(pageDir, "index.md"),
			JSON:           filepath.Join(pageDir, "index.json"),
			Metadata:       filepath.Join(pageDir, "index.yml"),
			AttachmentsDir: filepath.Join(pageDir, "attachments"),
		},
	}

	doc.Attachments.Count = len(attachments)
	for _, a := range attachments {
		doc.Attachments.Items = append(doc.Attachments.Items, AttachmentItem{
			ID:             a.ID,
			Title:          a.Title,
			MediaType:      a.MediaType,
			Version:        a.Version,
			FileSizeAPI:    a.FileSize,
			FileSizeLocal:  a.FileSizeLocal,
			Created:        a.CreatedWhen,
			CreatedBy:      a.CreatedBy,
			Comment:        a.Comment,
			SourceDownload: a.DownloadURL,
			LocalPath:      a.LocalPath,
		})
	}
	return doc
}
