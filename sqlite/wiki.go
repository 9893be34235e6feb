package sqlite

import (
	"context"

	"github.com/sjseo298/webmirror"
)

// SavePageMetadata upserts the wiki page metadata row for a clean URL.
func (s *Store) SavePageMetadata(ctx context.Context, meta *webmirror.PageMetadata) error {
	if meta.PageID == "" {
		return webmirror.Errorf(webmirror.EINVALID, "page id required")
	}
	if meta.CleanURL == "" {
		return webmirror.Errorf(webmirror.EINVALID, "clean URL required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wiki_pages
			(page_id, clean_url, title, space_key, space_name, version,
			 created_when, created_by, updated_when, updated_by,
			 attachment_count, content_char_count, has_tables)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET
			clean_url = excluded.clean_url,
			title = excluded.title,
			space_key = excluded.space_key,
			space_name = excluded.space_name,
			version = excluded.version,
			created_when = excluded.created_when,
			created_by = excluded.created_by,
			updated_when = excluded.updated_when,
			updated_by = excluded.updated_by,
			attachment_count = excluded.attachment_count,
			content_char_count = excluded.content_char_count,
			has_tables = excluded.has_tables`,
		meta.PageID, meta.CleanURL, meta.Title, meta.SpaceKey, meta.SpaceName,
		meta.Version.Number, meta.Created.When, meta.Created.By,
		meta.Updated.When, meta.Updated.By,
		meta.AttachmentCount, meta.ContentCharCount, boolInt(meta.HasTables),
	)
	return err
}

// SaveAttachment upserts a wiki attachment record.
func (s *Store) SaveAttachment(ctx context.Context, att *webmirror.Attachment) error {
	if att.ID == "" {
		return webmirror.Errorf(webmirror.EINVALID, "attachment id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wiki_attachments
			(attachment_id, page_id, title, media_type, file_size, file_size_local,
			 version, created_when, created_by, comment, download_url, local_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(attachment_id) DO UPDATE SET
			page_id = excluded.page_id,
			title = excluded.title,
			media_type = excluded.media_type,
			file_size = excluded.file_size,
			file_size_local = excluded.file_size_local,
			version = excluded.version,
			created_when = excluded.created_when,
			created_by = excluded.created_by,
			comment = excluded.comment,
			download_url = excluded.download_url,
			local_path = excluded.local_path`,
		att.ID, att.PageID, att.Title, att.MediaType, att.FileSize, att.FileSizeLocal,
		att.Version, att.CreatedWhen, att.CreatedBy, att.Comment, att.DownloadURL, att.LocalPath,
	)
	return err
}
