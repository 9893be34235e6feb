// Package webmirror provides a resumable, parallel web crawler that mirrors
// a bounded slice of a website to local storage, producing cleaned HTML,
// Markdown, and structured metadata artifacts. It supports two acquisition
// modes behind a single crawl engine: a generic HTML mode and a Confluence
// REST API mode with full page metadata and attachments.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, confluence/).
package webmirror
