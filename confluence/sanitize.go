package confluence

import (
	"path"
	"strings"
)

// maxFilenameLen caps sanitized attachment filenames, extension included.
const maxFilenameLen = 200

var titleReserved = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "", "|", "", "?", "", "*", "",
)

// SanitizeTitle converts an attachment title into a filesystem-safe
// filename: spaces become underscores, reserved characters are stripped,
// and the result is truncated preserving the extension. An empty result
// falls back to "attachment".
func SanitizeTitle(title string) string {
	name := strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
	name = titleReserved.Replace(name)

	if len(name) > maxFilenameLen {
		ext := path.Ext(name)
		if len(ext) >= maxFilenameLen {
			ext = ""
		}
		name = name[:maxFilenameLen-len(ext)] + ext
	}

	if name == "" || strings.Trim(name, "._") == "" {
		return "attachment"
	}
	return name
}

// AttachmentFilename is the on-disk name of a downloaded attachment.
func AttachmentFilename(id, title string) string {
	return id + "_" + SanitizeTitle(title)
}
