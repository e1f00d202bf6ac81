package relocate

import (
	"path/filepath"
	"strings"

	"gatekeeper/internal/services"
)

// contentTypes is the closed extension map for destination uploads. An asset
// with an extension outside this map is a deployment mistake, not a package
// defect.
var contentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/x-wav",
	".mp4": "video/mp4",
	".mkv": "video/x-matroska",
	".mov": "video/quicktime",
}

// ContentType returns the MIME type for a payload filename.
func ContentType(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := contentTypes[ext]; ok {
		return mime, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "relocating", "resolve content type",
		"no content type mapped for extension "+ext, nil)
}
