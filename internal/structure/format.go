package structure

import (
	"strings"

	"gatekeeper/internal/services"
)

// Format identifies the kind of media a package carries.
type Format string

const (
	FormatAudio Format = "audio"
	FormatVideo Format = "video"
)

// ParseFormat converts user input into a Format. An unknown value is a
// configuration error; it stops the process before a job starts.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatAudio:
		return FormatAudio, nil
	case FormatVideo:
		return FormatVideo, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "", "parse format",
			"cannot process packages with format "+value, nil)
	}
}

// MasterExt returns the filename extension master files carry for the format.
func (f Format) MasterExt() string {
	if f == FormatVideo {
		return ".mkv"
	}
	return ".wav"
}

func (f Format) String() string {
	return string(f)
}
