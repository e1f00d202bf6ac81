// Package policy binds asset role suffixes to conformance policy documents.
//
// Every role/extension combination that can legally appear in an expected
// package structure has exactly one binding. An unmapped suffix is a policy
// resolution error, reported distinctly from an actual conformance failure
// produced by the external tool.
package policy

import (
	"path/filepath"
	"strings"

	"gatekeeper/internal/services"
)

// bindings maps a filename's role suffix (the last underscore-delimited
// segment, extension included) to its policy document. Reel-numbered masters
// (ma_01.wav) normalize to the plain master suffix first.
var bindings = map[string]string{
	"a.mp3":  "RAC_Audio_A_MP3.xml",
	"ma.wav": "RAC_Audio_MA_WAV.xml",
	"a.mp4":  "RAC_Video_A_MP4.xml",
	"ma.mkv": "RAC_Video_MA_FFV1MKV.xml",
	"me.mov": "RAC_Video_MEZZ_ProRes.xml",
}

// Resolve returns the policy document name for a payload filename.
func Resolve(filename string) (string, error) {
	suffix := roleSuffix(filepath.Base(filename))
	if doc, ok := bindings[suffix]; ok {
		return doc, nil
	}
	return "", services.Wrap(services.ErrPolicy, "format_checking", "resolve policy",
		"no conformance policy found for file "+filename, nil)
}

// Path returns the full path of the policy document bound to filename.
func Path(policyDir, filename string) (string, error) {
	doc, err := Resolve(filename)
	if err != nil {
		return "", err
	}
	return filepath.Join(policyDir, doc), nil
}

func roleSuffix(name string) string {
	parts := strings.Split(name, "_")
	suffix := parts[len(parts)-1]
	// Numbered reels: refid_ma_01.wav resolves as the ma master policy.
	if len(parts) >= 2 && isReelNumber(strings.TrimSuffix(suffix, filepath.Ext(suffix))) {
		suffix = parts[len(parts)-2] + filepath.Ext(suffix)
	}
	return suffix
}

func isReelNumber(segment string) bool {
	if len(segment) != 2 {
		return false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
