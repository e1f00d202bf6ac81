package structure

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gatekeeper/internal/services"
)

// Expected returns the filenames a conformant package must contain, given the
// format and the number of master files actually delivered.
//
// Audio with a single master expects an unsuffixed master; audio with N>1
// masters expects two-digit reel suffixes and still exactly one access file.
// Video structure is fixed regardless of master count: masters are never
// split into reels by this system.
func Expected(format Format, refid string, masterCount int) []string {
	if format == FormatVideo {
		return []string{
			refid + "_ma.mkv",
			refid + "_me.mov",
			refid + "_a.mp4",
		}
	}
	if masterCount > 1 {
		expected := []string{refid + "_a.mp3"}
		for i := 1; i <= masterCount; i++ {
			expected = append(expected, fmt.Sprintf("%s_ma_%02d.wav", refid, i))
		}
		return expected
	}
	return []string{
		refid + "_a.mp3",
		refid + "_ma.wav",
	}
}

// Actual lists the direct children of the payload directory. It never
// recurses into subdirectories; a stray nested directory shows up as an
// unexpected entry by name.
func Actual(payloadDir string) ([]string, error) {
	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return nil, services.Wrap(services.ErrAssetStructure, "asset_checking", "list payload",
			"cannot read payload directory", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

// MasterCount counts the master-quality files present in the payload
// directory for the given format.
func MasterCount(payloadDir string, format Format) (int, error) {
	entries, err := os.ReadDir(payloadDir)
	if err != nil {
		return 0, services.Wrap(services.ErrAssetStructure, "asset_checking", "count masters",
			"cannot read payload directory", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), format.MasterExt()) {
			count++
		}
	}
	return count, nil
}

// Compare diffs the expected and actual filename sets. Ordering and
// duplicates in either listing are irrelevant; any missing or unexpected name
// fails with a deterministic message enumerating both sets sorted.
func Compare(expected, actual []string) error {
	want := toSet(expected)
	got := toSet(actual)
	if setsEqual(want, got) {
		return nil
	}
	message := fmt.Sprintf(
		"the files delivered do not match what is expected\nexpected files:\n%s\nactual files:\n%s",
		strings.Join(sortedKeys(want), "\n"),
		strings.Join(sortedKeys(got), "\n"),
	)
	return services.Wrap(services.ErrAssetStructure, "asset_checking", "compare structure", message, nil)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for key := range a {
		if _, ok := b[key]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
