// Package intake watches the inbox directory for newly uploaded recordings
// and hands them to the pipeline. Only recognized audio and video types are
// picked up; in-progress uploads (dotfiles, .part, .tmp) are skipped.
package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"seminar/internal/fileutil"
)

var recognizedExtensions = map[string]struct{}{
	".mp3":  {},
	".wav":  {},
	".m4a":  {},
	".aac":  {},
	".flac": {},
	".ogg":  {},
	".mp4":  {},
	".mkv":  {},
	".mov":  {},
	".webm": {},
}

// Recording describes one uploaded file waiting in the inbox.
type Recording struct {
	ID        string
	Name      string
	SizeBytes int64
	CreatedAt time.Time
}

// Scanner lists and claims recordings from the inbox directory.
type Scanner struct {
	inboxDir      string
	processingDir string
}

// NewScanner creates a scanner over the given inbox and processing directories.
func NewScanner(inboxDir, processingDir string) *Scanner {
	return &Scanner{inboxDir: inboxDir, processingDir: processingDir}
}

// RecognizedExtension reports whether the filename has a supported
// audio or video extension.
func RecognizedExtension(name string) bool {
	_, ok := recognizedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ListNewRecordings returns the recognized recordings currently in the inbox,
// sorted by name for deterministic pickup order.
func (s *Scanner) ListNewRecordings() ([]Recording, error) {
	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("intake: read inbox: %w", err)
	}

	recordings := make([]Recording, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, ".part") || strings.HasSuffix(lower, ".tmp") {
			continue
		}
		if !RecognizedExtension(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		recordings = append(recordings, Recording{
			ID:        name,
			Name:      name,
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(recordings, func(i, j int) bool { return recordings[i].Name < recordings[j].Name })
	return recordings, nil
}

// MoveToProcessing claims the recording by moving it out of the inbox.
// It returns the new path under the processing directory.
func (s *Scanner) MoveToProcessing(id string) (string, error) {
	if id == "" || id != filepath.Base(id) {
		return "", fmt.Errorf("intake: invalid recording id %q", id)
	}
	if err := os.MkdirAll(s.processingDir, 0o755); err != nil {
		return "", fmt.Errorf("intake: ensure processing dir: %w", err)
	}
	src := filepath.Join(s.inboxDir, id)
	dst := filepath.Join(s.processingDir, id)
	if err := fileutil.MoveFile(src, dst); err != nil {
		return "", fmt.Errorf("intake: claim %s: %w", id, err)
	}
	return dst, nil
}

var namePattern = regexp.MustCompile(`^([A-Za-z]+[0-9]+)[_-]([A-Za-z0-9]+)[_-](\d{4}-\d{2}-\d{2})`)

// ParseName extracts course, section, and date hints from an upload filename
// following the COURSE_SECTION_DATE convention (e.g. PHIL101_B_2026-03-14.mp4).
// Files that do not follow the convention yield empty hints; the reviewer can
// fill the labels in later.
func ParseName(name string) (course, section, date string) {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	match := namePattern.FindStringSubmatch(base)
	if match == nil {
		return "", "", ""
	}
	return strings.ToUpper(match[1]), strings.ToUpper(match[2]), match[3]
}
