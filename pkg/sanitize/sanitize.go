package sanitize

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "sanitize")

const (
	// DefaultMaxStringLen is the size past which plain string fields are truncated.
	DefaultMaxStringLen = 4096
	// DefaultBase64MinLen is the minimum run length for a bare string to be
	// treated as base64 binary.
	DefaultBase64MinLen = 1024

	savedMarkerPrefix  = "[BINARY_SAVED_TO: "
	failedMarkerPrefix = "[BINARY_SAVE_FAILED: "
	truncationNote     = "... [truncated "
)

var (
	base64Run        = regexp.MustCompile(`^[A-Za-z0-9+/\r\n]+={0,2}$`)
	unsafeIdent      = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	dataURLSplit     = regexp.MustCompile(`^data:([a-z]+/[a-z0-9.+-]+);base64,`)
	truncationMarker = regexp.MustCompile(`\.\.\. \[truncated \d+ of \d+ chars\]$`)
)

// Sanitizer bounds tool results before they re-enter model context: base64
// binary payloads are persisted to OutputDir and replaced with a marker,
// other oversized strings are truncated. Sanitize never returns an error and
// is idempotent over its own output.
type Sanitizer struct {
	// OutputDir receives extracted binary payloads.
	OutputDir string
	// MaxStringLen is the truncation threshold for plain strings.
	MaxStringLen int
	// Base64MinLen is the detection threshold for bare base64 runs.
	Base64MinLen int
}

func New(outputDir string) *Sanitizer {
	return &Sanitizer{
		OutputDir:    outputDir,
		MaxStringLen: DefaultMaxStringLen,
		Base64MinLen: DefaultBase64MinLen,
	}
}

// Sanitize walks the value recursively and returns the bounded copy.
func (s *Sanitizer) Sanitize(v any) any {
	return s.walk("result", v)
}

// SanitizeString bounds a single string field.
func (s *Sanitizer) SanitizeString(source, val string) string {
	return s.sanitizeString(source, val)
}

func (s *Sanitizer) walk(source string, v any) any {
	switch val := v.(type) {
	case string:
		return s.sanitizeString(source, val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = s.walk(k, item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = s.walk(source, item)
		}
		return out
	default:
		return v
	}
}

func (s *Sanitizer) sanitizeString(source, val string) string {
	if isMarker(val) {
		return val
	}
	if mime, payload, ok := s.detectBinary(val); ok {
		return s.persist(source, mime, payload)
	}
	maxLen := s.MaxStringLen
	if maxLen <= 0 {
		maxLen = DefaultMaxStringLen
	}
	if len(val) > maxLen {
		return fmt.Sprintf("%s%s%d of %d chars]", val[:maxLen], truncationNote, len(val)-maxLen, len(val))
	}
	return val
}

func (s *Sanitizer) detectBinary(val string) (mime, payload string, ok bool) {
	if m := dataURLSplit.FindStringSubmatch(val); m != nil {
		return m[1], val[len(m[0]):], true
	}
	minLen := s.Base64MinLen
	if minLen <= 0 {
		minLen = DefaultBase64MinLen
	}
	if len(val) >= minLen && base64Run.MatchString(val) {
		return "application/octet-stream", val, true
	}
	return "", "", false
}

func (s *Sanitizer) persist(source, mime, payload string) string {
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(strings.ReplaceAll(payload, "\r", ""), "\n", ""))
	if err != nil {
		// keep the raw payload bytes when decoding fails
		data = []byte(payload)
	}

	dir := s.OutputDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.KV(xlog.WARNING, "reason", "mkdir", "dir", dir, "err", err.Error())
		return failedMarkerPrefix + err.Error() + "]"
	}

	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), identFragment(source), extension(mime))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.KV(xlog.WARNING, "reason", "write", "path", path, "err", err.Error())
		return failedMarkerPrefix + err.Error() + "]"
	}
	return savedMarkerPrefix + path + "]"
}

func isMarker(val string) bool {
	return strings.HasPrefix(val, savedMarkerPrefix) ||
		strings.HasPrefix(val, failedMarkerPrefix) ||
		truncationMarker.MatchString(val)
}

func identFragment(source string) string {
	frag := unsafeIdent.ReplaceAllString(source, "_")
	frag = strings.Trim(frag, "_")
	if frag == "" {
		frag = "blob"
	}
	if len(frag) > 32 {
		frag = frag[:32]
	}
	return frag
}

func extension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
