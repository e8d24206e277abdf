package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	metadataFile = "metadata.json"
	logFile      = "production.log"
	maxNameLen   = 50
)

var (
	ErrProjectNotFound = errors.New("project not found")

	sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
)

// session is one production's working directory:
//
//	<output>/<name>_<id>/{visuals,audio,video}
type session struct {
	id   string
	name string
	dir  string
	log  *productionLog
}

func newSession(baseDir, name, id string, now func() time.Time) (*session, error) {
	sanitized := sanitizeForPath(name)
	if sanitized == "" {
		sanitized = "production"
	}
	if len(sanitized) > maxNameLen {
		sanitized = sanitized[:maxNameLen]
	}

	s := &session{
		id:   id,
		name: sanitized,
		dir:  filepath.Join(baseDir, fmt.Sprintf("%s_%s", sanitized, id)),
	}
	for _, sub := range []string{"visuals", "audio", "video"} {
		if err := os.MkdirAll(filepath.Join(s.dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create project dir: %w", err)
		}
	}
	s.log = &productionLog{path: filepath.Join(s.dir, logFile), now: now}
	return s, nil
}

func (s *session) framePath(i int) string {
	return filepath.Join(s.dir, "visuals", fmt.Sprintf("frame_%04d.png", i))
}
func (s *session) narrationPath() string { return filepath.Join(s.dir, "audio", "narration.mp3") }
func (s *session) videoPath(name string) string {
	return filepath.Join(s.dir, "video", name)
}
func (s *session) metadataPath() string { return filepath.Join(s.dir, metadataFile) }

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// productionLog appends "[ts] [STAGE] STATUS: msg" lines to production.log.
type productionLog struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func (l *productionLog) write(stage, status, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] [%s] %s: %s\n", l.now().Format(time.RFC3339), strings.ToUpper(stage), status, msg)
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = f.WriteString(line)
}

func writeMetadata(path string, m *Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Status reads a project's metadata.json. dir is the project directory.
func Status(dir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, dir)
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &m, nil
}

// FindProject resolves a project under baseDir. name may be the full
// directory name or the project name, in which case the newest
// "<name>_<id>" directory wins.
func FindProject(baseDir, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrProjectNotFound, name)
	}

	exact := filepath.Join(baseDir, name)
	if info, err := os.Stat(exact); err == nil && info.IsDir() {
		return exact, nil
	}

	matches, err := filepath.Glob(filepath.Join(baseDir, sanitizeForPath(name)+"_*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %q", ErrProjectNotFound, name)
	}

	sort.Slice(matches, func(i, j int) bool {
		return modTime(matches[i]).After(modTime(matches[j]))
	})
	return matches[0], nil
}

// Projects lists project directories under baseDir, newest first.
func Projects(baseDir string) ([]string, error) {
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", baseDir, err)
	}

	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(baseDir, e.Name(), metadataFile)); err == nil {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		return modTime(filepath.Join(baseDir, dirs[i])).After(modTime(filepath.Join(baseDir, dirs[j])))
	})
	return dirs, nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
