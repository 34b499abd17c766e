// Package images picks a stock picture for events that are created without one.
package images

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
)

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Selector chooses an image URL for an event. The choice is deterministic for
// a given event id.
type Selector struct {
	prefix string
	files  []string
}

// NewSelector lists the images in dir once. An empty dir yields a selector
// that never returns an image.
func NewSelector(dir, urlPrefix string) (*Selector, error) {
	s := &Selector{prefix: urlPrefix}
	if dir == "" {
		return s, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read image dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(path.Ext(e.Name()))] {
			s.files = append(s.files, e.Name())
		}
	}
	sort.Strings(s.files)
	return s, nil
}

// NewStatic builds a selector over a fixed list of file names.
func NewStatic(urlPrefix string, files ...string) *Selector {
	return &Selector{prefix: urlPrefix, files: append([]string(nil), files...)}
}

// Len reports how many images are available.
func (s *Selector) Len() int {
	if s == nil {
		return 0
	}
	return len(s.files)
}

// For returns the image URL for eventID, or "" when no images are available.
func (s *Selector) For(eventID int64) string {
	if s.Len() == 0 {
		return ""
	}
	idx := eventID % int64(len(s.files))
	if idx < 0 {
		idx = -idx
	}
	return joinURL(s.prefix, s.files[idx])
}

func joinURL(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
