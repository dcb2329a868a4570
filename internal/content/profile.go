package content

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/growth-cli/internal/apperr"
)

var profileNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)

// Profile is a brand voice definition loaded from YAML.
type Profile struct {
	Name       string   `yaml:"name"`
	Brand      Brand    `yaml:"brand"`
	Voice      Voice    `yaml:"voice"`
	Audience   string   `yaml:"audience"`
	ValueProps []string `yaml:"value_props"`
	CTA        CTA      `yaml:"cta"`
	Keywords   []string `yaml:"keywords"`
}

// Brand names the company.
type Brand struct {
	Name    string `yaml:"name"`
	Tagline string `yaml:"tagline"`
}

// Voice constrains tone and vocabulary.
type Voice struct {
	Tone  string   `yaml:"tone"`
	Avoid []string `yaml:"avoid"`
}

// CTA holds call-to-action copy.
type CTA struct {
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
}

func (p Profile) clone() Profile {
	p.Voice.Avoid = append([]string(nil), p.Voice.Avoid...)
	p.ValueProps = append([]string(nil), p.ValueProps...)
	p.Keywords = append([]string(nil), p.Keywords...)
	return p
}

// ProfilePath resolves name to <dir>/<name>.yaml, or .yml when only that
// exists.
func ProfilePath(dir, name string) (string, error) {
	if !profileNamePattern.MatchString(name) {
		return "", apperr.Validation("invalid content draft request", apperr.Issue{
			Path:    "profile",
			Message: "must be a plain profile name matching " + profileNamePattern.String(),
		})
	}
	yamlPath := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	ymlPath := filepath.Join(dir, name+".yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath, nil
	}
	return yamlPath, nil
}

// ParseProfile decodes and checks a profile document. Unknown keys are
// rejected so typos surface instead of silently dropping copy.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, apperr.Validation("invalid brand profile", apperr.Issue{Message: err.Error()})
	}

	var issues []apperr.Issue
	if p.Name == "" {
		issues = append(issues, apperr.Issue{Path: "name", Message: "is required"})
	}
	if p.Brand.Name == "" {
		issues = append(issues, apperr.Issue{Path: "brand.name", Message: "is required"})
	}
	if p.CTA.Primary == "" {
		issues = append(issues, apperr.Issue{Path: "cta.primary", Message: "is required"})
	}
	if len(issues) > 0 {
		return nil, apperr.Validation("invalid brand profile", issues...)
	}
	return &p, nil
}

// LoadProfile reads and parses the profile at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Dependency(eris.Wrapf(err, "content: profile %s not found", filepath.Base(path)), path)
		}
		return nil, apperr.Dependency(eris.Wrap(err, "content: read profile"), path)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, eris.Wrapf(err, "content: profile %s", filepath.Base(path))
	}
	return p, nil
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	profile Profile
}

// ProfileCache memoizes parsed profiles keyed by path, modification time
// and size. A changed file is re-read on the next Get.
type ProfileCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

// NewProfileCache creates an empty cache.
func NewProfileCache() *ProfileCache {
	return &ProfileCache{entries: make(map[string]cacheEntry)}
}

// Get returns the profile at path, parsing it only when the file changed.
// The returned profile is a copy the caller may modify.
func (c *ProfileCache) Get(path string) (*Profile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LoadProfile(path)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.hits++
		p := e.profile.clone()
		return &p, nil
	}
	c.misses++
	p, err := LoadProfile(path)
	if err != nil {
		delete(c.entries, path)
		return nil, err
	}
	c.entries[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), profile: p.clone()}
	return p, nil
}

// Stats reports cache hits and misses.
func (c *ProfileCache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
