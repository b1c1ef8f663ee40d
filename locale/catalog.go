// Package locale provides the message catalog used to resolve the
// Integration label, role names and group descriptions per viewer locale.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-svaroles/pkg/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// DefaultMessagesPath is the bundled message file inside DefaultMessages.
const DefaultMessagesPath = "data/messages.json"

// DefaultMessages bundles the built-in translations.
//
//go:embed data/messages.json
var DefaultMessages embed.FS

// Catalog stores translations per language on top of an x/text catalog.
type Catalog struct {
	mu       sync.RWMutex
	builder  *catalog.Builder
	fallback language.Tag
	keys     map[language.Tag]map[string]struct{}
	matcher  language.Matcher
}

var _ types.LocalizerProvider = (*Catalog)(nil)

// New constructs an empty catalog. Lookups that miss the requested language
// fall back to the fallback language.
func New(fallback language.Tag) *Catalog {
	if fallback == language.Und {
		fallback = language.English
	}
	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(fallback)),
		fallback: fallback,
		keys:     make(map[language.Tag]map[string]struct{}),
	}
	c.matcher = language.NewMatcher([]language.Tag{fallback})
	return c
}

// NewDefault returns a catalog loaded with the bundled messages.
func NewDefault(fallback language.Tag) (*Catalog, error) {
	c := New(fallback)
	if err := c.LoadFS(DefaultMessages, DefaultMessagesPath); err != nil {
		return nil, err
	}
	return c, nil
}

// Set registers one translation.
func (c *Catalog) Set(tag language.Tag, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("locale: key required")
	}
	if err := c.builder.SetString(tag, key, strings.ReplaceAll(value, "%", "%%")); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.keys[tag]
	if !ok {
		set = make(map[string]struct{})
		c.keys[tag] = set
	}
	set[key] = struct{}{}
	c.rebuildMatcher()
	return nil
}

// LoadFS reads a JSON document of the form {"<bcp47>": {"key": "value"}}.
func (c *Catalog) LoadFS(fsys fs.FS, path string) error {
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	var doc map[string]map[string]string
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("locale: decode %s: %w", path, err)
	}
	for lang, messages := range doc {
		tag, err := language.Parse(lang)
		if err != nil {
			return fmt.Errorf("locale: %s: %w", path, err)
		}
		for key, value := range messages {
			if err := c.Set(tag, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Languages lists the languages with at least one message.
func (c *Catalog) Languages() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]language.Tag, 0, len(c.keys))
	for tag := range c.keys {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Localizer resolves the closest supported language for locale. Blank or
// unparsable locales use the fallback language.
func (c *Catalog) Localizer(locale string) types.Localizer {
	tag := c.fallback
	if locale = strings.TrimSpace(locale); locale != "" {
		if requested, err := language.Parse(locale); err == nil {
			c.mu.RLock()
			tag = c.match(requested)
			c.mu.RUnlock()
		}
	}
	return &Localizer{catalog: c, tag: tag}
}

func (c *Catalog) match(requested language.Tag) language.Tag {
	_, idx, confidence := c.matcher.Match(requested)
	if confidence == language.No {
		return c.fallback
	}
	tags := c.supported()
	if idx < 0 || idx >= len(tags) {
		return c.fallback
	}
	return tags[idx]
}

func (c *Catalog) rebuildMatcher() {
	c.matcher = language.NewMatcher(c.supported())
}

// supported returns the fallback first, then every other language sorted.
func (c *Catalog) supported() []language.Tag {
	tags := []language.Tag{c.fallback}
	others := make([]language.Tag, 0, len(c.keys))
	for tag := range c.keys {
		if tag != c.fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	return append(tags, others...)
}

func (c *Catalog) has(tag language.Tag, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.keys[tag][key]
	return ok
}

// Localizer translates keys for one resolved language.
type Localizer struct {
	catalog *Catalog
	tag     language.Tag
}

var _ types.Localizer = (*Localizer)(nil)

// Tag returns the resolved language.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Translate returns the message for key and whether one was registered for
// the resolved or fallback language.
func (l *Localizer) Translate(key string) (string, bool) {
	if l == nil || l.catalog == nil {
		return "", false
	}
	tag := l.tag
	if !l.catalog.has(tag, key) {
		tag = l.catalog.fallback
		if !l.catalog.has(tag, key) {
			return "", false
		}
	}
	printer := message.NewPrinter(tag, message.Catalog(l.catalog.builder))
	return printer.Sprintf(key), true
}
