// Package i18n resolves marker-prefixed names through a message catalog.
//
// Names that start with the marker (default "T:") are treated as message
// keys: the marker is stripped and the remainder is looked up for the
// configured language. Unknown keys fall back to the remainder itself, and
// names without the marker pass through untouched.
//
//	cat, _ := i18n.LoadCatalog("messages.toml")
//	tr := i18n.New(cat, language.German)
//	tr.Transform("T:category.phones") // "Telefone"
//	tr.Transform("Plain name")        // "Plain name"
//
// Both [Translator] and [Func] satisfy tree.NameTransform, so either can be
// plugged in as a tree normalizer.
package i18n

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/matzehuels/selecttree/pkg/tree"
)

// DefaultMarker is the prefix that flags a name as a message key.
const DefaultMarker = "T:"

// Translator looks marker-prefixed names up in a catalog.
// It is safe for concurrent use.
type Translator struct {
	marker  string
	tag     language.Tag
	printer *message.Printer
}

// Option configures a [Translator].
type Option func(*Translator)

// WithMarker overrides [DefaultMarker].
func WithMarker(marker string) Option {
	return func(t *Translator) {
		if marker != "" {
			t.marker = marker
		}
	}
}

// New creates a translator for tag. When cat is a *catalog.Builder the tag
// is first matched against the catalog's languages, so "de-AT" resolves to
// "de" messages.
func New(cat catalog.Catalog, tag language.Tag, opts ...Option) *Translator {
	if b, ok := cat.(*catalog.Builder); ok {
		tag = matchTag(b, tag)
	}
	t := &Translator{
		marker:  DefaultMarker,
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(cat)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Language returns the tag messages are resolved for.
func (t *Translator) Language() language.Tag { return t.tag }

// Marker returns the configured marker.
func (t *Translator) Marker() string { return t.marker }

// Transform implements tree.NameTransform.
func (t *Translator) Transform(name string) string {
	key, ok := strings.CutPrefix(name, t.marker)
	if !ok {
		return name
	}
	return t.printer.Sprintf(message.Key(key, escape(key)))
}

var _ tree.NameTransform = (*Translator)(nil)

// Func adapts an arbitrary lookup service to the marker convention.
// lookup reports false for unknown keys, in which case the key is returned.
func Func(marker string, lookup func(key string) (string, bool)) tree.NameTransform {
	if marker == "" {
		marker = DefaultMarker
	}
	return tree.TransformFunc(func(name string) string {
		key, ok := strings.CutPrefix(name, marker)
		if !ok {
			return name
		}
		if msg, found := lookup(key); found {
			return msg
		}
		return key
	})
}

// LoadCatalog reads a TOML catalog file. See [ParseCatalog] for the format.
func LoadCatalog(path string) (*catalog.Builder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// ParseCatalog decodes a TOML catalog with one table per language:
//
//	[en]
//	"category.phones" = "Phones"
//
//	[de]
//	"category.phones" = "Telefone"
//
// Messages are literal text; percent signs are not format verbs.
func ParseCatalog(r io.Reader) (*catalog.Builder, error) {
	var raw map[string]map[string]string
	if _, err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return BuildCatalog(raw)
}

// BuildCatalog creates a catalog from language → key → message maps.
func BuildCatalog(messages map[string]map[string]string) (*catalog.Builder, error) {
	b := catalog.NewBuilder()
	langs := make([]string, 0, len(messages))
	for lang := range messages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	for _, lang := range langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", lang, err)
		}
		for key, msg := range messages[lang] {
			if err := b.SetString(tag, key, escape(msg)); err != nil {
				return nil, fmt.Errorf("set %s/%s: %w", lang, key, err)
			}
		}
	}
	return b, nil
}

func matchTag(b *catalog.Builder, tag language.Tag) language.Tag {
	langs := b.Languages()
	if len(langs) == 0 {
		return tag
	}
	_, idx, conf := language.NewMatcher(langs).Match(tag)
	if conf == language.No {
		return tag
	}
	return langs[idx]
}

// escape keeps text literal when it is used as a printf format.
func escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}
