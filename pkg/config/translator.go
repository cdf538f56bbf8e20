package config

import (
	"fmt"
	"os"

	"golang.org/x/text/language"

	"github.com/matzehuels/selecttree/pkg/cache"
	errs "github.com/matzehuels/selecttree/pkg/errors"
	"github.com/matzehuels/selecttree/pkg/i18n"
)

// Translator builds the translation normalizer described by c, along with
// a key identifying it for the result cache. It returns nil and "" when no
// catalog is configured.
func (c I18nConfig) Translator() (*i18n.Translator, string, error) {
	if !c.Enabled() {
		return nil, "", nil
	}
	tag, err := language.Parse(c.Language)
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidConfig, err, "i18n.language")
	}

	data, err := os.ReadFile(c.Catalog)
	if os.IsNotExist(err) {
		return nil, "", errs.Wrap(errs.ErrCodeFileNotFound, err, "i18n catalog %s", c.Catalog)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read catalog: %w", err)
	}
	cat, err := i18n.LoadCatalog(c.Catalog)
	if err != nil {
		return nil, "", errs.Wrap(errs.ErrCodeInvalidConfig, err, "i18n catalog %s", c.Catalog)
	}

	marker := c.Marker
	if marker == "" {
		marker = i18n.DefaultMarker
	}
	t := i18n.New(cat, tag, i18n.WithMarker(marker))
	key := fmt.Sprintf("%s|%s|%s", marker, t.Language(), cache.Hash(data))
	return t, key, nil
}
