// Package i18n loads the storefront's message catalog. The storefront serves a
// single locale per process; missing keys fall back to the French catalog and
// finally to the key itself.
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const fallbackLang = "fr"

// Catalog holds the messages of one locale.
type Catalog struct {
	tag      language.Tag
	dict     map[string]string
	fallback map[string]string
	printer  *message.Printer
}

// Load reads <base>.json for locale from fsys, plus fr.json as fallback.
func Load(fsys fs.FS, locale string) (*Catalog, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	fallback, err := readDict(fsys, fallbackLang)
	if err != nil {
		return nil, fmt.Errorf("load fallback locale %s: %w", fallbackLang, err)
	}
	c := &Catalog{
		tag:      tag,
		dict:     fallback,
		fallback: fallback,
		printer:  message.NewPrinter(tag),
	}
	base, _ := tag.Base()
	if base.String() != fallbackLang {
		// a locale without its own file is served from the fallback catalog
		if dict, err := readDict(fsys, base.String()); err == nil {
			c.dict = dict
		}
	}
	return c, nil
}

func readDict(fsys fs.FS, lang string) (map[string]string, error) {
	raw, err := fs.ReadFile(fsys, lang+".json")
	if err != nil {
		return nil, err
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", lang, err)
	}
	return m, nil
}

// Tag returns the catalog locale.
func (c *Catalog) Tag() language.Tag { return c.tag }

// T returns the message for key. With args, the message is used as a format
// string and rendered with locale-aware number formatting.
func (c *Catalog) T(key string, args ...any) string {
	msg, ok := c.dict[key]
	if !ok {
		msg, ok = c.fallback[key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return c.printer.Sprintf(msg, args...)
}
