package valuemodel

import (
	"github.com/gopcua/opcua/ua"
	"golang.org/x/text/language"
)

// LocalizedText mirrors ua.LocalizedText's (locale, text) pair; declared
// locally so this package doesn't need to assume the exact field set
// gopcua's wire struct carries beyond Locale/Text.
type LocalizedText struct {
	Locale string
	Text   string
}

// ReducePreferredLocale implements the preferred-locale selection of spec
// §3/§9: given a Variant of built-in type LocalizedText holding an array or
// matrix of translations, reduce it (shape-preserving for arrays/matrices,
// or pass through unchanged for a scalar) to the single translation that
// best matches preferredLocales, an ordered BCP-47 tag list. Falling back
// to the first translation when none match.
func ReducePreferredLocale(v *Variant, preferredLocales []string) *Variant {
	if v == nil || v.typ != TypeLocalizedText || v.shape == ShapeScalar {
		return v
	}
	matchers := make([]language.Tag, 0, len(preferredLocales))
	for _, l := range preferredLocales {
		if t, err := language.Parse(l); err == nil {
			matchers = append(matchers, t)
		}
	}
	elems := make([]any, len(v.elems))
	for i, e := range v.elems {
		elems[i] = pickLocale(e, matchers)
	}
	out := &Variant{typ: TypeLocalizedText, shape: v.shape, dims: v.dims, elems: elems}
	return out
}

func pickLocale(e any, matchers []language.Tag) LocalizedText {
	lts, ok := e.([]LocalizedText)
	if !ok || len(lts) == 0 {
		if lt, ok := e.(LocalizedText); ok {
			return lt
		}
		return LocalizedText{}
	}
	if len(matchers) == 0 {
		return lts[0]
	}
	tags := make([]language.Tag, 0, len(lts))
	for _, lt := range lts {
		t, err := language.Parse(lt.Locale)
		if err != nil {
			t = language.Und
		}
		tags = append(tags, t)
	}
	matcher := language.NewMatcher(tags)
	for _, pref := range matchers {
		_, idx, conf := matcher.Match(pref)
		if conf != language.No {
			return lts[idx]
		}
	}
	return lts[0]
}

// ToUA converts our LocalizedText into gopcua's wire type.
func (lt LocalizedText) ToUA() *ua.LocalizedText {
	return &ua.LocalizedText{Locale: lt.Locale, Text: lt.Text}
}

// MergeLocalizedText implements the WriteValue LT merge rule (spec §4.3):
// current and incoming must share shape; each incoming translation
// replaces the stored translation for the same locale iff that locale is
// in supportedLocales (nil/empty means "all accepted"). Returns false with
// BadLocaleNotSupported semantics (via the ok return) if any incoming
// locale isn't supported.
func MergeLocalizedText(current, incoming *Variant, supportedLocales []string) (*Variant, bool) {
	if current.shape != incoming.shape || current.Rank() != incoming.Rank() {
		return nil, false
	}
	for i := range current.dims {
		if current.dims[i] != incoming.dims[i] {
			return nil, false
		}
	}
	supported := func(locale string) bool {
		if len(supportedLocales) == 0 {
			return true
		}
		for _, s := range supportedLocales {
			if s == locale {
				return true
			}
		}
		return false
	}
	out := current.Copy()
	for i, inc := range incoming.elems {
		incLTs, ok := inc.([]LocalizedText)
		if !ok {
			continue
		}
		curLTs, _ := out.elems[i].([]LocalizedText)
		merged := make([]LocalizedText, len(curLTs))
		copy(merged, curLTs)
		for _, incLT := range incLTs {
			if !supported(incLT.Locale) {
				return nil, false
			}
			replaced := false
			for j := range merged {
				if merged[j].Locale == incLT.Locale {
					merged[j] = incLT
					replaced = true
					break
				}
			}
			if !replaced {
				merged = append(merged, incLT)
			}
		}
		out.elems[i] = merged
	}
	return out, true
}
