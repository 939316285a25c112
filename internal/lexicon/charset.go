package lexicon

// runeRange is an inclusive range of runes belonging to a token charset.
type runeRange struct {
	lo, hi rune
}

// Charset decides which runes count as word characters for a language's
// script. Runes outside the set act as token boundaries during matching.
type Charset struct {
	ranges []runeRange
}

// Contains reports whether r is a word character in this charset.
func (c *Charset) Contains(r rune) bool {
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// Base ranges shared by every charset: ASCII letters, digits and apostrophe.
// Accented Latin is included for all Latin-script languages so that a word
// like "bestämma" stays a single token instead of splitting around the
// diacritic and exposing a false "mma" boundary.
var baseLatin = []runeRange{
	{'a', 'z'},
	{'0', '9'},
	{'\'', '\''},
	{0x00C0, 0x024F}, // Latin-1 Supplement + Extended-A/B
}

var scriptExtras = map[string][]runeRange{
	"cyrillic": {{0x0400, 0x04FF}, {0x0500, 0x052F}},
	"greek":    {{0x0370, 0x03FF}, {0x1F00, 0x1FFF}},
	"armenian": {{0x0530, 0x058F}},
	"hebrew":   {{0x0590, 0x05FF}},
	"arabic":   {{0x0600, 0x06FF}, {0x0750, 0x077F}, {0x08A0, 0x08FF}},
	"devanagari": {
		{0x0900, 0x097F},
	},
	"bengali":  {{0x0980, 0x09FF}},
	"gurmukhi": {{0x0A00, 0x0A7F}},
	"gujarati": {{0x0A80, 0x0AFF}},
	"tamil":    {{0x0B80, 0x0BFF}},
	"telugu":   {{0x0C00, 0x0C7F}},
	"thai":     {{0x0E00, 0x0E7F}},
	"georgian": {{0x10A0, 0x10FF}},
	"cjk": {
		{0x3040, 0x309F}, // hiragana
		{0x30A0, 0x30FF}, // katakana
		{0x3400, 0x4DBF},
		{0x4E00, 0x9FFF},
	},
	"hangul": {{0x1100, 0x11FF}, {0x3130, 0x318F}, {0xAC00, 0xD7AF}},
}

// languageScripts maps a language code to the extra script blocks its
// charset carries on top of the Latin base. Latin-script languages map to
// nil and use the base alone.
var languageScripts = map[string][]string{
	"en": nil, "es": nil, "fr": nil, "de": nil, "pt": nil, "it": nil,
	"nl": nil, "sv": nil, "no": nil, "da": nil, "fi": nil, "pl": nil,
	"cs": nil, "ro": nil, "hu": nil, "tr": nil, "vi": nil, "tl": nil,
	"id": nil, "ms": nil,
	"ru": {"cyrillic"}, "uk": {"cyrillic"}, "bg": {"cyrillic"},
	"sr": {"cyrillic"}, "kk": {"cyrillic"},
	"el": {"greek"},
	"hy": {"armenian"},
	"he": {"hebrew"},
	"ar": {"arabic"}, "fa": {"arabic"}, "ur": {"arabic"},
	"hi": {"devanagari"}, "mr": {"devanagari"}, "ne": {"devanagari"},
	"bn": {"bengali"},
	"pa": {"gurmukhi"},
	"gu": {"gujarati"},
	"ta": {"tamil"},
	"te": {"telugu"},
	"th": {"thai"},
	"ka": {"georgian"},
	"ja": {"cjk"}, "zh": {"cjk"},
	"ko": {"hangul"},
}

// CharsetFor returns the token charset for a language code. Unknown
// languages get the Latin base.
func CharsetFor(language string) *Charset {
	ranges := append([]runeRange{}, baseLatin...)
	for _, script := range languageScripts[language] {
		ranges = append(ranges, scriptExtras[script]...)
	}
	return &Charset{ranges: ranges}
}

// UniversalCharset returns the union of every script block. The
// language-agnostic matcher uses it so keywords from any language tokenize
// the same way they would under their own charset.
func UniversalCharset() *Charset {
	cs := &Charset{ranges: append([]runeRange{}, baseLatin...)}
	for _, name := range []string{
		"cyrillic", "greek", "armenian", "hebrew", "arabic", "devanagari",
		"bengali", "gurmukhi", "gujarati", "tamil", "telugu", "thai",
		"georgian", "cjk", "hangul",
	} {
		cs.ranges = append(cs.ranges, scriptExtras[name]...)
	}
	return cs
}
