package caption

import (
	"regexp"
	"strings"
	"unicode"

	pstrings "cinegram/internal/platform/strings"
)

// fieldDef is one declarative extraction rule. labels drive new-field
// detection inside multiline blocks; patterns capture the value text
type fieldDef struct {
	name      string
	labels    []string
	patterns  []*regexp.Regexp
	process   func(m []string, c *Content)
	multiline bool
	assign    func(c *Content, joined string)
}

func (d *fieldDef) match(line string) []string {
	for _, re := range d.patterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m
		}
	}
	return nil
}

// declaration order matters: the first matching definition wins per line
var fieldDefs = []fieldDef{
	{
		name:     "title",
		labels:   []string{"📺", "Título:"},
		patterns: compile(`^.*?(?:📺|Título:)\s*(.*?)(?:\s*[-—:]?\s*#(\d{4})y?)?$`),
		process:  processTitle,
	},
	{
		name:     "country_of_origin",
		labels:   []string{"País de Origem:", "📍 País de Origem:", "Pais de Origem:"},
		patterns: compile(`^.*?Pa[íi]s de Origem:\s*(.*)$`),
		process:  processOrigin,
	},
	{
		name:     "directors",
		labels:   []string{"Direção:", "Diretor:", "👑 Direção:", "👑 Direção/Roteiro:"},
		patterns: compile(`^.*?(?:Direção|Diretor|Direção/Roteiro):\s*(.*)$`),
		process:  processDirectors,
	},
	{
		name:     "writers",
		labels:   []string{"Roteiro:", "Roteirista:", "Roteiristas:", "✏️ Roteirista:", "✏️ Roteiristas:"},
		patterns: compile(`^.*?(?:Roteiro|Roteirista|Roteiristas):\s*(.*)$`),
		process: func(m []string, c *Content) {
			c.Writers = append(c.Writers, pstrings.SplitHash(m[1])...)
		},
	},
	{
		name:     "cast",
		labels:   []string{"Elenco:", "✨ Elenco:"},
		patterns: compile(`^.*?Elenco:\s*(.*)$`),
		process: func(m []string, c *Content) {
			c.Cast = pstrings.SplitHash(m[1])
		},
	},
	{
		name:     "languages",
		labels:   []string{"Idioma:", "Idiomas:", "📣 Idiomas:", "💬 Idiomas:"},
		patterns: compile(`^.*?(?:Idiomas?|Idioma):\s*(.*)$`),
		process: func(m []string, c *Content) {
			c.Languages, c.FlagsOfLanguage = glyphList(m[1])
		},
	},
	{
		name:     "subtitles",
		labels:   []string{"Legenda:", "Legendado:", "💬 Legendado:"},
		patterns: compile(`^.*?(?:Legenda|Legendado):\s*(.*)$`),
		process: func(m []string, c *Content) {
			c.Subtitles, c.FlagsOfSubtitles = glyphList(m[1])
		},
	},
	{
		name:     "genres",
		labels:   []string{"Gênero:", "Gêneros:", "🎭 Gêneros:"},
		patterns: compile(`^.*?(?:Gêneros?|Gênero):\s*(.*)$`),
		process: func(m []string, c *Content) {
			c.Genres = pstrings.SplitHash(m[1])
		},
	},
	{
		name:      "synopsis",
		labels:    []string{"Sinopse", "🗣 Sinopse:", "🗣 Sinopse"},
		patterns:  compile(`^.*?(?:Sinopse|🗣 Sinopse)[:：]?\s*(.*)$`),
		multiline: true,
		assign:    func(c *Content, joined string) { c.Synopsis = &joined },
	},
	{
		name:      "curiosities",
		labels:    []string{"Curiosidades:", "💡 Curiosidades:"},
		patterns:  compile(`^.*?Curiosidades[:：]?\s*(.*)$`),
		multiline: true,
		assign:    func(c *Content, joined string) { c.Curiosities = &joined },
	},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

func processTitle(m []string, c *Content) {
	// when the pictogram satisfied the alternation the text label is still
	// inside the capture; strip it so both markers yield the same title
	t := strings.TrimSpace(m[1])
	t = strings.TrimSpace(strings.TrimPrefix(t, "Título:"))
	c.Title = &t
	if m[2] != "" {
		y := m[2]
		c.ReleaseDate = &y
	}
}

func processOrigin(m []string, c *Content) {
	c.CountryOfOrigin, c.FlagsOfOrigin = []string{}, []string{}
	for _, item := range pstrings.SplitPipe(m[1]) {
		flags, name := splitGlyphs(item)
		if flags != "" {
			c.FlagsOfOrigin = append(c.FlagsOfOrigin, flags)
		}
		name = strings.TrimPrefix(name, "#")
		if name != "" {
			c.CountryOfOrigin = append(c.CountryOfOrigin, name)
		}
	}
}

// processDirectors routes the combined direction/script label to both lists
func processDirectors(m []string, c *Content) {
	names := pstrings.SplitHash(m[1])
	c.Directors = append(c.Directors, names...)
	if strings.Contains(m[0], "Direção/Roteiro") {
		c.Writers = append(c.Writers, names...)
	}
}

// glyphList splits a |-delimited list into parallel name and flag slices
func glyphList(s string) (names, flags []string) {
	names, flags = []string{}, []string{}
	for _, item := range pstrings.SplitPipe(s) {
		f, name := splitGlyphs(item)
		if f != "" {
			flags = append(flags, f)
		}
		name = strings.ReplaceAll(name, "#", "")
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names, flags
}

// splitGlyphs separates pictographic runes from the textual remainder
func splitGlyphs(s string) (glyphs, text string) {
	var g, t strings.Builder
	for _, r := range s {
		if isGlyph(r) {
			g.WriteRune(r)
		} else {
			t.WriteRune(r)
		}
	}
	return g.String(), strings.TrimSpace(t.String())
}

// isGlyph treats symbol-category runes and regional indicators (flag pairs)
// as pictographic, never as part of a name
func isGlyph(r rune) bool {
	if unicode.Is(unicode.So, r) {
		return true
	}
	return r >= 0x1F1E6 && r <= 0x1F1FF
}
