// Package caption extracts structured movie metadata from post captions
// Captions are loosely formatted free text mixing Portuguese labels, emoji
// markers, and hashtag lists; extraction is best effort and never fails
package caption

import (
	"strings"

	pstrings "cinegram/internal/platform/strings"
)

// Content is the structured view of a caption
// Scalar fields are nil when the caption never mentioned them; list fields
// are always non-nil so JSON renders [] rather than null
type Content struct {
	Title            *string  `json:"title"`
	ReleaseDate      *string  `json:"release_date"`
	CountryOfOrigin  []string `json:"country_of_origin"`
	FlagsOfOrigin    []string `json:"flags_of_origin"`
	Directors        []string `json:"directors"`
	Writers          []string `json:"writers"`
	Cast             []string `json:"cast"`
	Languages        []string `json:"languages"`
	FlagsOfLanguage  []string `json:"flags_of_language"`
	Subtitles        []string `json:"subtitles"`
	FlagsOfSubtitles []string `json:"flags_of_subtitles"`
	Genres           []string `json:"genres"`
	Tags             []string `json:"tags"`
	Synopsis         *string  `json:"synopsis"`
	Curiosities      *string  `json:"curiosities"`
}

func newContent() Content {
	return Content{
		CountryOfOrigin:  []string{},
		FlagsOfOrigin:    []string{},
		Directors:        []string{},
		Writers:          []string{},
		Cast:             []string{},
		Languages:        []string{},
		FlagsOfLanguage:  []string{},
		Subtitles:        []string{},
		FlagsOfSubtitles: []string{},
		Genres:           []string{},
		Tags:             []string{},
	}
}

// section boundary strings that close an open multiline field even when the
// line is not a recognized field label
var terminators = []string{
	"▶",
	"▶️",
	"Para outros conteúdos",
	"💡 Curiosidades:",
	"🥇 Prêmios:",
	"🥈 Prêmios:",
	"Prêmios:",
	"Clique Para Entrar",
	"🚨 Para outros conteúdos",
	"📣 Idiomas:",
	"💬 Legendado:",
	"📣",
	"💬",
	"#",
	"✨ Elenco:",
}

// Parse runs the line-oriented field matcher over text
// Unrecognized or malformed captions degrade to empty fields, never errors
func Parse(text string) Content {
	c := newContent()

	var cur *fieldDef
	var buf []string

	closeField := func() {
		cur.assign(&c, strings.TrimSpace(strings.Join(buf, " ")))
		cur = nil
		buf = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if cur != nil {
			if startsField(line) || matchesAnyLabel(line, terminators) {
				// close the open field and re-process this same line below
				closeField()
			} else {
				buf = append(buf, line)
				continue
			}
		}

		if strings.HasPrefix(line, "#") {
			c.Tags = append(c.Tags, pstrings.SplitHash(line)...)
			continue
		}

		for i := range fieldDefs {
			d := &fieldDefs[i]
			m := d.match(line)
			if m == nil {
				continue
			}
			if d.multiline {
				cur = d
				buf = nil
				if seed := strings.TrimSpace(m[1]); seed != "" {
					buf = append(buf, seed)
				}
			} else {
				d.process(m, &c)
			}
			break
		}
	}

	if cur != nil {
		closeField()
	}

	return c
}

// startsField reports whether the line contains any field label
func startsField(line string) bool {
	for i := range fieldDefs {
		if matchesAnyLabel(line, fieldDefs[i].labels) {
			return true
		}
	}
	return false
}

// matchesAnyLabel is a substring test: historical captions prepend arbitrary
// pictograms before labels, so anchoring to line start would miss them
func matchesAnyLabel(line string, labels []string) bool {
	for _, l := range labels {
		if strings.Contains(line, l) {
			return true
		}
	}
	return false
}
