package crawler

import (
	"strings"

	"golang.org/x/text/language"
)

// languageMarkers are common words of university sites, per language code.
// Detection counts how many markers of each language occur in the text.
var languageMarkers = []struct {
	code  string
	words []string
}{
	{"es", []string{"universidad", "investigación", "ciencia", "estudiantes", "facultad"}},
	{"ca", []string{"universitat", "investigació", "ciència", "estudiants", "facultat"}},
	{"en", []string{"university", "research", "science", "students", "faculty"}},
	{"pt", []string{"universidade", "pesquisa", "ciência", "estudantes", "faculdade"}},
	{"fr", []string{"université", "recherche", "science", "étudiants", "faculté"}},
	{"it", []string{"università", "ricerca", "scienza", "studenti", "facoltà"}},
}

// DetectLanguage returns the main language of a page as a lower-case code.
// The base language of the lang attribute wins ("es-ES" and "spa" give "es");
// an attribute that is not a valid tag, or has no explicit language, is ignored.
// Otherwise the language with the most marker words present is returned,
// the first in es, ca, en, pt, fr, it order on ties. It returns "" when
// nothing matches.
func DetectLanguage(doc *Document) string {
	if doc == nil {
		return ""
	}
	if lang := baseLanguage(doc.Lang); lang != "" {
		return lang
	}
	return detectByMarkers(doc.Text)
}

// baseLanguage returns the base language of a BCP 47 tag, or "" when the
// tag does not parse or only a guessed base is available (und, x-private).
func baseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	base, conf := t.Base()
	if conf != language.Exact {
		return ""
	}
	return base.String()
}

func detectByMarkers(text string) string {
	text = fold(text)
	best, bestScore := "", 0
	for _, lm := range languageMarkers {
		score := 0
		for _, w := range lm.words {
			if strings.Contains(text, fold(w)) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = lm.code, score
		}
	}
	return best
}
