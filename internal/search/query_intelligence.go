package search

import (
	"strings"
	"unicode"
)

const maxVariants = 10

type QueryContext struct {
	Original   string
	Normalized string
	Variants   []string
}

// NormalizeQuery lower-cases input, keeps letters and digits and collapses
// everything else into single spaces.
func NormalizeQuery(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteByte(' ')
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ExpandQuery returns the normalized query followed by its synonym
// variants. A compact token such as "uiux" also matches the spaced
// synonym key "ui ux".
func ExpandQuery(normalized string) []string {
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return []string{}
	}

	out := make([]string, 0, maxVariants)
	seen := make(map[string]struct{}, maxVariants)
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(normalized)
	for _, syn := range GetSynonyms(normalized) {
		add(syn)
	}

	words := strings.Fields(normalized)
	withRest := func(head string, rest []string) string {
		if len(rest) == 0 {
			return head
		}
		return head + " " + strings.Join(rest, " ")
	}

	// leading phrase of one or two words
	for n := 1; n <= 2 && n <= len(words); n++ {
		phrase := strings.Join(words[:n], " ")
		if phrase == normalized {
			continue
		}
		for _, syn := range GetSynonyms(phrase) {
			add(withRest(syn, words[n:]))
		}
	}

	if len(words) > 0 {
		for key, syns := range Synonyms {
			if !strings.Contains(key, " ") || strings.ReplaceAll(key, " ", "") != words[0] {
				continue
			}
			add(withRest(key, words[1:]))
			for _, syn := range syns {
				add(withRest(syn, words[1:]))
			}
			break
		}
	}

	if len(out) > maxVariants {
		out = out[:maxVariants]
	}
	return out
}

func ProcessQuery(input string) QueryContext {
	qc := QueryContext{Original: input, Normalized: NormalizeQuery(input)}
	qc.Variants = ExpandQuery(qc.Normalized)
	return qc
}

// Terms are the distinct words of every variant. The candidate query
// matches any of them; ranking sorts the result out.
func (qc QueryContext) Terms() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(qc.Variants)*2)
	for _, v := range qc.Variants {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
		for _, w := range strings.Fields(v) {
			if len(w) < 2 {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}
