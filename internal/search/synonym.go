package search

// Synonyms maps a normalized query to the career names people usually mean
// by it.
var Synonyms = map[string][]string{
	"doctor":       {"physician", "medical officer", "surgeon"},
	"ca":           {"chartered accountant", "accountant"},
	"cs":           {"company secretary"},
	"it":           {"software engineer", "software developer"},
	"coder":        {"software developer", "programmer"},
	"lawyer":       {"advocate", "legal advisor"},
	"teacher":      {"lecturer", "professor", "educator"},
	"pilot":        {"commercial pilot", "airline pilot"},
	"ias":          {"civil servant", "administrative officer"},
	"vet":          {"veterinarian", "veterinary doctor"},
	"data science": {"data scientist", "data analyst"},
	"ui ux":        {"ux designer", "ui designer", "product designer"},
}

func GetSynonyms(query string) []string {
	if query == "" {
		return []string{}
	}
	v, ok := Synonyms[query]
	if !ok {
		return []string{}
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
