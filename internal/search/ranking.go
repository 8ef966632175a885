package search

import (
	"sort"
	"strings"

	"i4e-backend/internal/domain/career"
)

type CareerScore struct {
	CareerID   int64
	Relevance  float64
	Popularity float64
	FinalScore float64
}

// ComputeRelevance scores name matches above alias matches, and exact or
// prefix matches above substring matches. The result is capped at 10.
func ComputeRelevance(c career.Career, variants []string) float64 {
	name := NormalizeQuery(c.Name)
	if name == "" || len(variants) == 0 {
		return 0
	}
	aliases := make([]string, 0, len(c.OtherNames))
	for _, a := range c.OtherNames {
		if a = NormalizeQuery(a); a != "" {
			aliases = append(aliases, a)
		}
	}

	score := 0.0
	for i, v := range variants {
		v = NormalizeQuery(v)
		if v == "" {
			continue
		}
		weight := 1.0
		if i > 0 {
			weight = 0.6
		}
		switch {
		case name == v:
			score += 10 * weight
		case strings.HasPrefix(name, v):
			score += 6 * weight
		case strings.Contains(name, v):
			score += 3 * weight
		}
		for _, a := range aliases {
			if a == v || strings.Contains(a, v) {
				score += 2 * weight
				break
			}
		}
		if score >= 10 {
			return 10
		}
	}
	return score
}

func ScoreCareer(c career.Career, variants []string) CareerScore {
	rel := ComputeRelevance(c, variants)
	pop := 0.0
	if c.IsPopular {
		pop = 1
	}
	return CareerScore{
		CareerID:   c.ID,
		Relevance:  rel,
		Popularity: pop,
		FinalScore: rel*2 + pop,
	}
}

// RankCareers orders careers by score, dropping the ones nothing matched.
// Ties keep the input order.
func RankCareers(careers []career.Career, variants []string) []career.Career {
	type scored struct {
		idx   int
		rel   float64
		score float64
	}
	items := make([]scored, 0, len(careers))
	for i := range careers {
		s := ScoreCareer(careers[i], variants)
		if s.Relevance == 0 {
			continue
		}
		items = append(items, scored{idx: i, rel: s.Relevance, score: s.FinalScore})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].score > items[j].score
	})

	out := make([]career.Career, 0, len(items))
	for _, it := range items {
		out = append(out, careers[it.idx])
	}
	return out
}
