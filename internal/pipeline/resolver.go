package pipeline

import (
	"context"
	"strings"
	"sync"

	"i4e-backend/internal/domain/career"
)

// EntityCreator creates, or returns the existing active, reference row with
// the given name. It is the same operation the admin API exposes.
type EntityCreator interface {
	CreateByName(ctx context.Context, kind career.EntityKind, name string, parentID *int64, userID int64) (int64, error)
}

// ResolvedRef is the outcome of resolving one name. ID is nil when the name
// could not be resolved; Err then says why.
type ResolvedRef struct {
	Kind career.EntityKind `json:"kind"`
	Name string            `json:"name"`
	ID   *int64            `json:"id"`
	Err  string            `json:"error,omitempty"`
}

func (r ResolvedRef) Resolved() bool { return r.ID != nil }

// EntityResolver resolves names for one upload. Results are memoized per
// kind and exact name, so a name shared by many rows costs one round trip.
type EntityResolver struct {
	creator EntityCreator

	mu   sync.Mutex
	memo map[resolveKey]int64
}

type resolveKey struct {
	kind career.EntityKind
	name string
}

func NewEntityResolver(creator EntityCreator) *EntityResolver {
	return &EntityResolver{creator: creator, memo: make(map[resolveKey]int64)}
}

func (r *EntityResolver) Resolve(ctx context.Context, kind career.EntityKind, name string, parentID *int64, userID int64) ResolvedRef {
	name = strings.TrimSpace(name)
	ref := ResolvedRef{Kind: kind, Name: name}
	if name == "" {
		ref.Err = "empty name"
		return ref
	}

	key := resolveKey{kind: kind, name: name}
	r.mu.Lock()
	id, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		ref.ID = &id
		return ref
	}

	id, err := r.creator.CreateByName(ctx, kind, name, parentID, userID)
	if err != nil {
		ref.Err = err.Error()
		return ref
	}
	if id <= 0 {
		ref.Err = "no identifier returned"
		return ref
	}

	r.mu.Lock()
	r.memo[key] = id
	r.mu.Unlock()
	ref.ID = &id
	return ref
}

func (r *EntityResolver) ResolveAll(ctx context.Context, kind career.EntityKind, names []string, userID int64) []ResolvedRef {
	out := make([]ResolvedRef, 0, len(names))
	for _, n := range names {
		out = append(out, r.Resolve(ctx, kind, n, nil, userID))
	}
	return out
}

// ResolveSkills walks the skill grammar: parent categories first, then their
// sub-categories, then leaf skills filed under the nearest category.
func (r *EntityResolver) ResolveSkills(ctx context.Context, groups []SkillGroup, userID int64) (categories, skills []ResolvedRef) {
	categories = make([]ResolvedRef, 0)
	skills = make([]ResolvedRef, 0)
	for _, g := range groups {
		parent := r.Resolve(ctx, career.KindSkillCategory, g.Parent, nil, userID)
		categories = append(categories, parent)

		for _, child := range g.Children {
			owner := parent
			if child.SubCategory != "" {
				owner = r.Resolve(ctx, career.KindSkillCategory, child.SubCategory, parent.ID, userID)
				categories = append(categories, owner)
			}
			for _, s := range child.Skills {
				skills = append(skills, r.Resolve(ctx, career.KindSkill, s, owner.ID, userID))
			}
		}
	}
	return categories, skills
}

// IDs returns the identifiers of resolved refs, in order, skipping the rest.
func IDs(refs []ResolvedRef) []int64 {
	out := make([]int64, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))
	for _, r := range refs {
		if r.ID == nil {
			continue
		}
		if _, dup := seen[*r.ID]; dup {
			continue
		}
		seen[*r.ID] = struct{}{}
		out = append(out, *r.ID)
	}
	return out
}

func unresolved(groups ...[]ResolvedRef) []ResolvedRef {
	out := make([]ResolvedRef, 0)
	for _, g := range groups {
		for _, r := range g {
			if !r.Resolved() {
				out = append(out, r)
			}
		}
	}
	return out
}
