package pipeline

import (
	"context"
	"errors"
	"testing"

	"i4e-backend/internal/domain/career"

	"github.com/stretchr/testify/require"
)

func TestResolve_ExistingNameIsNotDuplicated(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	first := NewEntityResolver(store).Resolve(ctx, career.KindCompany, "Infosys", nil, 7)
	second := NewEntityResolver(store).Resolve(ctx, career.KindCompany, " Infosys ", nil, 7)

	require.True(t, first.Resolved())
	require.Equal(t, *first.ID, *second.ID)
	require.Equal(t, 1, store.count(career.KindCompany))
}

func TestResolve_MemoizesWithinUpload(t *testing.T) {
	store := newFakeStore()
	r := NewEntityResolver(store)
	ctx := context.Background()

	r.Resolve(ctx, career.KindExam, "JEE", nil, 1)
	r.Resolve(ctx, career.KindExam, "JEE", nil, 1)
	r.Resolve(ctx, career.KindCompany, "JEE", nil, 1)

	require.Equal(t, 2, store.creates)
}

func TestResolve_NameIsCaseSensitiveAndQuoteSafe(t *testing.T) {
	store := newFakeStore()
	r := NewEntityResolver(store)
	ctx := context.Background()

	a := r.Resolve(ctx, career.KindPersonality, "Dr. A.P.J. Abdul Kalam", nil, 1)
	b := r.Resolve(ctx, career.KindPersonality, "dr. a.p.j. abdul kalam", nil, 1)
	c := r.Resolve(ctx, career.KindPersonality, "O'Neil' OR '1'='1", nil, 1)

	require.NotEqual(t, *a.ID, *b.ID)
	require.True(t, c.Resolved())
	require.Equal(t, "O'Neil' OR '1'='1", c.Name)
	require.Equal(t, 3, store.count(career.KindPersonality))
}

func TestResolve_FailureIsExplicit(t *testing.T) {
	store := newFakeStore()
	store.fail["Broken Co"] = errors.New("no rows affected")
	r := NewEntityResolver(store)

	refs := r.ResolveAll(context.Background(), career.KindCompany, []string{"Good Co", "Broken Co", ""}, 1)
	require.Len(t, refs, 3)
	require.True(t, refs[0].Resolved())
	require.False(t, refs[1].Resolved())
	require.Equal(t, "no rows affected", refs[1].Err)
	require.False(t, refs[2].Resolved())

	require.Equal(t, []int64{*refs[0].ID}, IDs(refs))
	require.Len(t, unresolved(refs), 2)
}

func TestResolveSkills_Hierarchy(t *testing.T) {
	store := newFakeStore()
	r := NewEntityResolver(store)

	cats, skills := r.ResolveSkills(context.Background(), ParseSkills("Tech||Programming:Python,Java|Design:Figma"), 1)

	require.Len(t, skills, 3)
	require.Len(t, IDs(skills), 3)
	require.Equal(t, 3, store.count(career.KindSkillCategory))
	require.Len(t, cats, 3)

	parentID := store.id(career.KindSkillCategory, "Tech")
	require.Nil(t, store.parents[parentID])
	for _, sub := range []string{"Programming", "Design"} {
		subID := store.id(career.KindSkillCategory, sub)
		require.NotNil(t, store.parents[subID])
		require.Equal(t, parentID, *store.parents[subID])
	}

	progID := store.id(career.KindSkillCategory, "Programming")
	require.Equal(t, progID, *store.parents[store.id(career.KindSkill, "Python")])
	require.Equal(t, progID, *store.parents[store.id(career.KindSkill, "Java")])
	require.Equal(t, store.id(career.KindSkillCategory, "Design"), *store.parents[store.id(career.KindSkill, "Figma")])
}

func TestResolveSkills_FlatSkillsUseParent(t *testing.T) {
	store := newFakeStore()
	r := NewEntityResolver(store)

	_, skills := r.ResolveSkills(context.Background(), ParseSkills("Soft||Listening,Empathy"), 1)
	require.Len(t, skills, 2)
	parentID := store.id(career.KindSkillCategory, "Soft")
	require.Equal(t, parentID, *store.parents[*skills[0].ID])
}
