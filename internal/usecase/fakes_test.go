package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"i4e-backend/internal/domain/career"
	"i4e-backend/internal/domain/transaction"
	"i4e-backend/internal/domain/user"
	"i4e-backend/internal/infrastructure/storage"
	"i4e-backend/internal/repository"
)

type fakeCareerRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]career.Career
	links   map[int64]career.Details
	deleted []int64
	saveErr error
	onSave  func()

	categorySlugs map[int64]string
}

func newFakeCareerRepo() *fakeCareerRepo {
	return &fakeCareerRepo{
		rows:          map[int64]career.Career{},
		links:         map[int64]career.Details{},
		categorySlugs: map[int64]string{},
	}
}

func (r *fakeCareerRepo) Save(ctx context.Context, d career.Details, userID int64) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if r.onSave != nil {
		r.onSave()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return 0, false, r.saveErr
	}
	slug := career.Slugify(d.CareerName)
	for id, c := range r.rows {
		if c.Slug == slug && c.IsActive {
			c.Name = d.CareerName
			c.CategoryID = d.CareerCategoryID
			c.OtherNames = d.OtherNames
			r.rows[id] = c
			r.links[id] = d
			return id, false, nil
		}
	}
	r.nextID++
	r.rows[r.nextID] = career.Career{
		ID:         r.nextID,
		Name:       d.CareerName,
		Slug:       slug,
		CategoryID: d.CareerCategoryID,
		OtherNames: d.OtherNames,
		IsActive:   true,
	}
	r.links[r.nextID] = d
	return r.nextID, true, nil
}

func (r *fakeCareerRepo) Update(_ context.Context, d career.Details, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[d.CareerID]
	if !ok {
		return career.ErrNotFound
	}
	c.Name = d.CareerName
	r.rows[d.CareerID] = c
	r.links[d.CareerID] = d
	return nil
}

func (r *fakeCareerRepo) Deactivate(_ context.Context, id, _ int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return career.ErrNotFound
	}
	c.IsActive = false
	r.rows[id] = c
	return nil
}

func (r *fakeCareerRepo) TogglePopular(_ context.Context, id, _ int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return false, career.ErrNotFound
	}
	c.IsPopular = !c.IsPopular
	r.rows[id] = c
	return c.IsPopular, nil
}

func (r *fakeCareerRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	delete(r.links, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeCareerRepo) GetBySlug(_ context.Context, slug string) (career.Career, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.rows {
		if c.Slug == slug && c.IsActive {
			return c, nil
		}
	}
	return career.Career{}, career.ErrNotFound
}

func (r *fakeCareerRepo) GetLinks(_ context.Context, id int64) (repository.CareerLinks, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.links[id]
	refs := func(ids []int64) []career.Reference {
		out := make([]career.Reference, 0, len(ids))
		for _, id := range ids {
			out = append(out, career.Reference{ID: id, IsActive: true})
		}
		return out
	}
	return repository.CareerLinks{
		Skills:        refs(d.CareerSkillIDs),
		Institutes:    refs(d.InstituteIDs),
		Exams:         refs(d.ExamIDs),
		Companies:     refs(d.CompanyIDs),
		Personalities: refs(d.PersonalityIDs),
	}, nil
}

func (r *fakeCareerRepo) List(_ context.Context, onlyActive bool) ([]career.Career, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []career.Career{}
	for id := int64(1); id <= r.nextID; id++ {
		c, ok := r.rows[id]
		if !ok || (onlyActive && !c.IsActive) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCareerRepo) ListByCategorySlug(ctx context.Context, slug string) ([]career.Career, error) {
	all, _ := r.List(ctx, true)
	out := []career.Career{}
	for _, c := range all {
		if c.CategoryID != nil && r.categorySlugs[*c.CategoryID] == slug {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCareerRepo) SearchCandidates(ctx context.Context, terms []string, limit int) ([]career.Career, error) {
	all, _ := r.List(ctx, true)
	out := []career.Career{}
	for _, c := range all {
		name := strings.ToLower(c.Name + " " + strings.Join(c.OtherNames, " "))
		for _, t := range terms {
			if strings.Contains(name, t) {
				out = append(out, c)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeCareerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type fakeDocRepo struct {
	mu        sync.Mutex
	docs      map[int64]career.Document
	upsertErr error
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[int64]career.Document{}}
}

func (r *fakeDocRepo) Upsert(_ context.Context, doc career.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.docs[doc.CareerID] = doc
	return nil
}

func (r *fakeDocRepo) Get(_ context.Context, id int64) (career.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return career.Document{}, career.ErrNotFound
	}
	return d, nil
}

func (r *fakeDocRepo) GetMany(_ context.Context, ids []int64) (map[int64]career.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[int64]career.Document{}
	for _, id := range ids {
		if d, ok := r.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (r *fakeDocRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

func (r *fakeDocRepo) SetYoutubeLinks(_ context.Context, id int64, links []career.YoutubeLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return career.ErrNotFound
	}
	d.YoutubeLink = links
	r.docs[id] = d
	return nil
}

func (r *fakeDocRepo) PushEducationPath(_ context.Context, id int64, p career.EducationPath) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return career.ErrNotFound
	}
	d.EducationPath = append(d.EducationPath, p)
	r.docs[id] = d
	return nil
}

type fakeRefRepo struct {
	mu        sync.Mutex
	nextID    int64
	byName    map[career.EntityKind]map[string]int64
	institute map[string]career.Institute
	listCalls int
	upsertErr error
}

func newFakeRefRepo() *fakeRefRepo {
	return &fakeRefRepo{byName: map[career.EntityKind]map[string]int64{}, institute: map[string]career.Institute{}}
}

func (r *fakeRefRepo) upsert(kind career.EntityKind, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return 0, r.upsertErr
	}
	m, ok := r.byName[kind]
	if !ok {
		m = map[string]int64{}
		r.byName[kind] = m
	}
	if id, ok := m[name]; ok {
		return id, nil
	}
	r.nextID++
	m[name] = r.nextID
	return r.nextID, nil
}

func (r *fakeRefRepo) count(kind career.EntityKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName[kind])
}

func (r *fakeRefRepo) UpsertCareerCategory(_ context.Context, in career.CareerCategory, _ int64) (int64, error) {
	return r.upsert(career.KindCareerCategory, in.Name)
}
func (r *fakeRefRepo) UpsertSkillCategory(_ context.Context, in career.SkillCategory, _ int64) (int64, error) {
	return r.upsert(career.KindSkillCategory, in.Name)
}
func (r *fakeRefRepo) UpsertSkill(_ context.Context, in career.Skill, _ int64) (int64, error) {
	return r.upsert(career.KindSkill, in.Name)
}
func (r *fakeRefRepo) UpsertExam(_ context.Context, in career.Exam, _ int64) (int64, error) {
	return r.upsert(career.KindExam, in.Name)
}
func (r *fakeRefRepo) UpsertCompany(_ context.Context, in career.Company, _ int64) (int64, error) {
	return r.upsert(career.KindCompany, in.Name)
}
func (r *fakeRefRepo) UpsertPersonality(_ context.Context, in career.Personality, _ int64) (int64, error) {
	return r.upsert(career.KindPersonality, in.Name)
}
func (r *fakeRefRepo) UpsertInstitute(_ context.Context, in career.Institute, _ int64) (int64, error) {
	r.mu.Lock()
	r.institute[in.Name] = in
	r.mu.Unlock()
	return r.upsert(career.KindInstitute, in.Name)
}

func (r *fakeRefRepo) FindActiveByName(_ context.Context, kind career.EntityKind, name string) (career.Reference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[kind][name]; ok {
		return career.Reference{ID: id, Name: name, IsActive: true}, nil
	}
	return career.Reference{}, career.ErrNotFound
}

func (r *fakeRefRepo) UpdateCategoryDescription(_ context.Context, id int64, _ string, _ int64) error {
	if id == 404 {
		return career.ErrNotFound
	}
	return nil
}

func (r *fakeRefRepo) listed() {
	r.mu.Lock()
	r.listCalls++
	r.mu.Unlock()
}

func (r *fakeRefRepo) ListCareerCategories(context.Context) ([]career.CareerCategory, error) {
	r.listed()
	return []career.CareerCategory{{ID: 1, Name: "Engineering", IsActive: true}}, nil
}
func (r *fakeRefRepo) ListSkillCategories(context.Context) ([]career.SkillCategory, error) {
	r.listed()
	return []career.SkillCategory{}, nil
}
func (r *fakeRefRepo) ListSkills(context.Context) ([]career.Skill, error) {
	r.listed()
	return []career.Skill{{ID: 2, Name: "Welding", IsActive: true}}, nil
}
func (r *fakeRefRepo) ListExams(context.Context) ([]career.Exam, error) {
	r.listed()
	return []career.Exam{}, nil
}
func (r *fakeRefRepo) ListCompanies(context.Context) ([]career.Company, error) {
	r.listed()
	return []career.Company{}, nil
}
func (r *fakeRefRepo) ListPersonalities(context.Context) ([]career.Personality, error) {
	r.listed()
	return []career.Personality{}, nil
}
func (r *fakeRefRepo) ListInstitutes(context.Context) ([]career.Institute, error) {
	r.listed()
	return []career.Institute{}, nil
}
func (r *fakeRefRepo) ListExamTypes(context.Context) ([]career.Lookup, error) {
	r.listed()
	return []career.Lookup{}, nil
}
func (r *fakeRefRepo) ListEducationLevels(context.Context) ([]career.Lookup, error) {
	r.listed()
	return []career.Lookup{{ID: 1, Name: "10th"}}, nil
}

type fakeCache struct {
	mu            sync.Mutex
	data          map[string][]byte
	locks         map[string]string
	invalidations int
	lockErr       error
	released      []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}, locks: map[string]string{}}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *fakeCache) InvalidateCareerLibrary(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	c.data = map[string][]byte{}
	return nil
}

func (c *fakeCache) AcquireLock(_ context.Context, key, owner string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lockErr != nil {
		return false, c.lockErr
	}
	if _, held := c.locks[key]; held {
		return false, nil
	}
	c.locks[key] = owner
	return true, nil
}

func (c *fakeCache) ReleaseLock(_ context.Context, key, owner string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = append(c.released, owner)
	if c.locks[key] == owner {
		delete(c.locks, key)
	}
	return nil
}

func (c *fakeCache) invalidated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

type fakeStore struct {
	mu      sync.Mutex
	uploads map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string]string{}}
}

func (s *fakeStore) Upload(_ context.Context, category storage.Category, name string, body io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	key := string(category) + "/" + name
	s.mu.Lock()
	s.uploads[key] = string(b)
	s.mu.Unlock()
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Delete(context.Context, storage.Category, string) error { return nil }

type fakeTemplateRepo struct {
	tpl   *career.Template
	saved int
}

func (r *fakeTemplateRepo) Get(context.Context, string) (career.Template, error) {
	if r.tpl == nil {
		return career.Template{}, career.ErrNotFound
	}
	return *r.tpl, nil
}

func (r *fakeTemplateRepo) Save(_ context.Context, code, url string, userID int64) error {
	r.saved++
	r.tpl = &career.Template{Code: code, URL: url, LastUpdatedBy: &userID}
	return nil
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[int64]user.User{}}
}

func (r *fakeUsers) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email != nil && u.Email != nil && *existing.Email == *u.Email {
			return user.User{}, user.ErrAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	u.IsActive = true
	r.byID[u.ID] = u
	return u, nil
}

func (r *fakeUsers) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *fakeUsers) FindOrCreateByMobile(_ context.Context, mobile string) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.MobileNo != nil && *u.MobileNo == mobile {
			return u, false, nil
		}
	}
	r.nextID++
	m := mobile
	u := user.User{ID: r.nextID, MobileNo: &m, IsActive: true}
	r.byID[u.ID] = u
	return u, true, nil
}

type fakeTransactions struct {
	items []transaction.Transaction
	got   repository.TransactionFilter
	err   error
}

func (r *fakeTransactions) List(_ context.Context, f repository.TransactionFilter) ([]transaction.Transaction, error) {
	r.got = f
	return r.items, r.err
}

var errBoom = errors.New("boom")
