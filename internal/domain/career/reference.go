package career

// EntityKind names a reference table the resolver can upsert into.
type EntityKind string

const (
	KindCareerCategory EntityKind = "career_category"
	KindSkillCategory  EntityKind = "skill_category"
	KindSkill          EntityKind = "skill"
	KindExam           EntityKind = "exam"
	KindCompany        EntityKind = "company"
	KindPersonality    EntityKind = "personality"
	KindInstitute      EntityKind = "institute"
)

func (k EntityKind) Valid() bool {
	switch k {
	case KindCareerCategory, KindSkillCategory, KindSkill, KindExam, KindCompany, KindPersonality, KindInstitute:
		return true
	}
	return false
}

// Reference is the common projection of every named reference row.
type Reference struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId,omitempty"`
	IsActive bool   `json:"isActive"`
}

type Lookup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type CareerCategory struct {
	ID             int64   `json:"careerCategoryId"`
	Code           string  `json:"code"`
	Name           string  `json:"name"`
	Slug           string  `json:"slugUrl"`
	DescriptionURL *string `json:"descriptionUrl"`
	IsActive       bool    `json:"isActive"`
}

type SkillCategory struct {
	ID          int64  `json:"skillCategoryId"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parentId"`
	IsActive    bool   `json:"isActive"`
}

type Skill struct {
	ID          int64  `json:"skillId"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  *int64 `json:"skillCategoryId"`
	IsActive    bool   `json:"isActive"`
}

type Exam struct {
	ID               int64  `json:"examId"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	ExamTypeID       *int64 `json:"examTypeId"`
	EducationLevelID *int64 `json:"educationLevelId"`
	IsActive         bool   `json:"isActive"`
}

type Company struct {
	ID          int64   `json:"companyId"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	LogoURL     *string `json:"logoUrl"`
	IsActive    bool    `json:"isActive"`
}

type Personality struct {
	ID       int64   `json:"personalityId"`
	Name     string  `json:"name"`
	LastName string  `json:"lastName"`
	ImageURL *string `json:"imageUrl"`
	IsActive bool    `json:"isActive"`
}

type Institute struct {
	ID              int64   `json:"instituteId"`
	Code            string  `json:"code"`
	Name            string  `json:"name"`
	InstituteTypeID *int64  `json:"instituteTypeId"`
	CityID          *int64  `json:"cityId"`
	AddressLine     string  `json:"addressLine"`
	PostalCode      string  `json:"postalCode"`
	ImageURL        *string `json:"imageUrl"`
	IsActive        bool    `json:"isActive"`
}

// Metadata is everything the admin career editor needs to populate its pickers.
type Metadata struct {
	CareerCategories []CareerCategory `json:"careerCategories"`
	SkillCategories  []SkillCategory  `json:"skillCategories"`
	Skills           []Skill          `json:"skills"`
	Institutes       []Institute      `json:"institutes"`
	ExamTypes        []Lookup         `json:"examTypes"`
	Exams            []Exam           `json:"exams"`
	Companies        []Company        `json:"companies"`
	Personalities    []Personality    `json:"personalities"`
	EducationLevels  []Lookup         `json:"educationLevels"`
}

// Template is a downloadable upload template (ml_templates row).
type Template struct {
	Code          string `json:"templateCode"`
	URL           string `json:"templateUrl"`
	LastUpdatedBy *int64 `json:"lastUpdatedBy"`
}
