package career

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const BulkUploadTemplateCode = "CAREERBULKTEMPFILE"

var (
	ErrNotFound = errors.New("career not found")
)

type Career struct {
	ID           int64     `json:"careerId"`
	Code         string    `json:"careerCode"`
	Name         string    `json:"careerName"`
	Slug         string    `json:"slugUrl"`
	CategoryID   *int64    `json:"careerCategoryId"`
	CategoryName string    `json:"careerCategoryName"`
	OtherNames   []string  `json:"otherNames"`
	IsActive     bool      `json:"isActive"`
	IsPopular    bool      `json:"isPopular"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Details is the create/update payload. Identifier arrays go to the
// relational store; everything else is kept in the career document.
type Details struct {
	CareerID         int64  `json:"careerId,omitempty"`
	CareerCode       string `json:"careerCode"`
	CareerName       string `json:"careerName"`
	CareerCategoryID *int64 `json:"careerCategoryId"`
	IsActive         *bool  `json:"isActive,omitempty"`

	MetaTitle        string `json:"metaTitle"`
	MetaDescription  string `json:"metaDescription"`
	ShortDescription string `json:"shortDescription"`
	AvgSalary        string `json:"avgSalary"`
	Overview         string `json:"overview"`
	JobTitle         string `json:"jobTitle"`
	Description      string `json:"description"`

	Strength       []string           `json:"strength"`
	Weakness       []string           `json:"weakness"`
	OtherNames     []string           `json:"otherNames"`
	Progression    []ProgressionStep  `json:"progression"`
	ExpectedRange  []ExpectedRange    `json:"expectedRange"`
	Responsibility []TitleDescription `json:"responsibility"`
	WorkContext    []TitleDescription `json:"workContext"`
	YoutubeLink    []YoutubeLink      `json:"youtubeLink"`
	EducationPath  []EducationPath    `json:"educationPath"`

	CareerSkillIDs []int64 `json:"careerSkillIds"`
	InstituteIDs   []int64 `json:"instituteIds"`
	ExamIDs        []int64 `json:"examIds"`
	CompanyIDs     []int64 `json:"companyIds"`
	PersonalityIDs []int64 `json:"personalityIds"`
}

// Document is the rich part of a career, keyed by the relational id.
type Document struct {
	CareerID         int64              `json:"careerId" bson:"careerId"`
	MetaTitle        string             `json:"metaTitle" bson:"metaTitle"`
	MetaDescription  string             `json:"metaDescription" bson:"metaDescription"`
	ShortDescription string             `json:"shortDescription" bson:"shortDescription"`
	AvgSalary        string             `json:"avgSalary" bson:"avgSalary"`
	Overview         string             `json:"overview" bson:"overview"`
	JobTitle         string             `json:"jobTitle" bson:"jobTitle"`
	Description      string             `json:"description" bson:"description"`
	Strength         []string           `json:"strength" bson:"strength"`
	Weakness         []string           `json:"weakness" bson:"weakness"`
	OtherNames       []string           `json:"otherNames" bson:"otherNames"`
	Progression      []ProgressionStep  `json:"progression" bson:"progression"`
	ExpectedRange    []ExpectedRange    `json:"expectedRange" bson:"expectedRange"`
	Responsibility   []TitleDescription `json:"responsibility" bson:"responsibility"`
	WorkContext      []TitleDescription `json:"workContext" bson:"workContext"`
	YoutubeLink      []YoutubeLink      `json:"youtubeLink" bson:"youtubeLink"`
	EducationPath    []EducationPath    `json:"educationPath" bson:"educationPath"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt,omitempty"`
}

func (d Details) Document(careerID int64) Document {
	return Document{
		CareerID:         careerID,
		MetaTitle:        d.MetaTitle,
		MetaDescription:  d.MetaDescription,
		ShortDescription: d.ShortDescription,
		AvgSalary:        d.AvgSalary,
		Overview:         d.Overview,
		JobTitle:         d.JobTitle,
		Description:      d.Description,
		Strength:         nonNil(d.Strength),
		Weakness:         nonNil(d.Weakness),
		OtherNames:       nonNil(d.OtherNames),
		Progression:      nonNil(d.Progression),
		ExpectedRange:    nonNil(d.ExpectedRange),
		Responsibility:   nonNil(d.Responsibility),
		WorkContext:      nonNil(d.WorkContext),
		YoutubeLink:      nonNil(d.YoutubeLink),
		EducationPath:    nonNil(d.EducationPath),
	}
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// CareerDetails is the read model returned by the details endpoint.
type CareerDetails struct {
	Career        Career      `json:"careerDetails"`
	Skills        []Reference `json:"careerSkill"`
	Institutes    []Reference `json:"careerInstitute"`
	Exams         []Reference `json:"careerExam"`
	Companies     []Reference `json:"careerCompany"`
	Personalities []Reference `json:"careerPersonality"`
	Document      *Document   `json:"document"`
}

// CategoryCareer is a career listed under a category page.
type CategoryCareer struct {
	CareerID         int64          `json:"careerId"`
	Name             string         `json:"careerName"`
	Slug             string         `json:"slugUrl"`
	IsPopular        bool           `json:"isPopular"`
	AvgSalary        string         `json:"avgSalary"`
	ShortDescription string         `json:"shortDescription"`
	Description      string         `json:"description"`
	ExpectedRange    *ExpectedRange `json:"expectedRange"`
}

// Slugify lower-cases name and joins its alphanumeric runs with '-'.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
