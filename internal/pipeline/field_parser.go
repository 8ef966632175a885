package pipeline

import (
	"regexp"
	"strings"

	"i4e-backend/internal/domain/career"
)

// Sheet headers understood by the career upload.
const (
	HeaderCareerCluster    = "career_cluster"
	HeaderJobs             = "jobs"
	HeaderPageContent      = "page_content"
	HeaderDescription      = "description"
	HeaderMetaTitle        = "meta_title"
	HeaderMetaDescription  = "meta_description"
	HeaderShortDescription = "shortDescription"
	HeaderAlsoKnownAs      = "also_known_as"
	HeaderStrengths        = "strengths"
	HeaderWeakness         = "weakness"
	HeaderKeywords         = "keywords"
	HeaderColleges         = "colleges"
	HeaderExams            = "exams"
	HeaderPersonalities    = "personalities"
	HeaderCompanies        = "companies"
	HeaderProgression      = "career_progression_path"
	HeaderYoutube          = "youtube"
	HeaderResponsibilities = "responsibilities"
	HeaderWorkContext      = "work_context"
	HeaderEarnings         = "earnings"
	HeaderEducationPath    = "education_path"
	HeaderSkills           = "skills"
)

type FieldKind int

const (
	FieldText FieldKind = iota
	FieldCommaList
	FieldLineList
	FieldNameList
	FieldProgression
	FieldLinks
	FieldResponsibilities
	FieldWorkContext
	FieldEarnings
	FieldEducationPath
	FieldColleges
	FieldSkills
)

var fieldKindNames = map[FieldKind]string{
	FieldText:             "text",
	FieldCommaList:        "comma_list",
	FieldLineList:         "line_list",
	FieldNameList:         "name_list",
	FieldProgression:      "progression",
	FieldLinks:            "links",
	FieldResponsibilities: "responsibilities",
	FieldWorkContext:      "work_context",
	FieldEarnings:         "earnings",
	FieldEducationPath:    "education_path",
	FieldColleges:         "colleges",
	FieldSkills:           "skills",
}

func (k FieldKind) String() string {
	if s, ok := fieldKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// HeaderKinds assigns each known header its parser. Unknown headers are
// ignored.
var HeaderKinds = map[string]FieldKind{
	HeaderCareerCluster:    FieldText,
	HeaderJobs:             FieldText,
	HeaderPageContent:      FieldText,
	HeaderDescription:      FieldText,
	HeaderMetaTitle:        FieldText,
	HeaderMetaDescription:  FieldText,
	HeaderShortDescription: FieldText,
	HeaderAlsoKnownAs:      FieldCommaList,
	HeaderStrengths:        FieldLineList,
	HeaderWeakness:         FieldLineList,
	HeaderKeywords:         FieldLineList,
	HeaderCompanies:        FieldNameList,
	HeaderExams:            FieldNameList,
	HeaderPersonalities:    FieldNameList,
	HeaderProgression:      FieldProgression,
	HeaderYoutube:          FieldLinks,
	HeaderResponsibilities: FieldResponsibilities,
	HeaderWorkContext:      FieldWorkContext,
	HeaderEarnings:         FieldEarnings,
	HeaderEducationPath:    FieldEducationPath,
	HeaderColleges:         FieldColleges,
	HeaderSkills:           FieldSkills,
}

// Parsed holds the output of one field parser; only the member matching the
// field's kind is set.
type Parsed struct {
	Kind        FieldKind
	Text        string
	List        []string
	Progression []career.ProgressionStep
	Links       []career.YoutubeLink
	Pairs       []career.TitleDescription
	Ranges      []career.ExpectedRange
	Paths       []career.EducationPath
	Colleges    []College
	Skills      []SkillGroup
}

type parserFunc func(cells []string) Parsed

var fieldParsers = map[FieldKind]parserFunc{
	FieldText:             func(c []string) Parsed { return Parsed{Kind: FieldText, Text: firstCell(c)} },
	FieldCommaList:        func(c []string) Parsed { return Parsed{Kind: FieldCommaList, List: ParseCommaList(joinCells(c))} },
	FieldLineList:         func(c []string) Parsed { return Parsed{Kind: FieldLineList, List: ParseLineList(joinCells(c))} },
	FieldNameList:         func(c []string) Parsed { return Parsed{Kind: FieldNameList, List: ParseNameList(joinCells(c))} },
	FieldProgression:      func(c []string) Parsed { return Parsed{Kind: FieldProgression, Progression: ParseProgression(joinCells(c))} },
	FieldLinks:            func(c []string) Parsed { return Parsed{Kind: FieldLinks, Links: ParseLinks(joinCells(c))} },
	FieldResponsibilities: func(c []string) Parsed { return Parsed{Kind: FieldResponsibilities, Pairs: ParseTitleDescriptions(joinCells(c), "-")} },
	FieldWorkContext:      func(c []string) Parsed { return Parsed{Kind: FieldWorkContext, Pairs: ParseTitleDescriptions(joinCells(c), ":")} },
	FieldEarnings:         func(c []string) Parsed { return Parsed{Kind: FieldEarnings, Ranges: ParseEarnings(firstCell(c))} },
	FieldEducationPath:    func(c []string) Parsed { return Parsed{Kind: FieldEducationPath, Paths: ParseEducationPaths(c)} },
	FieldColleges:         func(c []string) Parsed { return Parsed{Kind: FieldColleges, Colleges: ParseColleges(joinCells(c))} },
	FieldSkills:           func(c []string) Parsed { return Parsed{Kind: FieldSkills, Skills: ParseSkills(joinCells(c))} },
}

// ParsedRow is a RawRow after every known header went through its parser.
type ParsedRow map[string]Parsed

func ParseRow(raw RawRow) ParsedRow {
	out := make(ParsedRow, len(HeaderKinds))
	for header, kind := range HeaderKinds {
		out[header] = fieldParsers[kind](raw.Values(header))
	}
	return out
}

func (p ParsedRow) Text(header string) string { return p[header].Text }
func (p ParsedRow) List(header string) []string { return orEmpty(p[header].List) }

var (
	commaNewline = regexp.MustCompile(`,\s*\n`)
	perUnit      = regexp.MustCompile(`\s*\bper\s+`)
)

// ParseCommaList splits on commas and line breaks.
func ParseCommaList(text string) []string {
	return splitAny(text, ",\n")
}

// ParseLineList splits on line breaks. A comma that ends a line is dropped.
func ParseLineList(text string) []string {
	return splitAny(commaNewline.ReplaceAllString(normalizeNewlines(text), "\n"), "\n")
}

// ParseNameList splits reference names on commas and line breaks, so one
// cell can hold "Tata Motors,Mahindra".
func ParseNameList(text string) []string {
	return splitAny(text, ",\n")
}

func ParseProgression(text string) []career.ProgressionStep {
	lines := splitAny(text, "\n")
	out := make([]career.ProgressionStep, 0, len(lines))
	for _, l := range lines {
		out = append(out, career.ProgressionStep{Value: l})
	}
	return out
}

func ParseLinks(text string) []career.YoutubeLink {
	tokens := splitAny(text, ",\n")
	out := make([]career.YoutubeLink, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, career.YoutubeLink{Link: t})
	}
	return out
}

// ParseTitleDescriptions reads one entry per line, split at the first sep.
// A line without sep becomes a title with a null description.
func ParseTitleDescriptions(text, sep string) []career.TitleDescription {
	lines := splitAny(commaNewline.ReplaceAllString(normalizeNewlines(text), "\n"), "\n")
	out := make([]career.TitleDescription, 0, len(lines))
	for _, l := range lines {
		title, desc, found := strings.Cut(l, sep)
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		td := career.TitleDescription{Title: career.Text(title), Description: career.Null(career.InputText)}
		if found {
			td.Description = career.Text(strings.TrimSpace(desc))
		}
		out = append(out, td)
	}
	return out
}

const rangeFieldSize = 4

// ParseEarnings turns a single line into one title-only range. Several lines
// are read as "Title: min-max" each, with "per X" rewritten to "/X".
func ParseEarnings(text string) []career.ExpectedRange {
	text = normalizeNewlines(text)
	if strings.TrimSpace(text) == "" {
		return []career.ExpectedRange{}
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) == 1 {
		return []career.ExpectedRange{{Title: career.Text(strings.TrimSpace(lines[0]))}}
	}

	out := make([]career.ExpectedRange, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		title, rng, hasRange := strings.Cut(l, ":")
		er := career.ExpectedRange{Title: career.SizedText(strings.TrimSpace(title), rangeFieldSize)}
		rng = strings.TrimSpace(rng)
		if hasRange && rng != "" {
			lo, hi, _ := strings.Cut(rng, "-")
			minR := career.SizedText(strings.TrimSpace(lo), rangeFieldSize)
			maxR := career.Field{InputType: career.InputText, Size: rangeFieldSize}
			if hi = strings.TrimSpace(hi); hi != "" {
				v := perUnit.ReplaceAllString(hi, "/")
				maxR.Value = &v
			}
			er.MinRange = &minR
			er.MaxRange = &maxR
		}
		out = append(out, er)
	}
	return out
}

// AverageSalary is the first range's minimum, or "0".
func AverageSalary(ranges []career.ExpectedRange) string {
	if len(ranges) == 0 || ranges[0].MinRange == nil || ranges[0].MinRange.IsBlank() {
		return "0"
	}
	return ranges[0].MinRange.String()
}

// ParseEducationPaths reads one path per cell; Srno is the cell position.
func ParseEducationPaths(cells []string) []career.EducationPath {
	out := make([]career.EducationPath, 0, len(cells))
	for i, cell := range cells {
		lines := splitAny(cell, "\n")
		steps := make([]career.EducationStep, 0, len(lines))
		for _, l := range lines {
			steps = append(steps, parseEducationStep(l))
		}
		if len(steps) == 0 {
			continue
		}
		out = append(out, career.EducationPath{Details: steps, Srno: i})
	}
	return out
}

func parseEducationStep(line string) career.EducationStep {
	stream, cert, _ := strings.Cut(line, "-")
	stream = strings.TrimSpace(stream)
	cert = strings.TrimSpace(cert)

	step := career.EducationStep{
		Stream:            career.Text(stream),
		CertSpecification: career.Null(career.InputText),
		Icon:              career.Null(career.InputImage),
	}
	switch {
	case stream == "10th" || stream == "12th":
		step.Certification = career.Text(cert)
	case cert != "":
		step.Certification = career.Text(cert)
	default:
		step.Certification = career.Null(career.InputText)
	}
	return step
}

// College is an institute name as it will be stored plus the city text it
// was read with.
type College struct {
	Name string `json:"college"`
	City string `json:"city"`
}

// ParseColleges reads "Name, City" entries, one per line.
func ParseColleges(text string) []College {
	lines := splitAny(text, "\n")
	out := make([]College, 0, len(lines))
	for _, l := range lines {
		name, city, _ := strings.Cut(l, ",")
		name = strings.TrimSpace(name)
		city = strings.TrimSpace(city)
		if name == "" {
			continue
		}
		c := College{Name: name, City: city}
		if city != "" {
			c.Name = name + ", " + city
		}
		out = append(out, c)
	}
	return out
}

// SkillGroup is one parent skill category with its children.
type SkillGroup struct {
	Parent   string       `json:"parent"`
	Children []SkillChild `json:"children"`
}

// SkillChild is either a named sub-category with its skills, or, when
// SubCategory is empty, skills filed directly under the parent.
type SkillChild struct {
	SubCategory string   `json:"subCategory,omitempty"`
	Skills      []string `json:"skills"`
}

// ParseSkills reads "Parent||Sub:skill,skill|Sub2:skill" lines. A child
// without ':' is a flat skill list under the parent.
func ParseSkills(text string) []SkillGroup {
	lines := splitAny(text, "\n")
	out := make([]SkillGroup, 0, len(lines))
	for _, l := range lines {
		parent, rest, _ := strings.Cut(l, "||")
		parent = strings.TrimSpace(parent)
		if parent == "" {
			continue
		}
		g := SkillGroup{Parent: parent, Children: []SkillChild{}}
		for _, child := range strings.Split(rest, "|") {
			child = strings.TrimSpace(child)
			if child == "" {
				continue
			}
			var sc SkillChild
			if sub, skills, ok := strings.Cut(child, ":"); ok {
				sc.SubCategory = strings.TrimSpace(sub)
				sc.Skills = splitAny(skills, ",")
			} else {
				sc.Skills = splitAny(child, ",")
			}
			if sc.SubCategory == "" && len(sc.Skills) == 0 {
				continue
			}
			g.Children = append(g.Children, sc)
		}
		out = append(out, g)
	}
	return out
}

// splitAny splits on any rune in seps, trims every token and drops empty
// ones. The result is never nil.
func splitAny(text, seps string) []string {
	text = normalizeNewlines(text)
	parts := strings.FieldsFunc(text, func(r rune) bool { return strings.ContainsRune(seps, r) })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
}

func firstCell(cells []string) string {
	if len(cells) == 0 {
		return ""
	}
	return strings.TrimSpace(cells[0])
}

func joinCells(cells []string) string {
	return strings.Join(cells, "\n")
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
