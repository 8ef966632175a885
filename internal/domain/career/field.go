package career

import "strings"

const (
	InputText  = "text"
	InputImage = "image"
)

// Field is the uniform {inputType, value, size} wrapper shared by the admin
// edit screens and the bulk upload. A nil Value is stored as null.
type Field struct {
	InputType string  `json:"inputType" bson:"inputType"`
	Value     *string `json:"value" bson:"value"`
	Size      int     `json:"size,omitempty" bson:"size,omitempty"`
}

func Text(v string) Field {
	return Field{InputType: InputText, Value: &v}
}

func SizedText(v string, size int) Field {
	return Field{InputType: InputText, Value: &v, Size: size}
}

func Null(inputType string) Field {
	return Field{InputType: inputType}
}

// String returns the value, or "" for null.
func (f Field) String() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

func (f Field) IsBlank() bool {
	return strings.TrimSpace(f.String()) == ""
}

type TitleDescription struct {
	Title       Field `json:"title" bson:"title"`
	Description Field `json:"description" bson:"description"`
}

// ExpectedRange is one earnings band. Single-line earnings text produces a
// title-only range.
type ExpectedRange struct {
	Title    Field  `json:"title" bson:"title"`
	MinRange *Field `json:"minRange,omitempty" bson:"minRange,omitempty"`
	MaxRange *Field `json:"maxRange,omitempty" bson:"maxRange,omitempty"`
}

type ProgressionStep struct {
	Value string `json:"value" bson:"value"`
}

type YoutubeLink struct {
	Link  string  `json:"link" bson:"link"`
	Image *string `json:"image" bson:"image"`
}

type EducationStep struct {
	Stream            Field `json:"stream" bson:"stream"`
	Certification     Field `json:"certification" bson:"certification"`
	CertSpecification Field `json:"certSpecification" bson:"certSpecification"`
	Icon              Field `json:"icon" bson:"icon"`
}

// EducationPath is one ordered path; Srno keeps paths in upload order.
type EducationPath struct {
	Details []EducationStep `json:"details" bson:"details"`
	Srno    int             `json:"srno" bson:"srno"`
}
