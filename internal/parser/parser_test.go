package parser

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleResume = `Jane Doe
Senior Backend Engineer at Acme Corp
Summary: 6+ years building web services with Python and Django.
Skills: Python, Django, PostgreSQL; Docker
Education: Bachelor of Science in Computer Science
`

func TestParseText(t *testing.T) {
	p := New()
	got := p.ParseText(sampleResume)

	if got.JobTitle != "Senior Backend Engineer" {
		t.Errorf("JobTitle = %q", got.JobTitle)
	}
	if got.Company != "Acme Corp" {
		t.Errorf("Company = %q", got.Company)
	}
	if got.YearsExperience != 6 {
		t.Errorf("YearsExperience = %d, want 6", got.YearsExperience)
	}
	if got.Education != DegreeBachelor {
		t.Errorf("Education = %q, want %q", got.Education, DegreeBachelor)
	}
	want := []string{"Django", "Docker", "PostgreSQL", "Python"}
	if !reflect.DeepEqual(got.Skills, want) {
		t.Errorf("Skills = %v, want %v", got.Skills, want)
	}
	if !strings.HasPrefix(got.Summary, "Jane Doe Senior Backend Engineer") {
		t.Errorf("Summary = %q", got.Summary)
	}
}

func TestParseTextLabels(t *testing.T) {
	text := "Title: Data Analyst\nEmployer: Globex\nTechnical Skills: SQL | pandas | Tableau\nMSc in Statistics, 2 yrs experience"
	got := New().ParseText(text)

	if got.JobTitle != "Data Analyst" || got.Company != "Globex" {
		t.Errorf("labels not extracted: %+v", got)
	}
	if got.Education != DegreeMaster {
		t.Errorf("Education = %q, want %q", got.Education, DegreeMaster)
	}
	if got.YearsExperience != 2 {
		t.Errorf("YearsExperience = %d, want 2", got.YearsExperience)
	}
	for _, s := range []string{"SQL", "Pandas", "Tableau"} {
		found := false
		for _, g := range got.Skills {
			if g == s {
				found = true
			}
		}
		if !found {
			t.Errorf("missing skill %q in %v", s, got.Skills)
		}
	}
}

func TestDetectEducation(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Ph.D. in Physics", DegreePhD},
		{"Master's in Management", DegreeMaster},
		{"B.S. Computer Engineering", DegreeBachelor},
		{"Associate degree in Nursing", DegreeAssociate},
		{"mastered several languages", ""},
		{"self-taught", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := detectEducation(tt.text); got != tt.want {
				t.Errorf("detectEducation(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseTextKeepsEveryDegree(t *testing.T) {
	got := New().ParseText("M.Sc. Data Science, 2021\nB.Sc. Mathematics, Bachelor's Degree, 2019")

	if got.Education != DegreeMaster {
		t.Errorf("Education = %q, want %q", got.Education, DegreeMaster)
	}
	want := []string{DegreeMaster, DegreeBachelor}
	if len(got.Degrees) != len(want) || got.Degrees[0] != want[0] || got.Degrees[1] != want[1] {
		t.Errorf("Degrees = %v, want %v", got.Degrees, want)
	}
}

func TestContainsWord(t *testing.T) {
	if !containsWord("I write C++ daily", "C++") {
		t.Error("expected C++ match")
	}
	if containsWord("Javascript only", "Java") {
		t.Error("Java must not match inside Javascript")
	}
	if !containsWord("java, python", "Python") {
		t.Error("expected case-insensitive match")
	}
}

func TestParseTxt(t *testing.T) {
	res, err := New().Parse(context.Background(), "cv.TXT", strings.NewReader(sampleResume))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Parsed.YearsExperience != 6 {
		t.Errorf("YearsExperience = %d", res.Parsed.YearsExperience)
	}
	if res.Text == "" {
		t.Error("expected extracted text")
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    string
		wantErr error
	}{
		{"invalid utf8", "cv.txt", "\xff\xfe\xfd", ErrNotUTF8},
		{"blank", "cv.txt", "   \n\n ", ErrNoText},
		{"unsupported", "cv.exe", "MZ", ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(context.Background(), tt.file, strings.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseTooLarge(t *testing.T) {
	p := &Parser{maxBytes: 8, skills: knownSkills}
	if _, err := p.Parse(context.Background(), "cv.txt", strings.NewReader("0123456789")); err == nil {
		t.Fatal("expected size error")
	}
}

func TestAllowed(t *testing.T) {
	for _, f := range []string{"a.pdf", "a.DOC", "a.docx", "a.txt", "a.rtf"} {
		if !Allowed(f) {
			t.Errorf("Allowed(%q) = false", f)
		}
	}
	for _, f := range []string{"a.odt", "a", "a.png"} {
		if Allowed(f) {
			t.Errorf("Allowed(%q) = true", f)
		}
	}
}
