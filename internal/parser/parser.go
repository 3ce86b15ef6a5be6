package parser

import (
	"context"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/yoockh/talentpool/internal/models"
)

const (
	// DefaultMaxBytes caps how much of a stored file is read for parsing.
	DefaultMaxBytes = 10 << 20
	summaryWords    = 50
)

// Result is a parsed résumé plus the text it was extracted from.
type Result struct {
	Parsed models.ParsedResume
	Text   string
}

type Parser struct {
	maxBytes int64
	skills   []string
}

func New() *Parser {
	return &Parser{maxBytes: DefaultMaxBytes, skills: knownSkills}
}

// NewWithLimit caps the bytes read per file; non-positive means the default.
func NewWithLimit(maxBytes int64) *Parser {
	p := New()
	if maxBytes > 0 {
		p.maxBytes = maxBytes
	}
	return p
}

// Parse reads r fully, extracts its text and builds the structured record.
func (p *Parser) Parse(ctx context.Context, fileName string, r io.Reader) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := readAllLimited(r, p.maxBytes)
	if err != nil {
		return nil, err
	}
	text, err := ExtractText(fileName, data)
	if err != nil {
		return nil, err
	}
	return &Result{Parsed: p.ParseText(text), Text: text}, nil
}

var (
	yearsRe   = regexp.MustCompile(`(?i)(\d{1,2})\s*\+?\s*(?:years?|yrs?)`)
	labelRe   = regexp.MustCompile(`(?i)^(title|position|current role|role|company|employer|organization|skills|technical skills|education)\s*[:\-]\s*(.+)$`)
	atRe      = regexp.MustCompile(`^(.{3,80}?)\s+(?:at|@)\s+(.{2,80})$`)
	splitList = regexp.MustCompile(`\s*[,;|/•]\s*`)
)

// ParseText extracts the fixed-shape record from already-decoded text.
func (p *Parser) ParseText(text string) models.ParsedResume {
	out := models.ParsedResume{
		Summary:         summarize(text, summaryWords),
		YearsExperience: yearsOfExperience(text),
	}
	out.Degrees = detectDegrees(text)
	if len(out.Degrees) > 0 {
		out.Education = out.Degrees[0]
	}

	skillSet := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := labelRe.FindStringSubmatch(line); m != nil {
			val := strings.TrimSpace(m[2])
			switch strings.ToLower(m[1]) {
			case "title", "position", "current role", "role":
				if out.JobTitle == "" {
					out.JobTitle = val
				}
			case "company", "employer", "organization":
				if out.Company == "" {
					out.Company = val
				}
			case "skills", "technical skills":
				for _, s := range splitList.Split(val, -1) {
					if s = strings.TrimSpace(s); s != "" {
						skillSet[canonicalSkill(s, p.skills)] = struct{}{}
					}
				}
			}
			continue
		}
		if out.JobTitle == "" || out.Company == "" {
			if m := atRe.FindStringSubmatch(line); m != nil {
				if out.JobTitle == "" {
					out.JobTitle = strings.TrimSpace(m[1])
				}
				if out.Company == "" {
					out.Company = strings.TrimSpace(m[2])
				}
			}
		}
	}

	for _, s := range p.skills {
		if containsWord(text, s) {
			skillSet[s] = struct{}{}
		}
	}
	out.Skills = make([]string, 0, len(skillSet))
	for s := range skillSet {
		out.Skills = append(out.Skills, s)
	}
	sort.Strings(out.Skills)
	return out
}

func summarize(text string, n int) string {
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func yearsOfExperience(text string) int {
	best := 0
	for _, m := range yearsRe.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best && n < 60 {
			best = n
		}
	}
	return best
}

// Degree names as stored in parsed data; scoring compares against these.
const (
	DegreePhD       = "PhD"
	DegreeMaster    = "Master's Degree"
	DegreeBachelor  = "Bachelor's Degree"
	DegreeAssociate = "Associate Degree"
)

var educationPatterns = []struct {
	re     *regexp.Regexp
	degree string
}{
	{regexp.MustCompile(`(?i)\b(?:ph\.?\s?d\b|doctorate\b|doctor of\b)`), DegreePhD},
	{regexp.MustCompile(`(?i)\b(?:master'?s?\b|msc\b|m\.sc\b|m\.s\.|mba\b|m\.eng\b)`), DegreeMaster},
	{regexp.MustCompile(`(?i)\b(?:bachelor'?s?\b|bsc\b|b\.sc\b|b\.s\.|b\.a\.|b\.eng\b|b\.tech\b)`), DegreeBachelor},
	{regexp.MustCompile(`(?i)\bassociate'?s? degree\b`), DegreeAssociate},
}

// detectEducation returns the highest degree mentioned, or "".
func detectEducation(text string) string {
	if d := detectDegrees(text); len(d) > 0 {
		return d[0]
	}
	return ""
}

// detectDegrees returns every degree mentioned, highest first.
func detectDegrees(text string) []string {
	var out []string
	for _, p := range educationPatterns {
		if p.re.MatchString(text) {
			out = append(out, p.degree)
		}
	}
	return out
}

func containsWord(text, word string) bool {
	lower := strings.ToLower(text)
	w := strings.ToLower(word)
	idx := 0
	for {
		i := strings.Index(lower[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		if boundary(lower, start-1) && boundary(lower, end) {
			return true
		}
		idx = start + 1
	}
}

func boundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	c := s[i]
	return !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '+' || c == '#')
}

func canonicalSkill(s string, known []string) string {
	for _, k := range known {
		if strings.EqualFold(k, s) {
			return k
		}
	}
	return s
}

var knownSkills = []string{
	"Python", "Golang", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "PHP", "Rust",
	"Kotlin", "Swift", "Scala", "SQL", "PostgreSQL", "MySQL", "MongoDB", "Redis",
	"Django", "Flask", "FastAPI", "React", "Angular", "Vue", "Node.js", "Spring Boot",
	"Docker", "Kubernetes", "Terraform", "AWS", "GCP", "Azure", "Linux", "Git",
	"Machine Learning", "Data Analysis", "Pandas", "TensorFlow", "PyTorch",
	"GraphQL", "Kafka", "Spark", "Project Management",
}
