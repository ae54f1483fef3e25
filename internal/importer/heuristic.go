package importer

import (
	"regexp"
	"strings"
)

const (
	maxSummaryChars = 500
	maxSkills       = 30
	maxSkillLength  = 50
	maxProjects     = 10
	maxHeaderLength = 50
)

var (
	emailPattern    = regexp.MustCompile(`([a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+)`)
	phonePattern    = regexp.MustCompile(`(\+?1?\s*\(?[0-9]{3}\)?[\s.-]?[0-9]{3}[\s.-]?[0-9]{4})`)
	linkedInPattern = regexp.MustCompile(`(?i)linkedin\.com/in/([a-zA-Z0-9-]+)`)
	websitePattern  = regexp.MustCompile(`(?i)(https?://[^\s]+\.[a-zA-Z]{2,})`)
	locationPattern = regexp.MustCompile(`(?i)(?:location|located in|based in)[\s:]*([^,\n]+(?:,\s*[^,\n]+)?)`)
	linkPattern     = regexp.MustCompile(`(https?://[^\s]+)`)

	positionPattern    = regexp.MustCompile(`^[A-Z][A-Za-z\s]+(?:\s+(?:at|@|\||-)\s+|Manager|Engineer|Developer|Designer)`)
	dateLinePattern    = regexp.MustCompile(`\d{4}|\d{1,2}/\d{1,2}`)
	datePattern        = regexp.MustCompile(`(\w+\s*\d{4}|\d{1,2}/\d{1,2}(?:/\d{4})?)`)
	degreePattern      = regexp.MustCompile(`(?i)(?:B\.?S|B\.?A|M\.?S|M\.?A|PhD|Bachelor|Master|Associate)`)
	institutionPattern = regexp.MustCompile(`[Uu]niversity|[Cc]ollege|[Ss]chool|[Ii]nstitute`)
	yearPattern        = regexp.MustCompile(`\d{4}`)
	skillSeparators    = regexp.MustCompile(`[,;•|]`)
)

type sectionHeader struct {
	name    string
	pattern *regexp.Regexp
}

// 按顺序匹配，第一个命中的标题生效。
var sectionHeaders = []sectionHeader{
	{"contact", regexp.MustCompile(`(?i)^(contact|personal info|information|get in touch)`)},
	{"summary", regexp.MustCompile(`(?i)^(summary|professional summary|objective|about|profile|executive summary)`)},
	{"experience", regexp.MustCompile(`(?i)^(experience|work experience|employment|professional experience|career)`)},
	{"education", regexp.MustCompile(`(?i)^(education|academic|qualification|degree|school|university)`)},
	{"skills", regexp.MustCompile(`(?i)^(skills|technical skills|competencies|abilities|expertise)`)},
	{"projects", regexp.MustCompile(`(?i)^(projects|portfolio|featured projects|sample work)`)},
}

// ParseHeuristic 用正则与段落标题规则解析简历文本，不依赖外部服务。
func ParseHeuristic(text string) Parsed {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parsed := Parsed{Contact: extractContact(text)}

	for name, lines := range splitSections(text) {
		switch name {
		case "summary":
			parsed.Summary = truncateRunes(strings.Join(lines, "\n"), maxSummaryChars)
		case "experience":
			parsed.Experience = parseExperience(lines)
		case "education":
			parsed.Education = parseEducation(lines)
		case "skills":
			parsed.Skills = parseSkills(lines)
		case "projects":
			parsed.Projects = parseProjects(lines)
		}
	}
	return parsed
}

func extractContact(text string) *Contact {
	c := &Contact{}
	email := emailPattern.FindStringSubmatch(text)
	if email != nil {
		c.Email = email[1]
	}
	if m := phonePattern.FindStringSubmatch(text); m != nil {
		c.Phone = strings.TrimSpace(m[1])
	}
	if m := linkedInPattern.FindStringSubmatch(text); m != nil {
		c.LinkedIn = "linkedin.com/in/" + m[1]
	}
	if m := websitePattern.FindStringSubmatch(text); m != nil {
		c.Website = m[1]
	}
	if m := locationPattern.FindStringSubmatch(text); m != nil {
		c.Location = strings.TrimSpace(m[1])
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if email == nil || !strings.Contains(email[0], line) {
			c.Name = line
		}
		break
	}

	if c.isEmpty() {
		return nil
	}
	return c
}

// splitSections 按标题行切分文本；同名段落后出现的覆盖先出现的。
func splitSections(text string) map[string][]string {
	sections := map[string][]string{}
	current := "other"
	var content []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		header := ""
		if len(line) < maxHeaderLength {
			for _, h := range sectionHeaders {
				if h.pattern.MatchString(line) {
					header = h.name
					break
				}
			}
		}
		if header != "" {
			if len(content) > 0 {
				sections[current] = content
			}
			current = header
			content = nil
			continue
		}
		if line != "" {
			content = append(content, line)
		}
	}
	if len(content) > 0 {
		sections[current] = content
	}
	return sections
}

func parseExperience(lines []string) []Experience {
	var (
		out         []Experience
		current     *Experience
		description []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Description = strings.TrimSpace(strings.Join(description, "\n"))
		if current.Position != "" {
			out = append(out, *current)
		}
	}

	for _, line := range lines {
		switch {
		case positionPattern.MatchString(line):
			flush()
			current = &Experience{Position: line}
			description = nil
		case current != nil && dateLinePattern.MatchString(line):
			if dates := datePattern.FindAllString(line, -1); len(dates) > 0 {
				current.StartDate = dates[0]
				if len(dates) > 1 {
					current.EndDate = dates[1]
				}
			}
		case current != nil:
			description = append(description, line)
		}
	}
	flush()
	return out
}

func parseEducation(lines []string) []Education {
	var (
		out     []Education
		current *Education
	)
	for _, line := range lines {
		switch {
		case degreePattern.MatchString(line):
			if current != nil {
				out = append(out, *current)
			}
			current = &Education{Degree: line}
		case current != nil && yearPattern.MatchString(line):
			current.GraduationDate = line
		case current != nil && institutionPattern.MatchString(line):
			current.Institution = line
		}
	}
	if current != nil && current.Degree != "" {
		out = append(out, *current)
	}
	return out
}

func parseSkills(lines []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, line := range lines {
		for _, part := range skillSeparators.Split(line, -1) {
			part = strings.TrimSpace(part)
			if part == "" || len(part) >= maxSkillLength || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	if len(out) > maxSkills {
		out = out[:maxSkills]
	}
	return out
}

func parseProjects(lines []string) []Project {
	var (
		out     []Project
		current *Project
	)
	for _, line := range lines {
		if len(line) < 80 && line[0] >= 'A' && line[0] <= 'Z' {
			if current != nil {
				out = append(out, *current)
			}
			current = &Project{Name: line}
			if m := linkPattern.FindStringSubmatch(line); m != nil {
				current.Link = m[1]
			}
			continue
		}
		if current != nil {
			if current.Description != "" {
				current.Description += " "
			}
			current.Description += line
		}
	}
	if current != nil && current.Name != "" {
		out = append(out, *current)
	}
	if len(out) > maxProjects {
		out = out[:maxProjects]
	}
	return out
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
