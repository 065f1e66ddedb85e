package models

import "strings"

// HierarchyLevel is one of the four structural levels of a statute
type HierarchyLevel int

const (
	LevelPart HierarchyLevel = iota
	LevelChapter
	LevelSection
	LevelSubsection
)

// hierarchyDepth is the number of levels in a HierarchyPath
const hierarchyDepth = 4

var levelMarkers = [hierarchyDepth]string{"編", "章", "節", "款"}

// Marker returns the literal heading marker of the level
func (l HierarchyLevel) Marker() string {
	return levelMarkers[l]
}

func (l HierarchyLevel) String() string {
	switch l {
	case LevelPart:
		return "part"
	case LevelChapter:
		return "chapter"
	case LevelSection:
		return "section"
	case LevelSubsection:
		return "subsection"
	default:
		return "unknown"
	}
}

// HierarchyPath is the (part, chapter, section, subsection) address of an
// article. An empty field means unscoped at that level
type HierarchyPath [hierarchyDepth]string

// Part returns the part label
func (p HierarchyPath) Part() string { return p[LevelPart] }

// Chapter returns the chapter label
func (p HierarchyPath) Chapter() string { return p[LevelChapter] }

// Section returns the section label
func (p HierarchyPath) Section() string { return p[LevelSection] }

// Subsection returns the subsection label
func (p HierarchyPath) Subsection() string { return p[LevelSubsection] }

// IsZero reports whether no level is set
func (p HierarchyPath) IsZero() bool {
	return p == HierarchyPath{}
}

// Enter sets level l to label and clears every narrower level
func (p *HierarchyPath) Enter(l HierarchyLevel, label string) {
	p[l] = label
	for i := l + 1; i < hierarchyDepth; i++ {
		p[i] = ""
	}
}

// Truncate returns the path with every level narrower than l cleared
func (p HierarchyPath) Truncate(l HierarchyLevel) HierarchyPath {
	out := p
	for i := l + 1; i < hierarchyDepth; i++ {
		out[i] = ""
	}
	return out
}

// Matches reports whether an article at path article falls under the filter p.
// The filter is tested as the full 4-tuple, then as progressively truncated
// prefixes of the article path, so a filter with empty narrow levels covers
// everything beneath its set levels
func (p HierarchyPath) Matches(article HierarchyPath) bool {
	if p.IsZero() {
		return false
	}
	if p == article {
		return true
	}
	for l := LevelSubsection - 1; l >= LevelPart; l-- {
		if p == article.Truncate(l) {
			return true
		}
	}
	return false
}

func (p HierarchyPath) String() string {
	var parts []string
	for _, v := range p {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "/")
}

// Heading is a parsed structural record
type Heading struct {
	Level HierarchyLevel
	Label string // e.g. "第一編"
	Title string // e.g. "總則"
	Text  string // original record text
}

// ParseHeading reads a heading text such as "第 一 編 總則". The label runs up
// to and including the first whitespace field that carries a level marker;
// whitespace inside the label is dropped. ok is false when no marker is present
func ParseHeading(text string) (h Heading, ok bool) {
	fields := strings.Fields(text)
	for i, f := range fields {
		level, found := markerLevel(f)
		if !found {
			continue
		}
		return Heading{
			Level: level,
			Label: strings.Join(fields[:i+1], ""),
			Title: strings.Join(fields[i+1:], " "),
			Text:  text,
		}, true
	}
	return Heading{}, false
}

// markerLevel returns the level of the earliest marker in field
func markerLevel(field string) (HierarchyLevel, bool) {
	best, at := HierarchyLevel(0), -1
	for l, m := range levelMarkers {
		if i := strings.Index(field, m); i >= 0 && (at < 0 || i < at) {
			best, at = HierarchyLevel(l), i
		}
	}
	return best, at >= 0
}
