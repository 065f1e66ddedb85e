package retrieval

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"lawchat-backend/models"
)

const (
	tagHierarchy = 'C'
	tagArticle   = 'N'

	answerYes = "是"
	answerNo  = "否"
)

// normalize narrows full-width forms (Ｎ８３，第一編) so tags, digits and
// commas compare as ASCII
func normalize(s string) string {
	return width.Narrow.String(s)
}

func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*`> ")
	return strings.TrimRight(line, "`* ")
}

// ParseYesNo reads a bare 是/否 answer. ok is false when the answer is neither
func ParseYesNo(response string) (yes bool, ok bool) {
	s := cleanLine(normalize(response))
	switch {
	case strings.HasPrefix(s, answerNo), strings.HasPrefix(s, "不是"):
		return false, true
	case strings.HasPrefix(s, answerYes):
		return true, true
	case strings.Contains(s, answerNo):
		return false, true
	case strings.Contains(s, answerYes):
		return true, true
	default:
		return false, false
	}
}

// ParseReferences turns a classifier answer into a ReferenceSet.
//
// Lines tagged C are hierarchy paths: comma-separated tokens, each starting
// with a heading label such as "第一編" or "總則編". Lines tagged N carry one
// article number. The kind of the first usable line decides the shape; lines
// of the other kind and malformed lines are skipped. An answer with no usable
// line, or an explicit 否, is out of domain
func ParseReferences(response string) models.ReferenceSet {
	var (
		kind    models.ReferenceKind
		paths   []models.HierarchyPath
		numbers []string
		seenP   = make(map[models.HierarchyPath]struct{})
		seenN   = make(map[string]struct{})
	)

	for _, raw := range strings.Split(normalize(response), "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		if line == answerNo {
			return models.OutOfDomain()
		}

		switch line[0] {
		case tagHierarchy:
			if kind == models.ReferenceArticleNumbers {
				continue
			}
			p, ok := parsePathLine(line[1:])
			if !ok {
				continue
			}
			kind = models.ReferenceHierarchy
			if _, dup := seenP[p]; dup {
				continue
			}
			seenP[p] = struct{}{}
			paths = append(paths, p)

		case tagArticle:
			if kind == models.ReferenceHierarchy {
				continue
			}
			n, ok := parseNumberLine(line[1:])
			if !ok {
				continue
			}
			kind = models.ReferenceArticleNumbers
			if _, dup := seenN[n]; dup {
				continue
			}
			seenN[n] = struct{}{}
			numbers = append(numbers, n)
		}
	}

	switch kind {
	case models.ReferenceHierarchy:
		return models.HierarchyReferences(paths)
	case models.ReferenceArticleNumbers:
		return models.ArticleNumberReferences(numbers)
	default:
		return models.OutOfDomain()
	}
}

// parsePathLine sets only the levels named on the line; the first token for
// a level wins
func parsePathLine(body string) (models.HierarchyPath, bool) {
	var (
		p     models.HierarchyPath
		set   [4]bool
		found bool
	)
	body = strings.TrimLeft(body, ":： ")
	for _, token := range strings.Split(body, ",") {
		h, ok := models.ParseHeading(token)
		if !ok || set[h.Level] {
			continue
		}
		p[h.Level] = h.Label
		set[h.Level] = true
		found = true
	}
	return p, found
}

// parseNumberLine keeps the number verbatim apart from surrounding space; a
// token without any digit is malformed
func parseNumberLine(body string) (string, bool) {
	n := strings.TrimSpace(strings.TrimLeft(body, ":： "))
	if n == "" || strings.IndexFunc(n, unicode.IsDigit) < 0 {
		return "", false
	}
	return n, true
}
