// Package corpus reconstructs the structure of a statute from its flat,
// ordered record sequence and looks articles up by path or number
package corpus

import (
	"strings"

	"lawchat-backend/models"
)

// RemovedMarker is the content of an article that has been struck from the law
const RemovedMarker = "（刪除）"

// Entry is one article together with the path in force where it appears
type Entry struct {
	Article *models.Article
	Path    models.HierarchyPath
}

// Walk scans the law once in stored order and calls fn for every article
// with its resolved path. Headings without a level marker leave the running
// path unchanged. Walk stops early when fn returns false
func Walk(law *models.Law, fn func(Entry) bool) {
	var cur models.HierarchyPath
	for _, a := range law.Articles {
		if a.IsHeading() {
			if h, ok := models.ParseHeading(a.Content); ok {
				cur.Enter(h.Level, h.Label)
			}
			continue
		}
		if !fn(Entry{Article: a, Path: cur}) {
			return
		}
	}
}

// Paths returns every article of the law with its resolved path
func Paths(law *models.Law) []Entry {
	var out []Entry
	Walk(law, func(e Entry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// ArticlesByPaths returns, in law order, every article whose path matches
// any of the filters. No article is returned twice and headings never are
func ArticlesByPaths(law *models.Law, filters []models.HierarchyPath) []*models.Article {
	if len(filters) == 0 {
		return nil
	}
	var out []*models.Article
	Walk(law, func(e Entry) bool {
		for _, f := range filters {
			if f.Matches(e.Path) {
				out = append(out, e.Article)
				break
			}
		}
		return true
	})
	return out
}

// Headings returns the parsed headings of the law in order. Records without
// a level marker are skipped
func Headings(law *models.Law) []models.Heading {
	var out []models.Heading
	for _, a := range law.Articles {
		if !a.IsHeading() {
			continue
		}
		if h, ok := models.ParseHeading(a.Content); ok {
			out = append(out, h)
		}
	}
	return out
}

// HasStructure reports whether the law carries at least one recognizable heading
func HasStructure(law *models.Law) bool {
	for _, a := range law.Articles {
		if !a.IsHeading() {
			continue
		}
		if _, ok := models.ParseHeading(a.Content); ok {
			return true
		}
	}
	return false
}

// TableOfContents returns the raw heading texts in order, one per line
func TableOfContents(law *models.Law) string {
	var b strings.Builder
	for _, a := range law.Articles {
		if a.IsHeading() {
			b.WriteString(a.Content)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PartTitle returns the title of the part labelled label, e.g. "債" for "第二編"
func PartTitle(law *models.Law, label string) (string, bool) {
	for _, h := range Headings(law) {
		if h.Level == models.LevelPart && h.Label == label {
			return h.Title, true
		}
	}
	return "", false
}

// FindArticle returns the first article whose stored number contains number.
// Matching is by substring, so "83" also hits "第 183 條" when no earlier
// article matches; callers that need exact numbers must check the result
func FindArticle(law *models.Law, number string) (*models.Article, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, models.ErrArticleNotFound
	}
	for _, a := range law.Articles {
		if a.IsHeading() {
			continue
		}
		if strings.Contains(a.Number, number) {
			return a, nil
		}
	}
	return nil, models.ErrArticleNotFound
}

// ArticlesByNumbers resolves each number with FindArticle, skipping numbers
// that match nothing and articles already returned
func ArticlesByNumbers(law *models.Law, numbers []string) []*models.Article {
	var out []*models.Article
	seen := make(map[*models.Article]struct{})
	for _, n := range numbers {
		a, err := FindArticle(law, n)
		if err != nil {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// IsRemoved reports whether the article has been struck from the law
func IsRemoved(a *models.Article) bool {
	return strings.TrimSpace(a.Content) == RemovedMarker
}

// AllArticles returns every numbered article, optionally without removed ones
func AllArticles(law *models.Law, ignoreRemoved bool) []*models.Article {
	var out []*models.Article
	for _, a := range law.Articles {
		if a.IsHeading() {
			continue
		}
		if ignoreRemoved && IsRemoved(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
