package models

// ReferenceKind tags the shape of a ReferenceSet
type ReferenceKind int

const (
	ReferenceOutOfDomain ReferenceKind = iota
	ReferenceHierarchy
	ReferenceArticleNumbers
)

func (k ReferenceKind) String() string {
	switch k {
	case ReferenceHierarchy:
		return "hierarchy"
	case ReferenceArticleNumbers:
		return "article_numbers"
	default:
		return "out_of_domain"
	}
}

// ReferenceSet is the classification of one query. Exactly one shape holds:
// a non-empty list of paths, a non-empty list of article numbers, or out of domain
type ReferenceSet struct {
	kind    ReferenceKind
	paths   []HierarchyPath
	numbers []string
}

// OutOfDomain returns the out-of-domain reference set
func OutOfDomain() ReferenceSet {
	return ReferenceSet{kind: ReferenceOutOfDomain}
}

// HierarchyReferences builds a path-list set. An empty list is out of domain
func HierarchyReferences(paths []HierarchyPath) ReferenceSet {
	if len(paths) == 0 {
		return OutOfDomain()
	}
	return ReferenceSet{kind: ReferenceHierarchy, paths: paths}
}

// ArticleNumberReferences builds an article-number set. An empty list is out of domain
func ArticleNumberReferences(numbers []string) ReferenceSet {
	if len(numbers) == 0 {
		return OutOfDomain()
	}
	return ReferenceSet{kind: ReferenceArticleNumbers, numbers: numbers}
}

// Kind returns the shape of the set
func (r ReferenceSet) Kind() ReferenceKind { return r.kind }

// IsOutOfDomain reports whether the query was classified out of domain
func (r ReferenceSet) IsOutOfDomain() bool { return r.kind == ReferenceOutOfDomain }

// Paths returns the hierarchy filters, nil unless Kind is ReferenceHierarchy
func (r ReferenceSet) Paths() []HierarchyPath { return r.paths }

// Numbers returns the article numbers, nil unless Kind is ReferenceArticleNumbers
func (r ReferenceSet) Numbers() []string { return r.numbers }
