package models

// ArticleType distinguishes substantive articles from structural headings
type ArticleType string

const (
	ArticleTypeArticle ArticleType = "A"
	ArticleTypeHeading ArticleType = "C"
)

// Article is one record of a law: either a numbered provision or a heading
type Article struct {
	LawName   string      `json:"-"`
	Number    string      `json:"ArticleNumber"`
	Type      ArticleType `json:"ArticleType"`
	Content   string      `json:"ArticleContent"`
	Embedding []float32   `json:"ArticleEmbedding,omitempty"`
}

// IsHeading reports whether the record marks a part/chapter/section/subsection
func (a *Article) IsHeading() bool {
	return a.Type == ArticleTypeHeading
}

// Title returns the display title used for grounding and embedding, e.g. "民法 第 83 條"
func (a *Article) Title() string {
	if a.Number == "" {
		return a.LawName
	}
	return a.LawName + " " + a.Number
}

// HasEmbedding reports whether a vector has been attached
func (a *Article) HasEmbedding() bool {
	return len(a.Embedding) > 0
}
