// Package corpustest builds small statutes for tests
package corpustest

import "lawchat-backend/models"

// Record is a compact (type, number, content) triple
type Record struct {
	Type    models.ArticleType
	Number  string
	Content string
}

// H is a heading record
func H(text string) Record {
	return Record{Type: models.ArticleTypeHeading, Content: text}
}

// A is an article record
func A(number, content string) Record {
	return Record{Type: models.ArticleTypeArticle, Number: number, Content: content}
}

// NewLaw assembles a law from records in order
func NewLaw(name string, records ...Record) *models.Law {
	law := &models.Law{Name: name, Level: "法律"}
	for _, r := range records {
		law.Articles = append(law.Articles, &models.Article{
			LawName: name,
			Number:  r.Number,
			Type:    r.Type,
			Content: r.Content,
		})
	}
	return law
}

// CivilCode returns an abridged civil code with all four heading levels
func CivilCode() *models.Law {
	law := NewLaw("民法",
		H("第 一 編 總則"),
		H("第 一 章 法例"),
		A("第 1 條", "民事，法律所未規定者，依習慣；無習慣者，依法理。"),
		A("第 2 條", "民事所適用之習慣，以不背於公共秩序或善良風俗者為限。"),
		H("第 二 章 人"),
		H("第 一 節 自然人"),
		A("第 6 條", "人之權利能力，始於出生，終於死亡。"),
		H("第 二 節 法人"),
		H("第 一 款 通則"),
		A("第 25 條", "法人非依本法或其他法律之規定，不得成立。"),
		H("第 四 章 法律行為"),
		H("第 二 節 行為能力"),
		A("第 83 條", "限制行為能力人用詐術使人信其為有行為能力人或已得法定代理人之允許者，其法律行為為有效。"),
		A("第 84 條", "法定代理人允許限制行為能力人處分之財產，限制行為能力人，就該財產有處分之能力。"),
		A("第 85 條", "（刪除）"),
		A("第 123-1 條", "本條為測試用之枝號條文。"),
		H("第 二 編 債"),
		H("第 一 章 通則"),
		A("第 153 條", "當事人互相表示意思一致者，無論其為明示或默示，契約即為成立。"),
		A("第 183 條", "不當得利之受領人，以其所受者，無償讓與第三人，而受領人因此免返還義務者，第三人於其所免返還義務之限度內，負返還責任。"),
		H("第 三 編 物權"),
		H("附則"),
		A("第 757 條", "物權除依法律或習慣外，不得創設。"),
	)
	law.URL = "https://law.moj.gov.tw/LawClass/LawAll.aspx?pcode=B0000001"
	law.PCode = "B0000001"
	law.ModifiedDate = models.ParseLawDate("20210120")
	return law
}

// GeneralPartCompanion returns the enactment law of the general part
func GeneralPartCompanion() *models.Law {
	return NewLaw("民法總則施行法",
		A("第 1 條", "民事在民法總則施行前發生者，除本施行法有特別規定外，不適用民法總則之規定。"),
	)
}

// ObligationsCompanion returns the enactment law of the obligations part
func ObligationsCompanion() *models.Law {
	return NewLaw("民法債編施行法",
		A("第 1 條", "民法債編施行前發生之債，除本施行法有特別規定外，不適用民法債編之規定。"),
		A("第 2 條", "民法債編施行前，依民法債編之規定，消滅時效業已完成，或其時效期間尚有殘餘不足一年者，得於施行之日起，一年內行使請求權。"),
	)
}
