package service

import (
	"strings"

	"lawchat-backend/models"
)

// noDataMarker stands in for the article list when retrieval found nothing
const noDataMarker = "查無相關條文"

const groundingAck = "好的，我會依據以上條文回答接下來的問題。"

const advisorSchema = `角色：你是一個法律顧問
任務：從以下內容回答問題並詳細說明。說明應避免專業詞彙，以通俗的詞彙及舉例方式說明，並於最後附上「法源依據」及「AI免責聲明」
回答風格：聊天的回應風格，回答內容應該更白話一點，有豐富的內容`

// groundingPrompt lists the grounding articles, each as "<law> <number>"
// followed by its text. An empty set is replaced with the no-data marker and
// a refusal instruction scoped to the family of lawName
func groundingPrompt(lawName string, articles []*models.Article) string {
	var b strings.Builder
	b.WriteString(advisorSchema)
	b.WriteString("\n\n相關條文：\n")

	if len(articles) == 0 {
		b.WriteString(noDataMarker)
		b.WriteString("\n\n若相關條文為「")
		b.WriteString(noDataMarker)
		b.WriteString("」，請禮貌地告知使用者本服務僅能回答與")
		b.WriteString(lawName)
		b.WriteString("相關的問題，並註明此回答不具法律效力。")
		return b.String()
	}

	for i, a := range articles {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(a.Title())
		b.WriteString("\n")
		b.WriteString(a.Content)
	}
	return b.String()
}
