package retrieval

import "fmt"

func domainPrompt(lawName, query string) string {
	return fmt.Sprintf("你是一個法律問題分類器。判斷以下問題是否與「%s」相關。\n"+
		"只回答「是」或「否」，不要回答其他內容。\n"+
		"問題：%s", lawName, query)
}

func specificityPrompt(lawName, query string) string {
	return fmt.Sprintf("判斷以下問題是否直接詢問「%s」中特定條號的條文（例如「第83條是什麼」）。\n"+
		"只回答「是」或「否」，不要回答其他內容。\n"+
		"問題：%s", lawName, query)
}

func articleNumbersPrompt(lawName, query string) string {
	return fmt.Sprintf("列出以下問題所詢問的「%s」條號。\n"+
		"每行一個條號，以大寫字母 N 開頭，只寫阿拉伯數字與連字號，例如：\n"+
		"N83\nN123-1\n"+
		"不要輸出其他內容。\n"+
		"問題：%s", lawName, query)
}

func chaptersPrompt(lawName, contents, query string) string {
	return fmt.Sprintf("以下是「%s」的目錄：\n%s\n"+
		"請從目錄中選出回答問題可能需要的編、章、節、款。\n"+
		"每行一個範圍，以大寫字母 C 開頭，同一行內以逗號分隔各層級，各層級照目錄寫出標示與名稱，例如：\n"+
		"C第一編 總則,第二章 人\n"+
		"C第二編 債\n"+
		"若問題與目錄無關，只回答「否」。\n"+
		"問題：%s", lawName, contents, query)
}
