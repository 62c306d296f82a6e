package domain

import "strings"

type ItemKind string

const (
	KindIssues        ItemKind = "issues"
	KindMergeRequests ItemKind = "merge_requests"
)

// Title возвращает человекочитаемый заголовок для отчёта
func (k ItemKind) Title() string {
	if k == KindMergeRequests {
		return "Merge Requests"
	}
	return "Issues"
}

var (
	MergeRequestKeywords = []string{"merges", "merge_requests", "mergerequests", "merge requests", "merge-requests"}
	IssueKeywords        = []string{"issue", "issues"}
)

// ClassifyCommand маппит текст команды на вид агрегации.
// Сравнение без учёта регистра, точное совпадение с ключевым словом.
func ClassifyCommand(text string) (ItemKind, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, keyword := range MergeRequestKeywords {
		if normalized == keyword {
			return KindMergeRequests, true
		}
	}
	for _, keyword := range IssueKeywords {
		if normalized == keyword {
			return KindIssues, true
		}
	}
	return "", false
}
