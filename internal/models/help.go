// internal/models/help.go
package models

// FAQ 帮助中心问答
type FAQ struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	AnswerHTML string `json:"answer_html,omitempty"`
}

// Tutorial 帮助中心教程
type Tutorial struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Link        string `json:"link"`
}
