package services

import (
	"strings"
	"testing"
)

func TestHelpSearch(t *testing.T) {
	h := NewHelpService()

	if got := len(h.SearchFAQs("")); got != 8 {
		t.Errorf("all faqs = %d", got)
	}
	if got := len(h.SearchTutorials("")); got != 4 {
		t.Errorf("all tutorials = %d", got)
	}

	faqs := h.SearchFAQs("EXPORT")
	if len(faqs) == 0 {
		t.Fatal("case-insensitive search found nothing")
	}
	for _, f := range faqs {
		if !strings.Contains(strings.ToLower(f.Question+f.Answer), "export") {
			t.Errorf("unexpected match %q", f.Question)
		}
	}

	tutorials := h.SearchTutorials("large")
	if len(tutorials) != 1 || tutorials[0].Title != "Working with Large Datasets" {
		t.Errorf("tutorials = %+v", tutorials)
	}
	if got := h.SearchFAQs("no such topic"); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestHelpAnswersRenderedAsHTML(t *testing.T) {
	for _, f := range NewHelpService().SearchFAQs("") {
		if !strings.HasPrefix(f.AnswerHTML, "<p>") {
			t.Errorf("%q: answer html = %q", f.Question, f.AnswerHTML)
		}
	}
}
