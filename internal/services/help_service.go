// internal/services/help_service.go
package services

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/Corphon/DataVisualizer/internal/models"
)

var defaultFAQs = []models.FAQ{
	{
		Question: "How do I create my first visualization?",
		Answer:   "To create your first visualization, navigate to the Input page from the dashboard. Select your chart type (line, bar, or pie), enter your data, and click 'Generate Visualization'. Your chart will be displayed on the Output page where you can interact with it and export it in various formats.",
	},
	{
		Question: "What chart types are supported?",
		Answer:   "Currently, we support line charts, bar charts, and pie charts. Line and bar charts are great for showing trends over time or comparing values across categories. Pie charts are useful for showing parts of a whole.",
	},
	{
		Question: "How do I export my visualization?",
		Answer:   "On the Output page, click the 'Export' button in the top right corner of the chart card. You can export your visualization as PDF, PNG, SVG, JSON, or CSV.",
	},
	{
		Question: "Can I customize the colors of my charts?",
		Answer:   "Basic color customization is available in the current version. We're working on adding more advanced customization options in future updates.",
	},
	{
		Question: "Is there a limit to how much data I can visualize?",
		Answer:   "The free version allows up to 1,000 data points per visualization. For larger datasets, consider upgrading to our premium plan.",
	},
	{
		Question: "How do I share my visualizations with others?",
		Answer:   "You can share your visualizations by exporting them and sending the files, or by using the 'Share' feature (coming soon) which will generate a unique URL for your visualization.",
	},
	{
		Question: "What data formats can I import?",
		Answer:   "Currently, you can input data directly through our interface. Support for importing CSV and JSON files is coming soon.",
	},
	{
		Question: "How do I report a bug or request a feature?",
		Answer:   "Please use our Contact page to report bugs or request features. We value your feedback and continuously work to improve our platform.",
	},
}

var defaultTutorials = []models.Tutorial{
	{Title: "Getting Started with Data Visualizer", Description: "Learn the basics of creating your first visualization", Icon: "file-text", Link: "#"},
	{Title: "Advanced Chart Customization", Description: "Discover how to customize your charts for better insights", Icon: "video", Link: "#"},
	{Title: "Working with Large Datasets", Description: "Tips and tricks for visualizing large amounts of data", Icon: "book", Link: "#"},
	{Title: "Exporting and Sharing Visualizations", Description: "Learn how to export and share your visualizations", Icon: "file-text", Link: "#"},
}

// HelpService 帮助中心：静态 FAQ 与教程列表的搜索
type HelpService struct {
	faqs      []models.FAQ
	tutorials []models.Tutorial
}

// NewHelpService 加载内置内容并把 FAQ 答案渲染成 HTML
func NewHelpService() *HelpService {
	md := goldmark.New()

	faqs := make([]models.FAQ, len(defaultFAQs))
	for i, faq := range defaultFAQs {
		faqs[i] = faq
		var buf bytes.Buffer
		if err := md.Convert([]byte(faq.Answer), &buf); err == nil {
			faqs[i].AnswerHTML = strings.TrimSpace(buf.String())
		}
	}

	return &HelpService{
		faqs:      faqs,
		tutorials: append([]models.Tutorial(nil), defaultTutorials...),
	}
}

func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// SearchFAQs 问题或答案包含 query（不区分大小写）；空查询返回全部
func (s *HelpService) SearchFAQs(query string) []models.FAQ {
	q := strings.ToLower(query)
	out := make([]models.FAQ, 0, len(s.faqs))
	for _, faq := range s.faqs {
		if matches(q, faq.Question, faq.Answer) {
			out = append(out, faq)
		}
	}
	return out
}

// SearchTutorials 标题或描述包含 query（不区分大小写）；空查询返回全部
func (s *HelpService) SearchTutorials(query string) []models.Tutorial {
	q := strings.ToLower(query)
	out := make([]models.Tutorial, 0, len(s.tutorials))
	for _, t := range s.tutorials {
		if matches(q, t.Title, t.Description) {
			out = append(out, t)
		}
	}
	return out
}
