package component

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
)

type ThankYouView struct {
	Heading   string `json:"heading"`
	Message   string `json:"message"`
	HomePath  string `json:"homePath"`
	LoginPath string `json:"loginPath"`
}

func ThankYou() ThankYouView {
	return ThankYouView{
		Heading:   "Thank you for registering!",
		Message:   "We've sent a verification link to your email address. Please verify your email before logging in.",
		HomePath:  PathHome,
		LoginPath: PathLogin,
	}
}

// Announcement is an operator-configured message shown in a dialog.
type Announcement struct {
	ID    string
	Title string
	Body  string // markdown
}

// Enabled reports whether there is anything to announce.
func (a Announcement) Enabled() bool {
	return strings.TrimSpace(a.ID) != "" && strings.TrimSpace(a.Body) != ""
}

type AnnouncementView struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	BodyHTML template.HTML `json:"bodyHtml"`
	Open     bool          `json:"open"`
}

// RenderAnnouncement converts the markdown body to HTML. dismissed closes the dialog.
func RenderAnnouncement(a Announcement, dismissed bool) AnnouncementView {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = "Announcement"
	}
	return AnnouncementView{
		ID:       a.ID,
		Title:    title,
		BodyHTML: renderMarkdown(a.Body),
		Open:     a.Enabled() && !dismissed,
	}
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}
