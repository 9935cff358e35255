package service

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var emailTemplateFS embed.FS

// PortalTemplate names one of the built-in email templates.
type PortalTemplate int

const (
	// TemplateContactNotification is sent to the business for a contact request.
	TemplateContactNotification PortalTemplate = iota + 1
	// TemplateInvestorNotification is sent to the business for an investor inquiry.
	TemplateInvestorNotification
	// TemplateContactMessage is the courtesy message sent back to a submitter.
	TemplateContactMessage
)

var portalTemplateFiles = map[PortalTemplate]string{
	TemplateContactNotification:  "contact_notification.html",
	TemplateInvestorNotification: "investor_notification.html",
	TemplateContactMessage:       "contact_message.html",
}

// String returns the template name used in logs and metrics.
func (t PortalTemplate) String() string {
	switch t {
	case TemplateContactNotification:
		return "contact_notification"
	case TemplateInvestorNotification:
		return "investor_notification"
	case TemplateContactMessage:
		return "contact_message"
	default:
		return "unknown"
	}
}

// ContactNotification is the model for TemplateContactNotification.
type ContactNotification struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Comments  template.HTML
	SiteTitle string
	Subject   string
	Year      int
}

// InvestorNotification is the model for TemplateInvestorNotification.
type InvestorNotification struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Timezone        string
	LookingToInvest string
	Comments        template.HTML
	SiteTitle       string
	Subject         string
	Year            int
}

// ContactMessage is the model for TemplateContactMessage.
type ContactMessage struct {
	DisplayName string
	Message     template.HTML
	SiteTitle   string
	SiteURL     string
	Subject     string
	Year        int
}

// RenderedTemplate holds both bodies of a rendered email.
type RenderedTemplate struct {
	HTML string
	Text string
}

// TemplateRenderer renders a named template against a model.
type TemplateRenderer interface {
	Render(tmpl PortalTemplate, data any) (RenderedTemplate, error)
}

// TemplateProvider renders the embedded html/template email templates.
type TemplateProvider struct {
	templates map[PortalTemplate]*template.Template
	text      *bluemonday.Policy
}

var _ TemplateRenderer = (*TemplateProvider)(nil)

// NewTemplateProvider parses every embedded template.
func NewTemplateProvider() (*TemplateProvider, error) {
	layout, err := template.New("email").ParseFS(emailTemplateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse email layout: %w", err)
	}

	templates := make(map[PortalTemplate]*template.Template, len(portalTemplateFiles))
	for name, file := range portalTemplateFiles {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone email layout: %w", err)
		}
		if _, err := clone.ParseFS(emailTemplateFS, "templates/"+file); err != nil {
			return nil, fmt.Errorf("parse email template %s: %w", name, err)
		}
		templates[name] = clone
	}

	return &TemplateProvider{templates: templates, text: bluemonday.StrictPolicy()}, nil
}

// Render implements TemplateRenderer.
func (p *TemplateProvider) Render(tmpl PortalTemplate, data any) (RenderedTemplate, error) {
	t, ok := p.templates[tmpl]
	if !ok {
		return RenderedTemplate{}, fmt.Errorf("unknown email template %d", int(tmpl))
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return RenderedTemplate{}, fmt.Errorf("render email template %s: %w", tmpl, err)
	}

	return RenderedTemplate{HTML: buf.String(), Text: p.plainText(buf.String())}, nil
}

func (p *TemplateProvider) plainText(body string) string {
	if idx := strings.Index(body, "<body"); idx >= 0 {
		body = body[idx:]
	}
	stripped := html.UnescapeString(p.text.Sanitize(body))

	lines := strings.Split(stripped, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

var (
	commentMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps(), goldmarkhtml.WithXHTML()),
	)
	commentSanitizer = bluemonday.UGCPolicy()
)

// RenderComments converts user supplied markdown into sanitized HTML.
func RenderComments(content string) template.HTML {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return template.HTML("<p><em>No comments provided.</em></p>")
	}

	var buf bytes.Buffer
	if err := commentMarkdown.Convert([]byte(trimmed), &buf); err != nil {
		return template.HTML("<p>" + template.HTMLEscapeString(trimmed) + "</p>")
	}
	return template.HTML(commentSanitizer.SanitizeBytes(buf.Bytes()))
}

// FormatCurrency renders an amount as US dollars, e.g. $1,250,000.00.
func FormatCurrency(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}
