package view

import "strings"

// DefaultBrandingPath is the web-root directory holding the stock logo files.
const DefaultBrandingPath = "default-resources/logo"

// ThemeResource is a named image the frontend theme references.
type ThemeResource struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Theme describes the active frontend theme.
type Theme struct {
	Name      string
	Resources []ThemeResource
}

var defaultTheme = Theme{
	Name: "Portal Default",
	Resources: []ThemeResource{
		{Name: "hero-background", Path: "/theme/default/img/hero.jpg", Width: 1920, Height: 1080},
		{Name: "about-background", Path: "/theme/default/img/about.jpg", Width: 1920, Height: 640},
		{Name: "contact-background", Path: "/theme/default/img/contact.jpg", Width: 1920, Height: 640},
		{Name: "investor-background", Path: "/theme/default/img/investors.jpg", Width: 1920, Height: 640},
		{Name: "favicon", Path: "/favicon.png", Width: 64, Height: 64},
	},
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	t := defaultTheme
	t.Resources = append([]ThemeResource(nil), defaultTheme.Resources...)
	return t
}

// Resource finds a declared resource by name, ignoring case.
func (t Theme) Resource(name string) (ThemeResource, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ThemeResource{}, false
	}
	for _, res := range t.Resources {
		if strings.EqualFold(res.Name, trimmed) {
			return res, true
		}
	}
	return ThemeResource{}, false
}
