package resultview

import (
	"net/url"
	"strings"
)

var imageSuffixes = []string{".png", ".jpg", ".jpeg"}

// emailTokens splits a comma-joined emails field and drops blanks and image
// filenames the scraper sometimes picks up alongside addresses.
func emailTokens(field string) []string {
	var out []string
	for _, tok := range strings.Split(field, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || isImage(tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isImage(tok string) bool {
	lower := strings.ToLower(tok)
	for _, suf := range imageSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

// HasEmails reports whether field holds at least one usable address.
func HasEmails(field string) bool {
	return len(emailTokens(field)) > 0
}

// Emails returns the usable addresses in field, de-duplicated
// case-insensitively and in first-seen order.
func Emails(field string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, tok := range emailTokens(field) {
		key := strings.ToLower(tok)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tok)
	}
	return out
}

// Stars reports which of the five rating stars are lit.
func Stars(rating string) [5]bool {
	var lit [5]bool
	v := ParseNumber(rating)
	for i := range lit {
		lit[i] = v >= float64(i+1)
	}
	return lit
}

// DomainOf returns the host of a website URL, adding a scheme when missing.
func DomainOf(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}

// Href returns raw as a URL a browser can open.
func Href(raw string) string {
	s := strings.TrimSpace(raw)
	if s != "" && !strings.Contains(s, "://") {
		return "http://" + s
	}
	return s
}
