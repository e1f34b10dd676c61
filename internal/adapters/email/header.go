package email

import "strings"

var headerReplacer = strings.NewReplacer("\r", "", "\n", "", "\x00", "")

// HeaderValue strips CR, LF and NUL so a value cannot start a new header line.
func HeaderValue(s string) string {
	return strings.TrimSpace(headerReplacer.Replace(s))
}

func sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = HeaderValue(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
