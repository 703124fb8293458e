package serialize

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Markdown converts an HTML canonical value into Markdown for review output.
// It reports false for values that are not HTML strings.
func Markdown(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(strings.TrimSpace(s), "<") {
		return "", false
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return "", false
	}
	return md, true
}
