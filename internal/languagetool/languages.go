package languagetool

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages are the tags a stock LanguageTool server checks.
var Languages = []string{
	"ar", "ast-ES", "be-BY", "br-FR", "ca-ES", "ca-ES-valencia", "da-DK",
	"de", "de-AT", "de-CH", "de-DE", "el-GR", "en", "en-AU", "en-CA",
	"en-GB", "en-NZ", "en-US", "en-ZA", "eo", "es", "fa", "fr", "ga-IE",
	"gl-ES", "it", "ja-JP", "km-KH", "nl", "nl-BE", "pl-PL", "pt",
	"pt-AO", "pt-BR", "pt-MZ", "pt-PT", "ro-RO", "ru-RU", "sk-SK",
	"sl-SI", "sv", "ta-IN", "tl-PH", "uk-UA", "zh-CN",
}

var englishNames = display.Tags(language.English)

// NormalizeLanguage validates tag and returns its canonical form. Empty and
// "auto" select server-side detection; "autodetect" is kept for legacy
// servers.
func NormalizeLanguage(tag string) (string, error) {
	switch t := strings.TrimSpace(tag); strings.ToLower(t) {
	case "", Auto:
		return Auto, nil
	case AutoDetect:
		return AutoDetect, nil
	default:
		parsed, err := language.Parse(t)
		if err != nil {
			return "", fmt.Errorf("invalid language %q: %w", tag, err)
		}
		return parsed.String(), nil
	}
}

// DisplayName returns the English name of tag.
func DisplayName(tag string) string {
	if tag == Auto || tag == AutoDetect {
		return "automatic detection"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := englishNames.Name(t); name != "" {
		return name
	}
	return tag
}
