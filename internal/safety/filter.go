// Package safety gates response generation on sensitive content.
package safety

import "strings"

// sensitiveKeywords covers self-harm, abuse, and bullying themes in Dutch
// and English. Matching is case-insensitive substring.
var sensitiveKeywords = []string{
	"zelfmoord", "suicide", "zelfbeschadiging", "zelfdoding", "eetstoornis",
	"anorexia", "boulimia", "misbruik", "geweld", "pesten",
}

// Message is the fixed coach output substituted whenever sensitive content
// is detected. It overrides normal response generation and is never treated
// as a debate argument.
const Message = `Dit onderwerp raakt aan gevoelige thema's waarbij je misschien hulp nodig hebt. Het is belangrijk dat je hierover praat met een vertrouwenspersoon, zoals een docent, mentor, schoolmaatschappelijk werker of je ouders. Je kunt ook contact opnemen met:

- 113 Zelfmoordpreventie: 113 of 0900-0113
- Kindertelefoon: 0800-0432
- je huisarts

Laten we een ander debatonderwerp kiezen waar ik je beter mee kan helpen.`

// IsSensitive reports whether text touches one of the sensitive themes.
// Pure function, no state.
func IsSensitive(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
