package coach

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jdeboer/debatkamer/internal/domain"
)

const (
	maxArguments      = 5
	userArgumentMax   = 100
	coachArgumentMax  = 120
	minArgumentLength = 20
)

// Score derives a Summary from a full transcript. Deterministic: calling
// it twice on the same transcript yields the same score, argument lists,
// and feedback.
func Score(messages []domain.Message, userStandpoint domain.Standpoint) domain.Summary {
	var userMessages, coachMessages []domain.Message
	for _, m := range messages {
		switch m.Role {
		case domain.RoleUser:
			userMessages = append(userMessages, m)
		case domain.RoleCoach:
			coachMessages = append(coachMessages, m)
		}
	}

	userArguments := make([]string, 0, maxArguments)
	for _, m := range userMessages {
		content := strings.TrimSpace(m.Content)
		if utf8.RuneCountInString(content) > minArgumentLength {
			userArguments = append(userArguments, truncate(content, userArgumentMax))
		}
	}

	coachArguments := make([]string, 0, maxArguments)
	for _, m := range coachMessages {
		content := strings.TrimSpace(m.Content)
		if utf8.RuneCountInString(content) > minArgumentLength && !strings.Contains(content, WelcomeMarker) {
			coachArguments = append(coachArguments, truncate(content, coachArgumentMax))
		}
	}

	turnCount := len(userMessages)

	score := 5
	if turnCount >= 5 {
		score++
	}
	if turnCount >= 8 {
		score++
	}

	// Average length over zero messages is undefined; treat as 0 so the
	// calculation still terminates with a valid clamped value.
	var avgLength float64
	if turnCount > 0 {
		total := 0
		for _, m := range userMessages {
			total += utf8.RuneCountInString(m.Content)
		}
		avgLength = float64(total) / float64(turnCount)
	}
	if avgLength > 100 {
		score++
	}
	if avgLength > 200 {
		score++
	}

	if score > 10 {
		score = 10
	}
	if score < 4 {
		score = 4
	}

	return domain.Summary{
		UserArguments:    cap5(userArguments),
		CoachArguments:   cap5(coachArguments),
		PerformanceScore: score,
		Feedback:         feedback(score, userStandpoint, turnCount),
	}
}

// truncate shortens content to max characters, replacing the tail with an
// ellipsis. The ellipsis counts toward the limit. Lengths are measured in
// runes so accented Dutch text is never split mid-character.
func truncate(content string, max int) string {
	runes := []rune(content)
	if len(runes) > max {
		return string(runes[:max-3]) + "..."
	}
	return content
}

func cap5(args []string) []string {
	if len(args) > maxArguments {
		return args[:maxArguments]
	}
	return args
}

// feedback selects one of three fixed template tiers by score. Tier choice
// is driven by the computed score, not randomized.
func feedback(score int, userStandpoint domain.Standpoint, turnCount int) string {
	label := userStandpoint.Label()
	switch {
	case score >= 8:
		return fmt.Sprintf(`Uitstekend gedaan! Je hebt %d sterke argumenten ingebracht en je standpunt "%s" overtuigend verdedigd. Je liet zien dat je goed kon luisteren naar tegenargumenten en daar adequaat op kon reageren.`, turnCount, label)
	case score >= 6:
		return fmt.Sprintf(`Goed geprobeerd! Je verdedigde het standpunt "%s" met %d argumenten. Probeer volgende keer meer diepgang toe te voegen en uitgebreider in te gaan op de tegenargumenten van de coach.`, label, turnCount)
	default:
		return fmt.Sprintf(`Je hebt het standpunt "%s" verdedigd met %d reacties. Probeer volgende keer uitgebreidere argumenten te geven en concrete voorbeelden te gebruiken om je punt te maken.`, label, turnCount)
	}
}
