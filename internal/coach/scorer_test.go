package coach

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userMessages(count, length int) []domain.Message {
	msgs := make([]domain.Message, 0, count)
	for i := 0; i < count; i++ {
		msgs = append(msgs, domain.Message{
			Role:    domain.RoleUser,
			Content: strings.Repeat("a", length),
		})
	}
	return msgs
}

func TestScoreTurnCountBoundaries(t *testing.T) {
	// Length 50 keeps the length bonuses out of play.
	tests := []struct {
		turns int
		want  int
	}{
		{4, 5},
		{5, 6},
		{7, 6},
		{8, 7},
		{9, 7},
	}

	for _, tt := range tests {
		summary := Score(userMessages(tt.turns, 50), domain.StandpointFor)
		assert.Equal(t, tt.want, summary.PerformanceScore, "turns=%d", tt.turns)
	}
}

func TestScoreLengthBoundaries(t *testing.T) {
	// 3 turns keeps the turn bonuses out of play; base stays 5.
	tests := []struct {
		length int
		want   int
	}{
		{99, 5},
		{100, 5},
		{101, 6},
		{199, 6},
		{200, 6},
		{201, 7},
	}

	for _, tt := range tests {
		summary := Score(userMessages(3, tt.length), domain.StandpointFor)
		assert.Equal(t, tt.want, summary.PerformanceScore, "length=%d", tt.length)
	}
}

func TestScoreFiveTurnsOf150Chars(t *testing.T) {
	// base 5, +1 for >=5 turns, +1 for average length > 100.
	summary := Score(userMessages(5, 150), domain.StandpointFor)
	assert.Equal(t, 7, summary.PerformanceScore)
}

func TestScoreClampCeiling(t *testing.T) {
	summary := Score(userMessages(10, 300), domain.StandpointFor)
	assert.Equal(t, 9, summary.PerformanceScore) // 5+1+1+1+1 = 9, within [4,10]
}

func TestScoreZeroUserMessages(t *testing.T) {
	msgs := []domain.Message{
		{Role: domain.RoleCoach, Content: WelcomeMessage(domain.StandpointFor)},
	}
	summary := Score(msgs, domain.StandpointFor)
	assert.Equal(t, 5, summary.PerformanceScore)
	assert.Empty(t, summary.UserArguments)
	assert.Empty(t, summary.CoachArguments)
	assert.NotEmpty(t, summary.Feedback)
}

func TestScoreArgumentCollection(t *testing.T) {
	long := strings.Repeat("u", 150)
	msgs := []domain.Message{
		{Role: domain.RoleCoach, Content: WelcomeMessage(domain.StandpointAgainst)},
		{Role: domain.RoleUser, Content: "kort"}, // <= 20 chars, skipped
		{Role: domain.RoleUser, Content: long},
		{Role: domain.RoleCoach, Content: strings.Repeat("c", 130)},
		{Role: domain.RoleUser, Content: "   " + strings.Repeat("b", 30) + "   "},
	}

	summary := Score(msgs, domain.StandpointAgainst)

	require.Len(t, summary.UserArguments, 2)
	assert.Len(t, summary.UserArguments[0], 100)
	assert.True(t, strings.HasSuffix(summary.UserArguments[0], "..."))
	assert.Equal(t, strings.Repeat("b", 30), summary.UserArguments[1])

	// The welcome message is excluded from coach arguments.
	require.Len(t, summary.CoachArguments, 1)
	assert.Len(t, summary.CoachArguments[0], 120)
	assert.True(t, strings.HasSuffix(summary.CoachArguments[0], "..."))
}

func TestScoreArgumentCap(t *testing.T) {
	var msgs []domain.Message
	for i := 0; i < 8; i++ {
		msgs = append(msgs,
			domain.Message{Role: domain.RoleUser, Content: strings.Repeat("u", 40)},
			domain.Message{Role: domain.RoleCoach, Content: strings.Repeat("c", 40)},
		)
	}

	summary := Score(msgs, domain.StandpointFor)
	assert.Len(t, summary.UserArguments, 5)
	assert.Len(t, summary.CoachArguments, 5)
	for _, arg := range summary.UserArguments {
		assert.LessOrEqual(t, len(arg), 100)
	}
	for _, arg := range summary.CoachArguments {
		assert.LessOrEqual(t, len(arg), 120)
	}
}

func TestScoreMultibyteContent(t *testing.T) {
	// Accented Dutch text: every é is 2 bytes but 1 character. All limits
	// count characters, so 60 characters must survive untouched.
	sixty := strings.Repeat("é", 60)
	tooShort := strings.Repeat("ë", 19) // 19 chars, skipped despite 38 bytes
	long := strings.Repeat("ï", 130)

	msgs := []domain.Message{
		{Role: domain.RoleCoach, Content: WelcomeMessage(domain.StandpointFor)},
		{Role: domain.RoleUser, Content: sixty},
		{Role: domain.RoleUser, Content: tooShort},
		{Role: domain.RoleUser, Content: long},
		{Role: domain.RoleCoach, Content: strings.Repeat("é", 125)},
	}

	summary := Score(msgs, domain.StandpointFor)

	require.Len(t, summary.UserArguments, 2)
	assert.Equal(t, sixty, summary.UserArguments[0])
	assert.Equal(t, strings.Repeat("ï", 97)+"...", summary.UserArguments[1])

	require.Len(t, summary.CoachArguments, 1)
	assert.Equal(t, strings.Repeat("é", 117)+"...", summary.CoachArguments[0])

	for _, arg := range append(summary.UserArguments, summary.CoachArguments...) {
		assert.True(t, utf8.ValidString(arg))
	}
}

func TestScoreMultibyteAverageLength(t *testing.T) {
	// 3 turns of 101 accented characters: average length crosses 100 even
	// though no threshold would trigger counting characters as bytes twice.
	msgs := make([]domain.Message, 0, 3)
	for i := 0; i < 3; i++ {
		msgs = append(msgs, domain.Message{
			Role:    domain.RoleUser,
			Content: strings.Repeat("é", 101),
		})
	}
	summary := Score(msgs, domain.StandpointFor)
	assert.Equal(t, 6, summary.PerformanceScore)

	// 3 turns of 101 bytes but only 51 characters stay below the bonus.
	short := make([]domain.Message, 0, 3)
	for i := 0; i < 3; i++ {
		short = append(short, domain.Message{
			Role:    domain.RoleUser,
			Content: "a" + strings.Repeat("é", 50),
		})
	}
	summary = Score(short, domain.StandpointFor)
	assert.Equal(t, 5, summary.PerformanceScore)
}

func TestScoreFeedbackTiers(t *testing.T) {
	// score 5 -> lowest tier
	low := Score(userMessages(3, 50), domain.StandpointFor)
	assert.Contains(t, low.Feedback, "concrete voorbeelden")
	assert.Contains(t, low.Feedback, `"VOOR"`)

	// score 6 -> middle tier
	mid := Score(userMessages(5, 50), domain.StandpointAgainst)
	assert.Contains(t, mid.Feedback, "Goed geprobeerd")
	assert.Contains(t, mid.Feedback, `"TEGEN"`)

	// score 8 -> top tier
	high := Score(userMessages(8, 150), domain.StandpointFor)
	assert.Equal(t, 8, high.PerformanceScore)
	assert.Contains(t, high.Feedback, "Uitstekend gedaan")
}

func TestScoreIdempotent(t *testing.T) {
	msgs := append(userMessages(6, 120), domain.Message{
		Role:    domain.RoleCoach,
		Content: strings.Repeat("c", 90),
	})

	first := Score(msgs, domain.StandpointFor)
	second := Score(msgs, domain.StandpointFor)

	assert.Equal(t, first.PerformanceScore, second.PerformanceScore)
	assert.Equal(t, first.UserArguments, second.UserArguments)
	assert.Equal(t, first.CoachArguments, second.CoachArguments)
	assert.Equal(t, first.Feedback, second.Feedback)
}
