// Package coach generates the automated opponent's utterances and the
// end-of-session performance summary.
package coach

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/safety"
)

// topicMatcher binds a normalized-topic predicate to its per-standpoint
// rebuttal pools. The table is an explicit value slice so the supported
// topics stay enumerable and testable.
type topicMatcher struct {
	name    string
	matches func(topicLower string) bool
	pools   map[domain.Standpoint][]string
}

var topicMatchers = []topicMatcher{
	{
		name: "social-media-16",
		matches: func(t string) bool {
			return strings.Contains(t, "sociale media") && strings.Contains(t, "16")
		},
		pools: map[domain.Standpoint][]string{
			domain.StandpointFor: {
				"Interessant punt, maar denk je niet dat jongeren juist beschermd moeten worden? Onderzoek laat zien dat intensief social media gebruik leidt tot angst en depressie bij kinderen onder de 16. Hun hersenen zijn gewoon nog niet klaar voor die constante vergelijkingen en cyberpesten.",
				"Dat snap ik, maar vergeet niet dat hun hersenen nog in ontwikkeling zijn. Ze zijn extra kwetsbaar voor verslaving aan likes en notifications. Net zoals we alcohol verbieden voor minderjarigen, kunnen we dit ook doen.",
				"Oké, maar hoe verklaar je dan dat één op de vijf jongeren mentale problemen ervaart door social media? Australië overweegt daarom ook een verbod. Moeten we gewoon toekijken terwijl een hele generatie kampt met angststoornissen?",
			},
			domain.StandpointAgainst: {
				"Wacht even, wie zegt dat een verbod de oplossing is? In China probeerden ze gaming te beperken voor jongeren, maar die vonden massaal manieren om het te omzeilen. Een verbod werkt gewoon niet in de praktijk.",
				"Dat klinkt mooi in theorie, maar hoe ga je dat handhaven? Jongeren kunnen makkelijk een valse leeftijd opgeven. En trouwens, sommige jongeren gebruiken social media juist voor steun en om vriendschappen te onderhouden.",
				"Maar dan los je het echte probleem niet op. Het gaat niet om social media zelf, maar om mediawijsheid en begeleiding. Als je het verbiedt, leren jongeren nooit hoe ze er verantwoord mee om moeten gaan.",
			},
		},
	},
	{
		name: "school-uniform",
		matches: func(t string) bool {
			return strings.Contains(t, "schooluniform")
		},
		pools: map[domain.Standpoint][]string{
			domain.StandpointFor: {
				"Misschien, maar denk je niet dat het pestprobleem kleiner wordt als iedereen hetzelfde draagt? Op veel Britse scholen met uniformen zie je minder pesten op basis van kleding en merkjes.",
				"Dat begrijp ik, maar het gaat om het grotere plaatje. Uniformen zorgen voor gelijkheid en verminderen de druk om dure merkkleding te kopen. Niet iedereen kan zich dat veroorloven.",
				"Klopt, maar op school draait het om leren, niet om een modeshow. Leerlingen kunnen zich na schooltijd genoeg uiten met hun kleding.",
			},
			domain.StandpointAgainst: {
				"Ja, maar dan negeer je het recht op zelfexpressie. Juist in de puberteit is het belangrijk dat jongeren hun identiteit kunnen ontwikkelen, en kleding is daar een deel van.",
				"Dat klinkt goed, maar uniformen kosten ook gewoon geld. Niet alle gezinnen kunnen zich die extra uitgave veroorloven, dus je lost het financiële probleem niet echt op.",
				"Misschien in theorie, maar in de praktijk vinden leerlingen altijd manieren om verschillen te tonen via schoenen, tassen of andere accessoires. Pesten verdwijnt niet door een uniform.",
			},
		},
	},
	{
		name: "homework",
		matches: func(t string) bool {
			return strings.Contains(t, "huiswerk")
		},
		pools: map[domain.Standpoint][]string{
			domain.StandpointFor: {
				"Interessant, maar als huiswerk zo belangrijk is, waarom scoren Finse leerlingen dan zo hoog terwijl ze bijna geen huiswerk krijgen? Het werkt blijkbaar ook zonder.",
				"Dat zeg je, maar huiswerk vergroot juist de ongelijkheid. Kinderen met hulp thuis presteren beter, terwijl anderen het alleen moeten doen. Is dat eerlijk?",
				"Oké, maar kunnen leerlingen die vaardigheden niet ook tijdens schooltijd leren? Dan is er tenminste gelijke begeleiding voor iedereen en hebben ze thuis tijd voor sport en ontspanning.",
			},
			domain.StandpointAgainst: {
				"Dat snap ik, maar zonder huiswerk hoe gaan leerlingen dan de stof oefenen en verdiepen? Je kunt niet alles in de klas leren, soms moet je thuis verder.",
				"Misschien, maar huiswerk bereidt je voor op later. Op de universiteit en in je baan moet je ook zelfstandig werken. Hoe leer je dat als je nooit huiswerk hebt gedaan?",
				"Klopt dat er stress kan zijn, maar bij een goede balans hoeft huiswerk helemaal niet overdreven te zijn. Landen zoals Singapore met huiswerk presteren ook uitstekend.",
			},
		},
	},
}

// genericPools backs topics without a dedicated matcher, keyed by the
// standpoint the coach argues.
var genericPools = map[domain.Standpoint][]string{
	domain.StandpointFor: {
		"Interessant punt, maar heb je nagedacht over het maatschappelijk belang? Deze maatregel kan echt bijdragen aan een betere samenleving voor iedereen.",
		"Dat snap ik, maar in de praktijk kan dit juist leiden tot concrete verbeteringen. We moeten verder kijken dan alleen de korte termijn.",
		"Oké, maar door nu te handelen bereiden we ons voor op de toekomst. Is het niet beter om proactief te zijn dan reactief?",
	},
	domain.StandpointAgainst: {
		"Wacht even, maar dan beperk je wel de persoonlijke vrijheid van mensen. Moeten zij niet zelf kunnen beslissen zonder teveel overheidsbemoeienis?",
		"Dat klinkt goed, maar zulke maatregelen leiden vaak tot onvoorziene negatieve effecten. Heb je daarover nagedacht?",
		"Misschien, maar zijn er niet minder ingrijpende manieren om hetzelfde doel te bereiken? Een verbod lijkt me te drastisch.",
	},
}

// Selector picks the coach's next utterance. The zero value is not usable;
// construct with NewSelector or NewSelectorWithSource.
type Selector struct {
	intn func(n int) int
}

// NewSelector creates a selector backed by the shared random source.
func NewSelector() *Selector {
	return &Selector{intn: rand.IntN}
}

// NewSelectorWithSource creates a selector with an injected index source so
// callers can pin selection deterministically.
func NewSelectorWithSource(intn func(n int) int) *Selector {
	return &Selector{intn: intn}
}

// Respond returns the coach's reply to the user's latest input.
//
// Precondition: userStandpoint is one of the two enum values. The coach
// argues the opposite side. Sensitive content in either the topic or the
// input substitutes the fixed safety message, which takes precedence over
// every pool. Always returns non-empty text.
func (s *Selector) Respond(topic string, userStandpoint domain.Standpoint, userInput string) string {
	if safety.IsSensitive(topic) || safety.IsSensitive(userInput) {
		return safety.Message
	}

	coachSide := userStandpoint.Opposite()
	topicLower := strings.ToLower(topic)

	for _, m := range topicMatchers {
		if m.matches(topicLower) {
			pool := m.pools[coachSide]
			return pool[s.intn(len(pool))]
		}
	}

	pool := genericPools[coachSide]
	return pool[s.intn(len(pool))]
}

// WelcomeMarker is the fixed phrase that identifies the synthetic welcome
// message. The scorer uses it to exclude the welcome from coach arguments.
const WelcomeMarker = "Welkom bij dit debat"

// WelcomeMessage builds the coach's opening message, naming the user's
// standpoint and the coach's opposite standpoint.
func WelcomeMessage(userStandpoint domain.Standpoint) string {
	return fmt.Sprintf(
		`%s! Jij verdedigt het standpunt "%s" en ik neem het standpunt "%s". Begin maar met je opening of stel me een vraag!`,
		WelcomeMarker, userStandpoint.Label(), userStandpoint.Opposite().Label(),
	)
}
