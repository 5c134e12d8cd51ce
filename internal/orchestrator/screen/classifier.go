package screen

import (
	"strings"

	"github.com/arbovm/levenshtein"
)

type predicate func(text string) bool

func anyOf(phrases ...string) predicate {
	return func(text string) bool {
		for _, p := range phrases {
			if strings.Contains(text, p) {
				return true
			}
		}
		return false
	}
}

func allOf(preds ...predicate) predicate {
	return func(text string) bool {
		for _, p := range preds {
			if !p(text) {
				return false
			}
		}
		return true
	}
}

// Rule maps text to a state when Match holds and Unless does not.
type Rule struct {
	State   State
	Match   predicate
	Unless  predicate
	phrases []string
}

func (r Rule) applies(text string) bool {
	if !r.Match(text) {
		return false
	}
	return r.Unless == nil || !r.Unless(text)
}

// Classifier evaluates rules in order; the first applicable rule wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns the Star Scout rule set. Earlier rules are more
// specific: the result card and the main screen share vocabulary, so the
// card rules exclude main-screen titles.
func NewClassifier() *Classifier {
	return &Classifier{rules: []Rule{
		{State: StateRefreshConfirm, Match: anyOf(refreshPhrases...), phrases: refreshPhrases},
		{State: StateConfirm, Match: anyOf(confirmPhrases...), phrases: confirmPhrases},
		{State: StateSkip, Match: anyOf(skipPhrases...), phrases: skipPhrases},
		{State: StateTileSelect, Match: anyOf(tilePhrases...), phrases: tilePhrases},
		{
			State:   StateResult,
			Match:   anyOf(cardOnlyMarkers...),
			Unless:  anyOf(mainTitles...),
			phrases: cardOnlyMarkers,
		},
		{
			// POSITION, TEAM and NATION also appear on squad screens outside
			// the scout flow. The exclusions only separate this rule from MAIN.
			State:   StateResult,
			Match:   anyOf(cardMarkers...),
			Unless:  anyOf(mainCallToAct, "STAR SCOUT"),
			phrases: cardMarkers,
		},
		{
			State:   StateMain,
			Match:   allOf(anyOf(mainTitles...), anyOf(mainCallToAct)),
			phrases: append([]string{mainCallToAct}, mainTitles...),
		},
	}}
}

// Classify maps recognized text to a state. Empty text is UNKNOWN.
func (c *Classifier) Classify(text string) State {
	for _, r := range c.rules {
		if r.applies(text) {
			return r.State
		}
	}
	return StateUnknown
}

// Rules returns the rule list in evaluation order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Nearest finds the rule phrase closest to any same-length word window of
// text. It is a diagnostic for UNKNOWN frames and never affects Classify.
func (c *Classifier) Nearest(text string) (phrase string, distance int, ok bool) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", 0, false
	}
	distance = -1
	for _, r := range c.rules {
		for _, p := range r.phrases {
			n := len(strings.Fields(p))
			for i := 0; i+n <= len(words); i++ {
				d := levenshtein.Distance(strings.Join(words[i:i+n], " "), p)
				if distance < 0 || d < distance {
					phrase, distance = p, d
				}
			}
		}
	}
	return phrase, distance, distance >= 0
}

// HasAttributeMarker reports whether text shows an OVR label.
func HasAttributeMarker(text string) bool {
	return anyOf(attributeMarkers...)(text)
}
