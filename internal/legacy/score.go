// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"regexp"
	"strings"
	"unicode"
)

// The scorer starts every candidate at a neutral 0.5 and applies an
// ordered table of independent heuristics; adding or removing a
// heuristic is a data change. Rules marked conversational additionally
// flag the key, which suppresses the concise-key bonus. Tier groups
// (word count, commas, value length) live inside a single rule so that
// only the first matching tier applies.

type keyFacts struct {
	key    string
	lower  string
	words  int
	commas int
}

// keyRule inspects the key and returns a score delta; a non-zero delta
// from a conversational rule marks the key as conversational.
type keyRule struct {
	name           string
	conversational bool
	apply          func(k keyFacts) float64
}

var (
	keyInterjection = regexp.MustCompile(`^(ack|ah|oh|hmm|hrm|hm|huh|hey|well|ugh|wow|yay|yeh|yeah|idk)\b`)
	keyFirstPerson  = regexp.MustCompile(`^(i\s|i'm|i'd|i'll|i've|you're)\b`)
	keyMidSentence  = regexp.MustCompile(`^(as|but|and|or|so|if|when|because|since|though|although` +
		`|while|after|before|until|from|like|maybe|only|just` +
		`|now|then|see|somehow)\b`)
	keyEmoticon   = regexp.MustCompile(`[oOxX0][._][oOxX0]|>_<|\^_\^`)
	keyChatPhrase = regexp.MustCompile(`\b(let me|let's|ask you|tell you|you know|i think|i thought` +
		`|issue|problem|thing|see that|working)\b`)
	keyDirectAddr = regexp.MustCompile(`\b(bub|dude|man|mate|pal|buddy)\b`)
)

var keyRules = []keyRule{
	{name: "wordy key", apply: func(k keyFacts) float64 {
		switch {
		case k.words > 10:
			return -0.3
		case k.words > 6:
			return -0.2
		case k.words > 4:
			return -0.1
		}
		return 0
	}},
	{name: "terminal punctuation", conversational: true, apply: func(k keyFacts) float64 {
		trimmed := strings.TrimRight(k.key, " \t\r\n")
		if strings.HasSuffix(trimmed, "?") || strings.HasSuffix(trimmed, "!") ||
			strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, ",") {
			return -0.2
		}
		return 0
	}},
	{name: "interjection opener", conversational: true, apply: func(k keyFacts) float64 {
		if keyInterjection.MatchString(k.lower) {
			return -0.2
		}
		return 0
	}},
	{name: "first-person opener", conversational: true, apply: func(k keyFacts) float64 {
		if keyFirstPerson.MatchString(k.lower) {
			return -0.15
		}
		return 0
	}},
	{name: "mid-sentence capture", conversational: true, apply: func(k keyFacts) float64 {
		if keyMidSentence.MatchString(k.lower) {
			return -0.15
		}
		return 0
	}},
	{name: "commas", conversational: true, apply: func(k keyFacts) float64 {
		switch {
		case k.commas >= 2:
			return -0.25
		case k.commas == 1:
			return -0.15
		}
		return 0
	}},
	{name: "ellipsis", conversational: true, apply: func(k keyFacts) float64 {
		if strings.Contains(k.key, "...") {
			return -0.15
		}
		return 0
	}},
	{name: "text emoticon", conversational: true, apply: func(k keyFacts) float64 {
		if keyEmoticon.MatchString(k.key) {
			return -0.2
		}
		return 0
	}},
	{name: "conversational phrase", conversational: true, apply: func(k keyFacts) float64 {
		if keyChatPhrase.MatchString(k.lower) {
			return -0.2
		}
		return 0
	}},
	{name: "direct address", conversational: true, apply: func(k keyFacts) float64 {
		if keyDirectAddr.MatchString(k.lower) {
			return -0.2
		}
		return 0
	}},
}

var (
	valueFactoidMarker = regexp.MustCompile(`<(response|reply|action)>`)
	valueEmoticon      = regexp.MustCompile(`[:;]['-]?[)(DPpO/\\|]`)

	// Conversational opener patterns, evaluated in order; only the first
	// match penalizes.
	valueChatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(yeah|yep|nope|nah|ok|okay|sure|whatever)\b`),
		regexp.MustCompile(`^(lol|haha|hehe?|rofl|lmao)\b`),
		regexp.MustCompile(`^(hmm|umm|uh|er|hrm|huh)\b`),
		regexp.MustCompile(`^(back|here|gone|away|around|busy|afk|brb)\b`),
		regexp.MustCompile(`^(not sure|no idea|dunno|idk|iirc)\b`),
		regexp.MustCompile(`^(shy|afraid|sorry|glad|happy|sad)\s+to\b`),
		regexp.MustCompile(`^(really|actually|basically|literally)\s+\w+ing\b`),
		regexp.MustCompile(`\b(i'm|i am)\s+\w+ing\b`),
	}
)

// valueRule inspects the value and returns a score delta.
type valueRule struct {
	name  string
	apply func(value, lower string) float64
}

var valueRules = []valueRule{
	{name: "length", apply: func(value, _ string) float64 {
		n := len([]rune(value))
		switch {
		case n < 3:
			return -0.35
		case n < 10:
			return -0.05
		case n > 500:
			return -0.3
		case n > 200:
			return -0.1
		default:
			return 0.1
		}
	}},
	{name: "factoid marker", apply: func(_, lower string) float64 {
		if valueFactoidMarker.MatchString(lower) {
			return 0.3
		}
		return 0
	}},
	{name: "conversational opener", apply: func(_, lower string) float64 {
		for _, p := range valueChatPatterns {
			if p.MatchString(lower) {
				return -0.3
			}
		}
		return 0
	}},
	{name: "url", apply: func(value, _ string) float64 {
		if strings.Contains(value, "http://") || strings.Contains(value, "https://") {
			return 0.2
		}
		return 0
	}},
	{name: "emoticon", apply: func(value, _ string) float64 {
		if valueEmoticon.MatchString(value) {
			return -0.1
		}
		return 0
	}},
	{name: "special characters", apply: func(value, _ string) float64 {
		if specialCharRatio(value) > 0.3 {
			return -0.2
		}
		return 0
	}},
}

// specialCharRatio measures the share of non-alphanumeric characters in
// value, excluding space and basic punctuation (.,!?-).
func specialCharRatio(value string) float64 {
	runes := []rune(value)
	if len(runes) == 0 {
		return 0
	}
	special := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		if strings.ContainsRune(" .,!?-", r) {
			continue
		}
		special++
	}
	return float64(special) / float64(len(runes))
}

// CalculateQualityScore estimates whether a legacy record is a genuine
// reference fact versus conversational noise. Deterministic, clamped to
// [0.0, 1.0], starting from a neutral 0.5.
func CalculateQualityScore(key, value string) float64 {
	score := 0.5

	facts := keyFacts{
		key:    key,
		lower:  strings.ToLower(key),
		words:  strings.Count(key, " ") + 1,
		commas: strings.Count(key, ","),
	}

	conversational := false
	for _, rule := range keyRules {
		delta := rule.apply(facts)
		score += delta
		if delta != 0 && rule.conversational {
			conversational = true
		}
	}

	// Short clean topic names are intentional.
	if facts.words <= 2 && !conversational {
		score += 0.1
	}

	lower := strings.ToLower(value)
	for _, rule := range valueRules {
		score += rule.apply(value, lower)
	}

	return ClampQualityScore(score)
}
