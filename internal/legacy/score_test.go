// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateQualityScoreRange(t *testing.T) {
	// Every score stays inside [0, 1] no matter how many rules fire.
	inputs := []struct{ key, value string }{
		{"python", "a programming language"},
		{"test", "hi"},
		{"", ""},
		{"oh well, i think, you know, whatever...", "lol :) !!!"},
		{"go", "<reply>https://go.dev is great and has docs between ten and two hundred chars"},
		{strings.Repeat("word ", 20), strings.Repeat("x", 600)},
		{"k", "@@@@@@@@@@@@"},
	}
	for _, in := range inputs {
		score := CalculateQualityScore(in.key, in.value)
		assert.GreaterOrEqual(t, score, 0.0, "key=%q", in.key)
		assert.LessOrEqual(t, score, 1.0, "key=%q", in.key)
	}
}

func TestCalculateQualityScoreReferencePoints(t *testing.T) {
	// A clean topic with a mid-length definition clears neutral.
	assert.Greater(t, CalculateQualityScore("python", "a programming language"), 0.5)

	// A throwaway short answer falls below neutral.
	assert.Less(t, CalculateQualityScore("test", "hi"), 0.5)
}

func TestCalculateQualityScoreURLBonus(t *testing.T) {
	without := CalculateQualityScore("docs", "see the reference manual for details")
	with := CalculateQualityScore("docs", "see https://example.com/reference for details")
	assert.Greater(t, with, without)
}

func TestCalculateQualityScoreKeyPenalties(t *testing.T) {
	base := "a perfectly reasonable definition of the topic"

	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{"terminal punctuation", "topic", "topic?"},
		{"interjection opener", "compiler", "hmm compiler"},
		{"first-person opener", "lunch plans", "i'm having lunch plans"},
		{"mid-sentence capture", "that one trick", "and that one trick"},
		{"ellipsis", "trailing", "trailing..."},
		{"direct address", "compiler", "compiler dude"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Greater(t,
				CalculateQualityScore(tt.better, base),
				CalculateQualityScore(tt.worse, base))
		})
	}
}

func TestCalculateQualityScoreWordCountTiers(t *testing.T) {
	value := "a perfectly reasonable definition of the topic"
	score := func(words int) float64 {
		return CalculateQualityScore(strings.TrimSpace(strings.Repeat("word ", words)), value)
	}

	// Only the first matching tier applies; each band is a fixed step
	// below the previous one.
	assert.InDelta(t, score(4), score(5)+0.1, 1e-9)
	assert.InDelta(t, score(5), score(7)+0.1, 1e-9)
	assert.InDelta(t, score(7), score(11)+0.1, 1e-9)
	// Within a band the penalty is constant.
	assert.InDelta(t, score(7), score(10), 1e-9)
}

func TestCalculateQualityScoreCommaTiers(t *testing.T) {
	value := "a perfectly reasonable definition of the topic"
	none := CalculateQualityScore("alpha beta gamma", value)
	one := CalculateQualityScore("alpha, beta gamma", value)
	two := CalculateQualityScore("alpha, beta, gamma", value)

	// One comma costs 0.15 plus the lost concise bonus does not apply
	// here (three words); two or more commas costs 0.25 total, not
	// 0.15+0.25.
	assert.InDelta(t, none-0.15, one, 1e-9)
	assert.InDelta(t, none-0.25, two, 1e-9)
}

func TestCalculateQualityScoreConciseBonus(t *testing.T) {
	value := "a perfectly reasonable definition of the topic"

	// Two clean words earn the bonus; the same words with a
	// conversational signal do not.
	clean := CalculateQualityScore("emacs lisp", value)
	flagged := CalculateQualityScore("emacs lisp!", value)
	// Penalty 0.2 plus the suppressed 0.1 bonus.
	assert.InDelta(t, clean-0.3, flagged, 1e-9)
}

func TestCalculateQualityScoreValueSignals(t *testing.T) {
	tests := []struct {
		name   string
		better string
		worse  string
	}{
		{"tiny value", "a fine mid-length answer here", "hi"},
		{"oversized value", "a fine mid-length answer here", strings.Repeat("x", 600)},
		{"conversational opener", "the standard library reference", "yeah probably the standard library"},
		{"laughter opener", "the standard library reference", "lol the standard library"},
		{"emoticon", "the standard library reference", "the standard library reference :)"},
		{"special character soup", "plain words here", "#$%^&*#$%^&*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "topic"
			assert.Greater(t,
				CalculateQualityScore(key, tt.better),
				CalculateQualityScore(key, tt.worse))
		})
	}
}

func TestCalculateQualityScoreConversationalPatternsFirstMatchOnly(t *testing.T) {
	// A value matching several conversational patterns is penalized once.
	single := CalculateQualityScore("topic", "yeah that could be the answer here")
	double := CalculateQualityScore("topic", "yeah hmm that could be the answer")
	assert.InDelta(t, single, double, 1e-9)
}

func TestCalculateQualityScoreReplyMarker(t *testing.T) {
	plain := CalculateQualityScore("greeting", "hello there friend of mine")
	tagged := CalculateQualityScore("greeting", "<reply>hello there friend of mine")
	assert.InDelta(t, plain+0.3, tagged, 1e-9)
}

func TestCalculateQualityScoreDeterministic(t *testing.T) {
	for n := 0; n < 5; n++ {
		assert.Equal(t,
			CalculateQualityScore("python", "a programming language"),
			CalculateQualityScore("python", "a programming language"))
	}
}
