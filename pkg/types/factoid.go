// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the shared domain and configuration types for
// infobot-reborn: factoids, their type taxonomy, and tool configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// FactoidType distinguishes singular from plural factoid keys.
type FactoidType string

const (
	// FactoidIs marks a singular relationship: "X is Y".
	FactoidIs FactoidType = "is"

	// FactoidAre marks a plural relationship: "X are Y".
	FactoidAre FactoidType = "are"
)

// ParseFactoidType converts a string into a FactoidType.
func ParseFactoidType(s string) (FactoidType, error) {
	switch FactoidType(strings.ToLower(strings.TrimSpace(s))) {
	case FactoidIs:
		return FactoidIs, nil
	case FactoidAre:
		return FactoidAre, nil
	}
	return "", fmt.Errorf("unknown factoid type %q: use is or are", s)
}

// Factoid is a key→value knowledge record inherited from the original
// Infobot. Values support special formatting: a leading <reply> or
// <action> tag changes how the bot renders the answer, and pipe-separated
// alternatives mean "pick one at random".
type Factoid struct {
	// Key is the trigger phrase, stored lowercase for case-insensitive lookup.
	Key string `json:"key" yaml:"key"`

	// Value is the response text.
	Value string `json:"value" yaml:"value"`

	// Type records whether the key is singular (is) or plural (are).
	Type FactoidType `json:"type" yaml:"type"`

	// CreatedAt and UpdatedAt are set by the store on write.
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	// Source is optional attribution (username, channel, legacy:<file>).
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// NewFactoid builds a validated factoid. The key is lowercased and both
// sides are trimmed; empty keys or values are rejected.
func NewFactoid(key, value string, ftype FactoidType, source string) (Factoid, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)
	if key == "" {
		return Factoid{}, fmt.Errorf("factoid key cannot be empty")
	}
	if value == "" {
		return Factoid{}, fmt.Errorf("factoid value cannot be empty")
	}
	if ftype != FactoidIs && ftype != FactoidAre {
		return Factoid{}, fmt.Errorf("unknown factoid type %q: use is or are", ftype)
	}
	return Factoid{Key: key, Value: value, Type: ftype, Source: source}, nil
}

// HasReplyTag reports whether the value uses <reply> formatting.
func (f Factoid) HasReplyTag() bool {
	return strings.HasPrefix(f.Value, "<reply>")
}

// HasActionTag reports whether the value uses <action> formatting.
func (f Factoid) HasActionTag() bool {
	return strings.HasPrefix(f.Value, "<action>")
}

// HasRandomChoices reports whether the value holds pipe-separated
// alternatives the bot selects from at random.
func (f Factoid) HasRandomChoices() bool {
	return strings.Contains(f.Value, "|") && !f.HasReplyTag() && !f.HasActionTag()
}
