package parser

import (
	"regexp"
	"strconv"
	"strings"

	"karma/models"
)

// Token patterns for the message grammar. Mentions are @ followed by word
// characters. Delta tokens inside a message require an explicit sign or one
// of the literals ++ / -- / em-dash; the leading-number grammar used for
// replies also accepts unsigned integers.
var (
	tokenPattern   = regexp.MustCompile(`@(\w+)|(\+\+|--|—|[+-]\d+)`)
	mentionPattern = regexp.MustCompile(`@\w+`)
	leadingPattern = regexp.MustCompile(`^(\+\+|--|—|[+-]?\d+)\s*(.*)$`)
)

type tokenKind int

const (
	mentionToken tokenKind = iota
	deltaToken
)

type token struct {
	kind  tokenKind
	text  string // mention name without @, or the raw delta token
	start int
	end   int
}

// Parse extracts scoring intents from a message.
//
// With exactly one delta token the message is free-form: every mention
// receives that delta and the text after the delta token (mentions stripped)
// is the shared note. With more than one delta token each mention is paired
// with the delta immediately following it, and its note runs up to the next
// mention or the end of the message.
//
// A delta of exactly zero discards the whole message. A message with no
// mentions or no usable delta is simply not a scoring attempt and yields
// no intents.
func Parse(text string) []models.Intent {
	tokens := scan(text)

	var mentions, deltas []token
	for _, tok := range tokens {
		if tok.kind == mentionToken {
			mentions = append(mentions, tok)
		} else {
			deltas = append(deltas, tok)
		}
	}

	if len(mentions) == 0 || len(deltas) == 0 {
		return nil
	}

	if len(deltas) == 1 {
		return parseFreeForm(text, mentions, deltas[0])
	}
	return parsePaired(text, tokens)
}

// parseFreeForm applies the single delta to every mention in the message
func parseFreeForm(text string, mentions []token, delta token) []models.Intent {
	value, ok := deltaValue(delta.text)
	if !ok || value == 0 {
		return nil
	}

	// Shared note: everything after the delta token with mentions removed
	note := mentionPattern.ReplaceAllString(text[delta.end:], "")
	note = strings.Join(strings.Fields(note), " ")

	intents := make([]models.Intent, 0, len(mentions))
	for _, m := range mentions {
		intents = append(intents, models.Intent{
			TargetName: m.text,
			Delta:      value,
			Note:       note,
		})
	}
	return intents
}

// parsePaired pairs each mention with its own trailing delta and note.
// A mention without a usable delta drops that intent only.
func parsePaired(text string, tokens []token) []models.Intent {
	var intents []models.Intent

	for i, tok := range tokens {
		if tok.kind != mentionToken {
			continue
		}
		if i+1 >= len(tokens) || tokens[i+1].kind != deltaToken {
			continue
		}

		delta := tokens[i+1]
		if strings.TrimSpace(text[tok.end:delta.start]) != "" {
			// Delta belongs to this mention only when nothing but
			// whitespace separates them
			continue
		}
		value, ok := deltaValue(delta.text)
		if !ok {
			continue
		}
		if value == 0 {
			// No-op token cancels the whole message
			return nil
		}

		noteEnd := len(text)
		for _, next := range tokens[i+2:] {
			if next.kind == mentionToken {
				noteEnd = next.start
				break
			}
		}

		intents = append(intents, models.Intent{
			TargetName: tok.text,
			Delta:      value,
			Note:       strings.TrimSpace(text[delta.end:noteEnd]),
		})
	}
	return intents
}

// ParseLeading extracts a delta from the start of a message, returning the
// remainder as the note. This is the grammar used for replies and for the
// amount step of the two-step scoring flow; unlike Parse it also accepts
// unsigned integers. ok is false when the text does not start with a delta
// token or the number does not fit a signed 64-bit integer.
func ParseLeading(text string) (delta int64, note string, ok bool) {
	match := leadingPattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return 0, "", false
	}

	delta, ok = deltaValue(match[1])
	if !ok {
		return 0, "", false
	}
	return delta, strings.TrimSpace(match[2]), true
}

// scan tokenizes a message into mention and delta tokens in order
func scan(text string) []token {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]token, 0, len(matches))

	for _, m := range matches {
		if m[2] >= 0 {
			tokens = append(tokens, token{
				kind:  mentionToken,
				text:  text[m[2]:m[3]],
				start: m[0],
				end:   m[1],
			})
		} else {
			tokens = append(tokens, token{
				kind:  deltaToken,
				text:  text[m[4]:m[5]],
				start: m[0],
				end:   m[1],
			})
		}
	}
	return tokens
}

// deltaValue maps a delta token to its integer value.
// ++ means +1, -- and the em-dash mean -1, anything else is parsed as a
// signed integer. ok is false for numbers that overflow int64.
func deltaValue(tok string) (int64, bool) {
	switch tok {
	case "++":
		return 1, true
	case "--", "—":
		return -1, true
	}

	value, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
