package parser

import (
	"testing"

	"karma/models"

	"github.com/stretchr/testify/assert"
)

func TestParse_FreeForm(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []models.Intent
	}{
		{
			name: "two mentions one delta shared note",
			text: "@alice @bob +3 nice work",
			want: []models.Intent{
				{TargetName: "alice", Delta: 3, Note: "nice work"},
				{TargetName: "bob", Delta: 3, Note: "nice work"},
			},
		},
		{
			name: "single mention plus plus",
			text: "@alice ++ thanks",
			want: []models.Intent{
				{TargetName: "alice", Delta: 1, Note: "thanks"},
			},
		},
		{
			name: "minus minus literal",
			text: "@bob -- late again",
			want: []models.Intent{
				{TargetName: "bob", Delta: -1, Note: "late again"},
			},
		},
		{
			name: "em dash literal",
			text: "@bob — missed standup",
			want: []models.Intent{
				{TargetName: "bob", Delta: -1, Note: "missed standup"},
			},
		},
		{
			name: "delta before mentions",
			text: "+2 @alice @bob for the release",
			want: []models.Intent{
				{TargetName: "alice", Delta: 2, Note: "for the release"},
				{TargetName: "bob", Delta: 2, Note: "for the release"},
			},
		},
		{
			name: "mention inside note is stripped from note",
			text: "@alice +1 helping @bob out",
			want: []models.Intent{
				{TargetName: "alice", Delta: 1, Note: "helping out"},
				{TargetName: "bob", Delta: 1, Note: "helping out"},
			},
		},
		{
			name: "no note",
			text: "@alice +5",
			want: []models.Intent{
				{TargetName: "alice", Delta: 5, Note: ""},
			},
		},
		{
			name: "negative delta",
			text: "@carol -4 broke prod",
			want: []models.Intent{
				{TargetName: "carol", Delta: -4, Note: "broke prod"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParse_Paired(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []models.Intent
	}{
		{
			name: "different deltas per mention",
			text: "@alice +2 great job @bob -1 meh",
			want: []models.Intent{
				{TargetName: "alice", Delta: 2, Note: "great job"},
				{TargetName: "bob", Delta: -1, Note: "meh"},
			},
		},
		{
			name: "note runs to end of string",
			text: "@alice ++ one for you @bob -2 and two from you, sorry",
			want: []models.Intent{
				{TargetName: "alice", Delta: 1, Note: "one for you"},
				{TargetName: "bob", Delta: -2, Note: "and two from you, sorry"},
			},
		},
		{
			name: "mention without its own delta is dropped",
			text: "@alice +2 good @carol @bob -1 bad",
			want: []models.Intent{
				{TargetName: "alice", Delta: 2, Note: "good"},
				{TargetName: "bob", Delta: -1, Note: "bad"},
			},
		},
		{
			name: "delta separated by words does not pair",
			text: "@alice gets +2 points @bob -1 slow",
			want: []models.Intent{
				{TargetName: "bob", Delta: -1, Note: "slow"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParse_NoIntents(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty message", text: ""},
		{name: "plain text", text: "just chatting about nothing"},
		{name: "mention without delta", text: "hey @alice how are you"},
		{name: "delta without mention", text: "+3 would be nice"},
		{name: "zero delta cancels message", text: "@a @b +0 text"},
		{name: "zero delta in paired mode cancels message", text: "@a +0 x @b +1 y"},
		{name: "unsigned number is not a message delta", text: "@a @b 0 text"},
		{name: "overflowing number", text: "@alice +99999999999999999999 wow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Parse(tt.text))
		})
	}
}

func TestParse_FreeFormIntentCount(t *testing.T) {
	// N mentions with one delta always yield exactly N intents with the
	// same delta and the same note
	text := "@u1 @u2 @u3 @u4 @u5 +7 shared effort"
	intents := Parse(text)

	assert.Len(t, intents, 5)
	for _, intent := range intents {
		assert.Equal(t, int64(7), intent.Delta)
		assert.Equal(t, "shared effort", intent.Note)
	}
}

func TestParseLeading(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantDelta int64
		wantNote  string
		wantOK    bool
	}{
		{name: "negative with note", text: "-1 too slow", wantDelta: -1, wantNote: "too slow", wantOK: true},
		{name: "unsigned integer", text: "3 solid review", wantDelta: 3, wantNote: "solid review", wantOK: true},
		{name: "signed integer", text: "+10 hero", wantDelta: 10, wantNote: "hero", wantOK: true},
		{name: "plus plus literal", text: "++ nice", wantDelta: 1, wantNote: "nice", wantOK: true},
		{name: "minus minus literal", text: "--", wantDelta: -1, wantNote: "", wantOK: true},
		{name: "em dash literal", text: "— whatever", wantDelta: -1, wantNote: "whatever", wantOK: true},
		{name: "zero is parsed and left to the caller", text: "0 nothing", wantDelta: 0, wantNote: "nothing", wantOK: true},
		{name: "leading whitespace", text: "  +2 ok", wantDelta: 2, wantNote: "ok", wantOK: true},
		{name: "no leading delta", text: "thanks a lot", wantOK: false},
		{name: "empty", text: "", wantOK: false},
		{name: "overflow", text: "99999999999999999999 big", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, note, ok := ParseLeading(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantDelta, delta)
				assert.Equal(t, tt.wantNote, note)
			}
		})
	}
}
