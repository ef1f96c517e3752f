// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repetition

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// block returns n distinct lines prefixed with tag.
func block(tag string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s line %d", tag, i)
	}
	return lines
}

func join(parts ...[]string) string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return strings.Join(all, "\n")
}

// =============================================================================
// PASSTHROUGH
// =============================================================================

func TestDetect_ShortTextUnchanged(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single line", "hello"},
		{"just under twice min", join(block("a", 99))},
		{"repeating but too short", join(block("a", 49), block("a", 49))},
		{"blank lines", strings.Repeat("\n", 60)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := Detect(tc.text, DefaultMinChunkSize, DefaultMaxRepetitions)
			assert.False(t, found)
			assert.Equal(t, tc.text, got)
		})
	}
}

func TestDetect_NoRepetition(t *testing.T) {
	text := join(block("a", 300))

	got, found := Detect(text, DefaultMinChunkSize, DefaultMaxRepetitions)

	assert.False(t, found)
	assert.Equal(t, text, got)
}

// =============================================================================
// TRUNCATION
// =============================================================================

func TestDetect_TwoCopies(t *testing.T) {
	a := block("a", DefaultMinChunkSize)
	text := join(a, a)

	got, found := Detect(text, DefaultMinChunkSize, DefaultMaxRepetitions)

	require.True(t, found)
	assert.Equal(t, join(a)+"\n\n"+Marker, got)
}

func TestDetect_ThreeCopiesCutAfterFirst(t *testing.T) {
	a := block("a", DefaultMinChunkSize)
	text := join(a, a, a)

	res := DefaultDetector().Filter(text)

	require.True(t, res.Found)
	assert.Equal(t, join(a)+"\n\n"+Marker, res.Text)
	assert.Equal(t, DefaultMinChunkSize, res.ChunkSize)
	assert.Equal(t, 0, res.Start)
	assert.Equal(t, 3, res.Repetitions)
}

func TestDetect_PreambleKept(t *testing.T) {
	intro := block("intro", 5)
	a := block("loop", 50)
	text := join(intro, a, a)

	got, found := Detect(text, 50, 2)

	require.True(t, found)
	assert.Equal(t, join(intro, a)+"\n\n"+Marker, got)
}

func TestDetect_TrailingNewline(t *testing.T) {
	a := block("a", 50)
	text := join(a, a) + "\n"

	got, found := Detect(text, 50, 2)

	require.True(t, found)
	assert.Equal(t, join(a)+"\n\n"+Marker, got)
}

func TestDetect_ComparisonTrimsWholeBlock(t *testing.T) {
	a := block("a", 50)
	b := append([]string(nil), a...)
	// Only the outer edges of the joined block are trimmed.
	b[0] = "   " + b[0]
	b[len(b)-1] = b[len(b)-1] + "\t "

	got, found := Detect(join(a, b), 50, 2)

	require.True(t, found)
	assert.Equal(t, join(a)+"\n\n"+Marker, got)
}

func TestDetect_InnerWhitespaceMatters(t *testing.T) {
	a := block("a", 50)
	b := append([]string(nil), a...)
	b[10] = b[10] + "  "

	text := join(a, b)
	got, found := Detect(text, 50, 2)

	assert.False(t, found)
	assert.Equal(t, text, got)
}

func TestDetect_SmallestChunkWins(t *testing.T) {
	small := block("small", 3)
	large := block("large", 7)
	text := join(small, small, block("gap", 4), large, large)

	res := NewDetector(3, 2).Filter(text)

	require.True(t, res.Found)
	assert.Equal(t, 3, res.ChunkSize)
	assert.Equal(t, 0, res.Start)
	assert.Equal(t, join(small)+"\n\n"+Marker, res.Text)
}

func TestDetect_SmallerChunkLaterBeatsLargerEarlier(t *testing.T) {
	large := block("large", 6)
	small := block("small", 4)
	text := join(large, large, small, small)

	res := NewDetector(4, 2).Filter(text)

	require.True(t, res.Found)
	assert.Equal(t, 4, res.ChunkSize)
	assert.Equal(t, 12, res.Start)
	assert.Equal(t, join(large, large, small)+"\n\n"+Marker, res.Text)
}

func TestDetect_EarliestPositionWithinSize(t *testing.T) {
	x := block("x", 2)
	y := block("y", 2)
	text := join(block("pad", 1), x, x, y, y)

	res := NewDetector(2, 2).Filter(text)

	require.True(t, res.Found)
	assert.Equal(t, 1, res.Start)
	assert.Equal(t, join(block("pad", 1), x)+"\n\n"+Marker, res.Text)
}

func TestDetect_ThresholdThree(t *testing.T) {
	a := block("a", 5)

	twice := join(a, a)
	got, found := Detect(twice, 5, 3)
	assert.False(t, found)
	assert.Equal(t, twice, got)

	thrice := join(a, a, a)
	got, found = Detect(thrice, 5, 3)
	assert.True(t, found)
	assert.Equal(t, join(a)+"\n\n"+Marker, got)
}

func TestDetect_EmptyLinesParticipate(t *testing.T) {
	a := []string{"x", "", "y", ""}
	text := join(a, a)

	got, found := Detect(text, 4, 2)

	require.True(t, found)
	assert.Equal(t, "x\n\ny\n"+"\n\n"+Marker, got)
}

func TestDetect_Idempotent(t *testing.T) {
	texts := []string{
		join(block("a", 120)),
		"short reply",
		join(block("a", 50), block("b", 50)),
	}

	for _, text := range texts {
		first, found := Detect(text, 50, 2)
		require.False(t, found)
		second, found2 := Detect(first, 50, 2)
		assert.False(t, found2)
		assert.Equal(t, first, second)
	}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

func TestNewDetector_Clamps(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		wantMin  int
		wantMax  int
	}{
		{"defaults", 50, 2, 50, 2},
		{"zero chunk", 0, 2, 1, 2},
		{"negative chunk", -5, 2, 1, 2},
		{"single repetition", 10, 1, 10, 2},
		{"larger threshold", 10, 4, 10, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDetector(tc.min, tc.max)
			assert.Equal(t, tc.wantMin, d.MinChunkSize)
			assert.Equal(t, tc.wantMax, d.MaxRepetitions)
		})
	}
}

func TestDetector_ZeroValueIsUsable(t *testing.T) {
	var d Detector
	res := d.Filter("a\na")

	require.True(t, res.Found)
	assert.Equal(t, "a\n\n"+Marker, res.Text)
}
