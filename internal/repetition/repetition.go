// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repetition

import "strings"

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultMinChunkSize is the smallest block of lines treated as a repeating unit.
	DefaultMinChunkSize = 50

	// DefaultMaxRepetitions is the number of consecutive copies considered excessive.
	DefaultMaxRepetitions = 2

	// Marker is appended (after a blank line) to text that was truncated.
	Marker = "[Note: Repetitive content detected and removed]"
)

// =============================================================================
// DETECTOR
// =============================================================================

// Result holds the outcome of a repetition scan.
type Result struct {
	// Text is the original input, or the truncated input followed by Marker.
	Text string

	// Found reports whether excessive repetition was detected.
	Found bool

	// ChunkSize is the size in lines of the repeating block (0 if not found).
	ChunkSize int

	// Start is the line index of the first copy of the block (0 if not found).
	Start int

	// Repetitions is the number of consecutive copies counted (0 if not found).
	Repetitions int
}

// Detector scans text for immediately repeating blocks of lines.
// Out-of-range settings, including the zero value, are clamped as in NewDetector.
type Detector struct {
	// MinChunkSize is the minimum number of consecutive lines in a block.
	MinChunkSize int

	// MaxRepetitions is the number of consecutive identical blocks that
	// counts as excessive, including the first one.
	MaxRepetitions int
}

// NewDetector creates a detector. Values below the usable range are clamped:
// a block needs at least one line, and a block must repeat at least twice.
func NewDetector(minChunkSize, maxRepetitions int) Detector {
	if minChunkSize < 1 {
		minChunkSize = 1
	}
	if maxRepetitions < 2 {
		maxRepetitions = 2
	}
	return Detector{
		MinChunkSize:   minChunkSize,
		MaxRepetitions: maxRepetitions,
	}
}

// DefaultDetector returns a detector using DefaultMinChunkSize and DefaultMaxRepetitions.
func DefaultDetector() Detector {
	return NewDetector(DefaultMinChunkSize, DefaultMaxRepetitions)
}

// Detect scans text and truncates it at the first excessive repetition.
// It returns the text unchanged and false when nothing repeats enough.
func Detect(text string, minChunkSize, maxRepetitions int) (string, bool) {
	res := NewDetector(minChunkSize, maxRepetitions).Filter(text)
	return res.Text, res.Found
}

// Filter runs the scan with the detector's settings.
//
// For each block size c from MinChunkSize to half the line count, and for
// each start line i, the block lines[i:i+c] is compared against the blocks
// that follow it. Comparison trims leading and trailing whitespace of the
// whole joined block, not of individual lines.
func (d Detector) Filter(text string) Result {
	d = NewDetector(d.MinChunkSize, d.MaxRepetitions)

	lines := strings.Split(text, "\n")
	n := len(lines)

	for c := d.MinChunkSize; c <= n/2; c++ {
		for i := 0; i <= n-c*d.MaxRepetitions; i++ {
			chunk := strings.TrimSpace(strings.Join(lines[i:i+c], "\n"))

			count := 1
			for pos := i + c; pos+c <= n; pos += c {
				next := strings.TrimSpace(strings.Join(lines[pos:pos+c], "\n"))
				if next != chunk {
					break
				}
				count++
			}

			if count >= d.MaxRepetitions {
				return Result{
					Text:        strings.Join(lines[:i+c], "\n") + "\n\n" + Marker,
					Found:       true,
					ChunkSize:   c,
					Start:       i,
					Repetitions: count,
				}
			}
		}
	}

	return Result{Text: text}
}
