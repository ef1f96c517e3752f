// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repetition detects runaway line-block repetition in model output.
//
// Autoregressive models occasionally fall into a loop and emit the same
// block of lines over and over until they hit the token limit. This package
// scans a completion for a block of consecutive lines that is immediately
// repeated, and truncates the completion after the first copy.
//
// # Key Types
//
//   - Detector: scanner configured with a minimum block size and a
//     repetition threshold
//   - Result: the (possibly truncated) text plus a flag
//
// # Usage
//
//	text, found := repetition.Detect(reply, 50, 2)
//	if found {
//	    fmt.Println("[Warning: Repetitive content was detected and removed from response]")
//	}
//
// Or with a reusable detector:
//
//	d := repetition.NewDetector(repetition.DefaultMinChunkSize, repetition.DefaultMaxRepetitions)
//	res := d.Filter(reply)
//
// # Scan Order
//
// Block sizes are tried from smallest to largest and, within a size, start
// positions from first to last. The first block that reaches the threshold
// wins, so the shortest loop found at the earliest point decides where the
// text is cut.
package repetition
