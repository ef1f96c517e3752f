// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the llmchat packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: "~/" expansion for configured paths
//
// Text:
//   - TruncateWidth, Preview: display-width aware shortening
//   - PadRight, StringWidth: column alignment
//
// Logging:
//   - SetupLogging: route the standard logger and set a level
//   - Debugf, Infof, Warnf, Errorf: leveled wrappers around log.Printf
//
// # Usage
//
//	util.SetupLogging(io.Discard, util.LevelInfo)
//	util.Debugf("[chat] session %s started", id)
//
//	err := util.AtomicWriteFile(path, data, 0644)
package util
