// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"math"
	"strings"
	"time"
)

// =============================================================================
// SPINNERS
// =============================================================================

// SpinnerConfig holds the frames of a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// Duration returns the duration for each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// LineSpinner - Simple line rotation
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// DotsSpinner - Three dots, used while the assistant is answering
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// =============================================================================
// PROGRESS INDICATORS
// =============================================================================

// Progress bar characters.
var (
	ProgressFull    = "#"
	ProgressEmpty   = "-"
	ProgressPartial = []string{".", ":", "+", "#", "#", "#", "#"}
)

// RenderProgressBar creates a progress bar string of width characters
// for percent in [0, 100].
func RenderProgressBar(width int, percent float64) string {
	if width <= 0 {
		return ""
	}
	percent = math.Max(0, math.Min(100, percent))

	filledWidth := float64(width) * percent / 100
	fullBlocks := int(filledWidth)
	partialIndex := int((filledWidth - float64(fullBlocks)) * float64(len(ProgressPartial)))

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	var sb strings.Builder
	sb.Grow(width)

	for i := 0; i < fullBlocks && i < width; i++ {
		sb.WriteString(ProgressFull)
	}
	if fullBlocks < width && partialIndex > 0 {
		sb.WriteString(ProgressPartial[partialIndex-1])
		fullBlocks++
	}
	for i := fullBlocks; i < width; i++ {
		sb.WriteString(ProgressEmpty)
	}
	return sb.String()
}

// =============================================================================
// RATINGS
// =============================================================================

// RenderStars draws a 0-5 rating as five ASCII stars, rounding to the
// nearest whole star.
func RenderStars(rating float64) string {
	n := int(math.Round(math.Max(0, math.Min(5, rating))))
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}
