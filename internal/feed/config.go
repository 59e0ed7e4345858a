// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package feed

import "fmt"

// Weights are the for-you scoring constants.
//
//	score = likes*Like + comments*Comment + views*View + recency + followed*FollowingBoost
//
// The recency term is 1/(hours+1) and always has weight 1.
type Weights struct {
	// Like is the weight of one like. Default: 3.
	Like float64 `json:"like"`

	// Comment is the weight of one comment. Default: 4.
	Comment float64 `json:"comment"`

	// View is the weight of one view. Default: 1.
	View float64 `json:"view"`

	// FollowingBoost is added when the viewer follows the author. Default: 20.
	FollowingBoost float64 `json:"following_boost"`
}

// Config holds feed engine configuration.
type Config struct {
	Weights Weights `json:"weights"`

	// ForYouSize is the fixed size of the for-you page. Default: 20.
	ForYouSize int `json:"for_you_size"`

	// MaxCandidates optionally caps the for-you candidate set to the most
	// recent posts. Zero scores every post. Default: 0.
	MaxCandidates int `json:"max_candidates"`

	// DefaultPageSize is used when the caller sends no usable limit. Default: 10.
	DefaultPageSize int `json:"default_page_size"`

	// MaxPageSize bounds the following-feed limit. Default: 50.
	MaxPageSize int `json:"max_page_size"`
}

// DefaultWeights returns the production scoring constants.
func DefaultWeights() Weights {
	return Weights{Like: 3, Comment: 4, View: 1, FollowingBoost: 20}
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:         DefaultWeights(),
		ForYouSize:      20,
		MaxCandidates:   0,
		DefaultPageSize: 10,
		MaxPageSize:     50,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.Like < 0 {
		return fmt.Errorf("weights.like must be non-negative, got %f", c.Weights.Like)
	}
	if c.Weights.Comment < 0 {
		return fmt.Errorf("weights.comment must be non-negative, got %f", c.Weights.Comment)
	}
	if c.Weights.View < 0 {
		return fmt.Errorf("weights.view must be non-negative, got %f", c.Weights.View)
	}
	if c.Weights.FollowingBoost < 0 {
		return fmt.Errorf("weights.following_boost must be non-negative, got %f", c.Weights.FollowingBoost)
	}
	if c.ForYouSize < 1 {
		return fmt.Errorf("for_you_size must be positive, got %d", c.ForYouSize)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must be non-negative, got %d", c.MaxCandidates)
	}
	if c.MaxCandidates > 0 && c.MaxCandidates < c.ForYouSize {
		return fmt.Errorf("max_candidates must be >= for_you_size, got %d < %d", c.MaxCandidates, c.ForYouSize)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be positive, got %d", c.DefaultPageSize)
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max_page_size must be >= default_page_size, got %d < %d", c.MaxPageSize, c.DefaultPageSize)
	}
	return nil
}

// pageSize normalizes a caller-supplied limit.
func (c *Config) pageSize(limit int) int {
	if limit <= 0 {
		return c.DefaultPageSize
	}
	if limit > c.MaxPageSize {
		return c.MaxPageSize
	}
	return limit
}
