// Package profile defines the record produced by one profile extraction.
package profile

import (
	"errors"
	"regexp"
	"strings"

	"github.com/codeGROOVE-dev/fanscope/pkg/count"
)

// Common errors returned while fetching profile pages.
var (
	ErrBlocked         = errors.New("blocked by site")
	ErrProfileNotFound = errors.New("profile not found")
	ErrRateLimited     = errors.New("rate limited")
)

// Record holds the data extracted from a single profile page.
// It is created fresh for each extraction and filled in place by the cascade.
// Counts are either empty (unknown) or values accepted by count.IsValid.
type Record struct {
	Username      string `json:"username"`
	DisplayName   string `json:"displayName"` // raw, may carry a site-appended suffix
	AvatarURL     string `json:"avatarUrl"`
	FollowerCount string `json:"followerCount"`
	LikeCount     string `json:"likeCount"`
	Bio           string `json:"bio"`
	Verified      bool   `json:"verified"`
}

// Complete reports whether both follower and like counts hold valid values.
func (r *Record) Complete() bool {
	return count.IsValid(r.FollowerCount) && count.IsValid(r.LikeCount)
}

// ClearInvalid blanks any count that never validated so callers see "" for unknown.
func (r *Record) ClearInvalid() {
	if !count.IsValid(r.FollowerCount) {
		r.FollowerCount = ""
	}
	if !count.IsValid(r.LikeCount) {
		r.LikeCount = ""
	}
}

var (
	siteSuffixPattern = regexp.MustCompile(`(?i)\s*(?:[|\-–]\s*kwai|\bon\s+kwai|\bno\s+kwai)\b.*$`)
	handlePattern     = regexp.MustCompile(`\s*\(@[^)]*\)\s*`)
)

// CleanName strips the suffixes the site appends to og:title values,
// such as "Name (@handle) | Kwai". Records keep the raw title; callers
// that display names clean them.
func CleanName(name, username string) string {
	s := siteSuffixPattern.ReplaceAllString(name, "")
	s = handlePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if username != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, "@"+username))
	}
	return s
}
