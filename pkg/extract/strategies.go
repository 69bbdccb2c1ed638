package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/codeGROOVE-dev/fanscope/pkg/count"
	"github.com/codeGROOVE-dev/fanscope/pkg/htmlutil"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
	"github.com/codeGROOVE-dev/fanscope/pkg/urlnorm"
)

func usernameFromURL(d *Document, rec *profile.Record) {
	setString(&rec.Username, urlnorm.Username(d.URL))
}

func metaTags(d *Document, rec *profile.Record) {
	setString(&rec.DisplayName, htmlutil.Meta(d.DOM, "og:title"))
	if img := htmlutil.Meta(d.DOM, "og:image"); img != "" {
		setString(&rec.AvatarURL, htmlutil.SecureURL(img))
	}
	setString(&rec.Bio, d.Description)
}

func metaDescriptionCounts(d *Document, rec *profile.Record) {
	fillCounts(rec, d.Description, metaFollowerPatterns, metaLikePatterns)
}

func pageTextCounts(d *Document, rec *profile.Record) {
	if rec.Complete() {
		return
	}
	fillCounts(rec, d.Corpus(), pageFollowerPatterns, pageLikePatterns)
}

func scriptRegex(d *Document, rec *profile.Record) {
	if rec.Complete() || len(d.Scripts) == 0 {
		return
	}
	fillCounts(rec, d.ScriptText(), scriptFollowerPatterns, scriptLikePatterns)
}

func aggressiveScan(d *Document, rec *profile.Record) {
	if rec.Complete() {
		return
	}
	fillCounts(rec, d.Corpus(), looseFollowerPatterns, looseLikePatterns)
}

// fillCounts runs follower and like patterns over text for whichever counts are unresolved.
func fillCounts(rec *profile.Record, text string, followers, likes countPatterns) {
	if !count.IsValid(rec.FollowerCount) {
		if v, ok := followers.first(text, endsWithLikeKeyword); ok {
			setCount(&rec.FollowerCount, v)
		}
	}
	if !count.IsValid(rec.LikeCount) {
		if v, ok := likes.first(text, endsWithFollowerKeyword); ok {
			setCount(&rec.LikeCount, v)
		}
	}
}

// Element heuristics for counts: class, id, and data attribute names.
var (
	followerSelectors = []string{
		"[data-followers]",
		"[data-fans]",
		`[class*="follower"]`,
		`[id*="follower"]`,
		`[class*="seguidor"]`,
		`[class*="fans"]`,
		`[class*="fan-count"]`,
	}
	likeSelectors = []string{
		"[data-likes]",
		`[class*="like"]`,
		`[id*="like"]`,
		`[class*="curtida"]`,
	}
	countDataAttrs = []string{"data-followers", "data-fans", "data-likes", "data-count", "data-value", "title"}
)

func attributeCounts(d *Document, rec *profile.Record) {
	if !count.IsValid(rec.FollowerCount) {
		setCount(&rec.FollowerCount, firstElementCount(d.DOM, followerSelectors))
	}
	if !count.IsValid(rec.LikeCount) {
		setCount(&rec.LikeCount, firstElementCount(d.DOM, likeSelectors))
	}
}

// firstElementCount returns the first valid count-like token found in the
// data attributes or text of elements matching selectors.
func firstElementCount(dom *goquery.Document, selectors []string) string {
	var found string
	for _, sel := range selectors {
		dom.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			candidates := make([]string, 0, len(countDataAttrs)+1)
			for _, attr := range countDataAttrs {
				if v, ok := s.Attr(attr); ok {
					candidates = append(candidates, v)
				}
			}
			candidates = append(candidates, htmlutil.CollapseSpace(s.Text()))
			for _, c := range candidates {
				tok := numberToken.FindString(c)
				if _, ok := count.Accept(tok); ok {
					found = tok
					return false
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

var (
	avatarSelectorList = []string{
		`img[alt*="profile"]`,
		`img[alt*="Profile"]`,
		`img[alt*="avatar"]`,
		`img[alt*="Avatar"]`,
		`[class*="avatar"] img`,
		`img[class*="avatar"]`,
		`[class*="user-head"] img`,
		`[class*="profile-pic"] img`,
		`img[src*="avatar"]`,
		`img[src*="head"]`,
		`img[src*="profile"]`,
	}
	avatarSrcAttrs = []string{"src", "data-src", "data-lazy-src", "lazy-src", "data-original"}
)

func avatarSelectors(d *Document, rec *profile.Record) {
	if rec.AvatarURL != "" {
		return
	}
	for _, sel := range avatarSelectorList {
		var found string
		d.DOM.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range avatarSrcAttrs {
				if v, ok := s.Attr(attr); ok && strings.Contains(v, "http") {
					found = htmlutil.SecureURL(v)
					return false
				}
			}
			return true
		})
		if found != "" {
			rec.AvatarURL = found
			return
		}
	}
}
