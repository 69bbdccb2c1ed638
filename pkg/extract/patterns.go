package extract

import (
	"regexp"

	"github.com/codeGROOVE-dev/fanscope/pkg/count"
)

// num captures a count with optional separators and k/m/b suffix: "4.5K", "12,345".
const num = `(\d[\d.,]*(?:\s?[KkMmBb]\b)?)`

// countPatterns holds ordered regular expressions for one count field.
type countPatterns []*regexp.Regexp

func compile(exprs ...string) countPatterns {
	out := make(countPatterns, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// first returns the first validator-accepted capture across the patterns,
// trying every match of a pattern before moving to the next one. A number
// sitting between the other field's keyword and a further number, as 1,234
// in "Followers 1,234 Likes 5.6K", belongs to that other field and is
// skipped. other may be nil.
func (ps countPatterns) first(text string, other *regexp.Regexp) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, re := range ps {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			if other != nil && labelsOther(text, m[2], m[1], other) {
				continue
			}
			if v, ok := count.Accept(text[m[2]:m[3]]); ok {
				return v, true
			}
		}
	}
	return "", false
}

// Keyword suffixes used to spot a number that labels the other field.
var (
	endsWithLikeKeyword     = regexp.MustCompile(`(?i)\b(?:curtidas?|likes?)[\s:·\-]{0,3}$`)
	endsWithFollowerKeyword = regexp.MustCompile(`(?i)(?:\bseguidor(?:es)?|\bfollowers?|fãs|\bfans?)[\s:·\-]{0,3}$`)
	leadingNumber           = regexp.MustCompile(`^[\s:·\-]{0,3}\d`)
)

// labelsOther reports whether the number at text[start:] is preceded by a
// keyword matching other and the match ending at end is followed by another number.
func labelsOther(text string, start, end int, other *regexp.Regexp) bool {
	before := text[max(0, start-32):start]
	after := text[end:min(len(text), end+8)]
	return other.MatchString(before) && leadingNumber.MatchString(after)
}

// Meta description patterns, Portuguese first.
var (
	metaLikePatterns = compile(
		`(?i)`+num+`\s*curtidas\b`,
		`(?i)`+num+`\s*likes\b`,
		`(?i)\bcurtidas:\s*`+num,
		`(?i)\blikes:\s*`+num,
	)
	metaFollowerPatterns = compile(
		`(?i)`+num+`\s*seguidores\b`,
		`(?i)`+num+`\s*followers\b`,
		`(?i)`+num+`\s*fans\b`,
		`(?i)\bseguidores:\s*`+num,
		`(?i)\bfollowers:\s*`+num,
	)
)

// Full-page patterns: the meta patterns plus JSON-like fragments.
var (
	pageLikePatterns = append(compile(
		`(?i)"(?:likes|likeCount|like_count|curtidas)"\s*:\s*"?`+num,
		`(?i)\[\s*"?`+num+`"?\s*\]\s*(?:curtidas|likes)\b`,
	), metaLikePatterns...)
	pageFollowerPatterns = append(compile(
		`(?i)"(?:followers|followerCount|follower_count|fans|seguidores)"\s*:\s*"?`+num,
		`(?i)\[\s*"?`+num+`"?\s*\]\s*(?:seguidores|followers|fans)\b`,
	), metaFollowerPatterns...)
)

// Patterns for the site's own script variable names.
var (
	scriptLikePatterns = compile(
		`"?\blikeCount"?\s*[:=]\s*"?`+num,
		`"?\btotalLikes"?\s*[:=]\s*"?`+num,
		`"?\breceivedLikeCount"?\s*[:=]\s*"?`+num,
		`"?\blikedCount"?\s*[:=]\s*"?`+num,
		`"?\blike_count"?\s*[:=]\s*"?`+num,
		`"?\btotalFavorited"?\s*[:=]\s*"?`+num,
	)
	scriptFollowerPatterns = compile(
		`"?\bfollowerCount"?\s*[:=]\s*"?`+num,
		`"?\bfollowersCount"?\s*[:=]\s*"?`+num,
		`"?\bfanCount"?\s*[:=]\s*"?`+num,
		`"?\bfansCount"?\s*[:=]\s*"?`+num,
		`"?\bfollower_count"?\s*[:=]\s*"?`+num,
		`"?\bfans_count"?\s*[:=]\s*"?`+num,
	)
)

// Last-resort "number near keyword" patterns, singular and plural forms.
var (
	looseLikePatterns = compile(
		`(?i)`+num+`[\s:·\-]{0,3}(?:curtidas?|likes?)\b`,
		`(?i)\b(?:curtidas?|likes?)\b[\s:·\-]{0,3}`+num,
	)
	looseFollowerPatterns = compile(
		`(?i)`+num+`[\s:·\-]{0,3}(?:seguidor(?:es)?|followers?|fãs|fans?)\b`,
		`(?i)\b(?:seguidor(?:es)?|followers?|fãs|fans?)\b[\s:·\-]{0,3}`+num,
	)
)

// numberToken finds the first count-like token in element text.
var numberToken = regexp.MustCompile(num)
