package extract

import (
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/titanous/json5"

	"github.com/codeGROOVE-dev/fanscope/pkg/count"
	"github.com/codeGROOVE-dev/fanscope/pkg/htmlutil"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
)

// statePatterns locate embedded application state. Each captures from the
// opening brace onward; balancedObject trims the capture to one object.
var statePatterns = []*regexp.Regexp{
	regexp.MustCompile(`window\.__INITIAL_STATE__\s*=\s*(\{[\s\S]*)`),
	regexp.MustCompile(`window\.__APOLLO_STATE__\s*=\s*(\{[\s\S]*)`),
	regexp.MustCompile(`window\.__NUXT__\s*=\s*(\{[\s\S]*)`),
	regexp.MustCompile(`window\.__DATA__\s*=\s*(\{[\s\S]*)`),
	regexp.MustCompile(`window\.INIT_DATA\s*=\s*(\{[\s\S]*)`),
	regexp.MustCompile(`^\s*(\{[\s\S]*)`), // JSON-only scripts such as __NEXT_DATA__ or ld+json
	regexp.MustCompile(`"user"\s*:\s*(\{[\s\S]*)`),
	regexp.MustCompile(`"profile"\s*:\s*(\{[\s\S]*)`),
}

// flatObjectPattern is the fallback when a state blob does not parse: the
// innermost user or profile object without nested braces.
var flatObjectPattern = regexp.MustCompile(`"(?:user|userInfo|profile|author)"\s*:\s*(\{[^{}]*\})`)

// Candidate keys in priority order.
var (
	followerKeys = []string{"followerCount", "followersCount", "fanCount", "fansCount", "fans", "follower_count", "followers"}
	likeKeys     = []string{"likeCount", "likesCount", "totalLikes", "receivedLikeCount", "likedCount", "like_count", "likes", "heart"}
	avatarKeys   = []string{"avatar", "avatarUrl", "avatarLarger", "headUrl", "headurl", "profilePic", "avatar_url", "profile_pic_url"}
	nameKeys     = []string{"nickname", "displayName", "name", "userName", "user_name"}
	bioKeys      = []string{"bio", "signature", "description", "userText", "user_text"}
	verifiedKeys = []string{"verified", "isVerified", "is_verified", "verify"}
	userKeys     = []string{"username", "kwaiId", "uniqueId", "userId", "user_id"}
)

// scriptJSON parses embedded state objects out of each inline script and
// searches them for profile fields. Parse failures are skipped.
func scriptJSON(d *Document, rec *profile.Record) {
	for _, script := range d.Scripts {
		for _, re := range statePatterns {
			m := re.FindStringSubmatch(script)
			if len(m) < 2 {
				continue
			}
			obj, ok := parseObject(balancedObject(m[1]))
			if !ok {
				fm := flatObjectPattern.FindStringSubmatch(script)
				if len(fm) < 2 {
					continue
				}
				if obj, ok = parseObject(fm[1]); !ok {
					continue
				}
			}
			applyObject(obj, rec)
		}
	}
}

// parseObject decodes s as strict JSON, then as JSON5 for JavaScript-style literals.
func parseObject(s string) (map[string]any, bool) {
	if s == "" {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err == nil {
		return obj, true
	}
	obj = nil
	if err := json5.Unmarshal([]byte(s), &obj); err == nil && obj != nil {
		return obj, true
	}
	return nil, false
}

// balancedObject returns the prefix of s that forms one brace-balanced
// object, honouring string literals. It returns s unchanged if unbalanced.
func balancedObject(s string) string {
	depth := 0
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

func applyObject(obj map[string]any, rec *profile.Record) {
	if !count.IsValid(rec.FollowerCount) {
		if v, ok := findValue(obj, followerKeys, validCount); ok {
			setCount(&rec.FollowerCount, v)
		}
	}
	if !count.IsValid(rec.LikeCount) {
		if v, ok := findValue(obj, likeKeys, validCount); ok {
			setCount(&rec.LikeCount, v)
		}
	}
	if rec.AvatarURL == "" {
		if v, ok := findValue(obj, avatarKeys, isURL); ok {
			rec.AvatarURL = htmlutil.SecureURL(v)
		}
	}
	if rec.DisplayName == "" {
		if v, ok := findValue(obj, nameKeys, nonEmpty); ok {
			rec.DisplayName = v
		}
	}
	if rec.Bio == "" {
		if v, ok := findValue(obj, bioKeys, nonEmpty); ok {
			rec.Bio = v
		}
	}
	if rec.Username == "" {
		if v, ok := findValue(obj, userKeys, nonEmpty); ok {
			rec.Username = strings.TrimPrefix(v, "@")
		}
	}
	if !rec.Verified {
		if v, ok := findValue(obj, verifiedKeys, nonEmpty); ok {
			rec.Verified = truthy(v)
		}
	}
}

func validCount(s string) bool { return count.IsValid(s) }
func nonEmpty(s string) bool   { return strings.TrimSpace(s) != "" }
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}

func truthy(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// findValue searches obj breadth-first for each key in priority order and
// returns the first scalar value that accept approves.
func findValue(obj map[string]any, keys []string, accept func(string) bool) (string, bool) {
	for _, key := range keys {
		queue := []any{obj}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			switch n := node.(type) {
			case map[string]any:
				if raw, ok := n[key]; ok {
					if s, ok := scalar(raw); ok && accept(s) {
						return s, true
					}
				}
				for _, k := range slices.Sorted(maps.Keys(n)) {
					queue = append(queue, n[k])
				}
			case []any:
				queue = append(queue, n...)
			}
		}
	}
	return "", false
}

// scalar renders JSON scalar values as strings.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
