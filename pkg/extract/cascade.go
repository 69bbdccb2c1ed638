package extract

import (
	"context"
	"log/slog"

	"github.com/codeGROOVE-dev/fanscope/pkg/count"
	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
)

// Strategy fills whatever fields of rec it can from d.
// Strategies perform no I/O and must not overwrite a field that already
// holds a value (strings) or a valid value (counts).
type Strategy struct {
	Apply func(d *Document, rec *profile.Record)
	Name  string
}

// Cascade is the ordered list of strategies run on every attempt.
var Cascade = []Strategy{
	{Name: "url-username", Apply: usernameFromURL},
	{Name: "meta-tags", Apply: metaTags},
	{Name: "meta-description", Apply: metaDescriptionCounts},
	{Name: "page-text", Apply: pageTextCounts},
	{Name: "script-json", Apply: scriptJSON},
	{Name: "script-regex", Apply: scriptRegex},
	{Name: "attribute-heuristics", Apply: attributeCounts},
	{Name: "avatar-selectors", Apply: avatarSelectors},
	{Name: "aggressive-scan", Apply: aggressiveScan},
}

// Run applies every strategy in order to rec.
// All strategies run even once rec is complete, since each may fill
// fields the others could not.
func Run(ctx context.Context, d *Document, rec *profile.Record, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, s := range Cascade {
		before := *rec
		s.Apply(d, rec)
		if *rec != before {
			logger.DebugContext(ctx, "strategy filled fields",
				"strategy", s.Name,
				"followers", rec.FollowerCount,
				"likes", rec.LikeCount,
				"name", rec.DisplayName != before.DisplayName,
				"avatar", rec.AvatarURL != before.AvatarURL)
		}
	}
}

// Page parses body and runs the cascade on a fresh record.
func Page(ctx context.Context, body []byte, pageURL string, logger *slog.Logger) (*profile.Record, error) {
	d, err := NewDocument(body, pageURL)
	if err != nil {
		return nil, err
	}
	rec := &profile.Record{}
	Run(ctx, d, rec, logger)
	return rec, nil
}

// setCount writes the normalized raw value into field unless field is already valid.
func setCount(field *string, raw string) bool {
	if count.IsValid(*field) {
		return false
	}
	v, ok := count.Accept(raw)
	if !ok {
		return false
	}
	*field = v
	return true
}

// setString writes v into field if field is empty.
func setString(field *string, v string) {
	if *field == "" && v != "" {
		*field = v
	}
}
