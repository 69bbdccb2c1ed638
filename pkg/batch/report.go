package batch

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/codeGROOVE-dev/fanscope/pkg/profile"
)

// RenderTable writes results as a table. Unknown counts render as "-".
func RenderTable(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Profile", "Name", "Followers", "Likes", "Status", "Time"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Followers", Align: text.AlignRight},
		{Name: "Likes", Align: text.AlignRight},
		{Name: "Time", Align: text.AlignRight},
	})

	var ok, invalid, missing, failed int
	for _, r := range results {
		name, followers, likes := "", "-", "-"
		if r.Record != nil {
			name = profile.CleanName(r.Record.DisplayName, r.Record.Username)
			followers = orDash(r.Record.FollowerCount)
			likes = orDash(r.Record.LikeCount)
		}
		status := "ok"
		switch {
		case r.Err != nil:
			status = "error: " + r.Error
			failed++
		case r.NotFound:
			status = "not found"
			missing++
		case r.InvalidData:
			status = "invalid data"
			invalid++
		default:
			ok++
		}
		t.AppendRow(table.Row{r.URL, name, followers, likes, status, r.Elapsed.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{"", "", "", "", summary(ok, invalid, missing, failed), ""})
	t.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func summary(ok, invalid, missing, failed int) string {
	return fmt.Sprintf("%d ok, %d invalid, %d not found, %d failed", ok, invalid, missing, failed)
}
