package loop

import (
	"fmt"
	"net/url"

	"github.com/tomz197/capylabs/internal/ui"
)

// sharePage is linked from the share message.
const sharePage = "https://github.com/tomz197/capylabs"

// ShareURL returns a tweet-intent link announcing score.
func ShareURL(score int) string {
	q := url.Values{}
	q.Set("text", fmt.Sprintf("I scored %d in CapyLabs 01!", score))
	q.Set("url", sharePage)
	q.Set("hashtags", "CapyLabs01")
	return "https://twitter.com/intent/tweet?" + q.Encode()
}

func titleLines() []ui.Line {
	return []ui.Line{
		{Text: "CapyLabs 01", Role: ui.RoleHeading},
		{},
		{Text: "Click to start", Role: ui.RoleBody},
		{},
		{Text: "SPACE or left click: start / shoot   A/D, arrows, 1-9 or mouse: aim   Q: quit", Role: ui.RoleHint},
	}
}

func hudLines() []ui.Line {
	return []ui.Line{
		{Text: "Hold them off until the timer runs out", Role: ui.RoleHint},
	}
}

func gameOverLines(res Result) []ui.Line {
	headline := "Gameover!"
	if res.Reason == ReasonCleared {
		headline = "Gameover! You survived"
	}
	return []ui.Line{
		{Text: headline, Role: ui.RoleHeading},
		{},
		{Text: fmt.Sprintf("Score: %d", res.Score), Role: ui.RoleBody},
		{},
		{Text: "Right Click (or R) to restart", Role: ui.RoleHint},
		{},
		{Text: "Share: " + ShareURL(res.Score), Role: ui.RoleLink},
	}
}
