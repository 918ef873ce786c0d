// Package ui is the on-screen overlay and click service: it shows text panels
// and the running score, and dispatches primary/secondary clicks to
// cancellable subscriptions.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Token identifies a shown panel or a click subscription.
type Token uint64

// Button identifies a click source.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Panel identifies an overlay layout.
type Panel int

const (
	PanelNone Panel = iota
	PanelTitle
	PanelHUD
	PanelGameOver
)

func (p Panel) String() string {
	switch p {
	case PanelTitle:
		return "title"
	case PanelHUD:
		return "hud"
	case PanelGameOver:
		return "gameover"
	default:
		return "none"
	}
}

// Role selects how a panel line is styled.
type Role int

const (
	RoleHeading Role = iota
	RoleBody
	RoleHint
	RoleLink
)

// Line is one line of panel text.
type Line struct {
	Text string
	Role Role
}

type shownPanel struct {
	token Token
	panel Panel
	lines []Line
}

type clickSub struct {
	token     Token
	button    Button
	fn        func()
	cancelled bool
}

// Display holds the overlay state. It is used from the game loop goroutine only.
type Display struct {
	next   Token
	panels []*shownPanel // stack; the last entry is visible
	score  int

	subs     []*clickSub
	subIndex map[Token]*clickSub

	styles     map[Role]lipgloss.Style
	scoreStyle lipgloss.Style
}

// NewDisplay creates an empty display.
func NewDisplay() *Display {
	return &Display{
		subIndex: make(map[Token]*clickSub),
		styles: map[Role]lipgloss.Style{
			RoleHeading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")),
			RoleBody:    lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
			RoleHint:    lipgloss.NewStyle().Faint(true),
			RoleLink:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1C9BF2")).Underline(true),
		},
		scoreStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FDFFFC")),
	}
}

// Show makes panel visible with the given lines until the returned token is
// cancelled. Showing a panel hides, but does not cancel, the previous one.
func (d *Display) Show(panel Panel, lines ...Line) Token {
	d.next++
	d.panels = append(d.panels, &shownPanel{token: d.next, panel: panel, lines: lines})
	return d.next
}

// ShowScore updates the score shown by the HUD panel.
func (d *Display) ShowScore(total int) {
	d.score = total
}

// Score returns the score currently displayed.
func (d *Display) Score() int {
	return d.score
}

// Current returns the visible panel.
func (d *Display) Current() Panel {
	if len(d.panels) == 0 {
		return PanelNone
	}
	return d.panels[len(d.panels)-1].panel
}

// OnPrimaryClick subscribes fn to primary clicks.
func (d *Display) OnPrimaryClick(fn func()) Token {
	return d.subscribe(ButtonPrimary, fn)
}

// OnSecondaryClick subscribes fn to secondary clicks.
func (d *Display) OnSecondaryClick(fn func()) Token {
	return d.subscribe(ButtonSecondary, fn)
}

func (d *Display) subscribe(b Button, fn func()) Token {
	d.next++
	s := &clickSub{token: d.next, button: b, fn: fn}
	d.subs = append(d.subs, s)
	d.subIndex[s.token] = s
	return s.token
}

// Cancel hides a panel or removes a click subscription. Unknown or already
// cancelled tokens are ignored.
func (d *Display) Cancel(tok Token) {
	if s, ok := d.subIndex[tok]; ok {
		s.cancelled = true
		delete(d.subIndex, tok)
		kept := d.subs[:0]
		for _, other := range d.subs {
			if !other.cancelled {
				kept = append(kept, other)
			}
		}
		d.subs = kept
		return
	}
	for i, p := range d.panels {
		if p.token == tok {
			d.panels = append(d.panels[:i], d.panels[i+1:]...)
			return
		}
	}
}

// Subscriptions returns the number of live click subscriptions plus shown panels.
func (d *Display) Subscriptions() int {
	return len(d.subIndex) + len(d.panels)
}

// Click dispatches a click to the subscriptions that exist when it arrives.
// A subscription added by a handler first sees the next click; one cancelled
// by an earlier handler is skipped.
func (d *Display) Click(b Button) {
	snapshot := make([]*clickSub, len(d.subs))
	copy(snapshot, d.subs)
	for _, s := range snapshot {
		if s.cancelled || s.button != b {
			continue
		}
		s.fn()
	}
}

// Render returns the styled overlay lines, each centered in width columns.
func (d *Display) Render(width int) []string {
	if len(d.panels) == 0 {
		return nil
	}
	top := d.panels[len(d.panels)-1]
	var out []string
	if top.panel == PanelHUD {
		score := d.scoreStyle.Render(fmt.Sprintf("Score: %d", d.score))
		out = append(out, lipgloss.PlaceHorizontal(width, lipgloss.Center, score))
	}
	for _, l := range top.lines {
		if l.Text == "" {
			out = append(out, "")
			continue
		}
		styled := d.styles[l.Role].Render(l.Text)
		out = append(out, lipgloss.PlaceHorizontal(width, lipgloss.Center, styled))
	}
	return out
}
