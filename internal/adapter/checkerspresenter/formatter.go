package checkerspresenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/park285/cheese-checkers/internal/msgcat"
	"github.com/park285/cheese-checkers/pkg/checkersdto"
)

// Formatter turns DTOs into short text messages using the message catalog.
type Formatter struct {
	catalog *msgcat.Catalog
}

func NewFormatter(catalog *msgcat.Catalog) *Formatter {
	return &Formatter{catalog: catalog}
}

// render falls back to the key itself when the catalog cannot serve it.
func (f *Formatter) render(key string, data any) string {
	if f == nil || f.catalog == nil {
		return key
	}
	text, err := f.catalog.Render(key, data)
	if err != nil {
		return key
	}
	return text
}

func (f *Formatter) Start(state *checkersdto.SessionState, resumed bool) string {
	if state == nil {
		return ""
	}
	var lines []string
	if resumed {
		lines = append(lines, f.render("checkers.start.resumed", map[string]any{"Moves": state.MoveCount}))
	} else {
		lines = append(lines, f.render("checkers.start.new", nil))
	}
	lines = append(lines, f.Status(state))
	if state.Profile != nil {
		lines = append(lines, f.rating(state.Profile, state.RatingDelta))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Status(state *checkersdto.SessionState) string {
	if state == nil {
		return ""
	}
	return f.render("checkers.status", map[string]any{
		"Turn":  titleCase(state.Turn),
		"Black": state.BlackPieces,
		"Red":   state.RedPieces,
	})
}

func (f *Formatter) Move(summary *checkersdto.MoveSummary) string {
	if summary == nil {
		return ""
	}
	var lines []string
	if m := summary.PendingComputerMove; m != nil {
		lines = append(lines, f.render("checkers.move.pending", map[string]any{"Move": m.Text}))
	}
	if m := summary.PlayerMove; m != nil {
		lines = append(lines, f.render("checkers.move.player", map[string]any{"Move": m.Text}))
	}
	if m := summary.ComputerMove; m != nil {
		lines = append(lines, f.render("checkers.move.computer", map[string]any{"Move": m.Text}))
	}
	if !summary.Finished {
		lines = append(lines, f.Status(summary.State))
		return strings.Join(lines, "\n")
	}
	if summary.Result == "win" {
		lines = append(lines, f.render("checkers.finish.win", nil))
	} else {
		lines = append(lines, f.render("checkers.finish.loss", nil))
	}
	if summary.Profile != nil {
		lines = append(lines, f.rating(summary.Profile, summary.RatingDelta))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Resign(state *checkersdto.SessionState) string {
	text := f.render("checkers.finish.resign", nil)
	if state != nil && state.Profile != nil {
		text += "\n" + f.rating(state.Profile, state.RatingDelta)
	}
	return text
}

func (f *Formatter) History(games []*checkersdto.CheckersGame) string {
	if len(games) == 0 {
		return f.render("checkers.history.empty", nil)
	}
	lines := []string{f.render("checkers.history.header", nil)}
	for _, g := range games {
		lines = append(lines, f.render("checkers.history.line", map[string]any{
			"ID":     g.ID,
			"Result": g.Result,
			"Method": strings.ReplaceAll(g.ResultMethod, "_", " "),
			"Moves":  g.MoveCount,
			"Date":   formatShortTime(g.EndedAt),
		}))
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) Profile(profile *checkersdto.CheckersProfile) string {
	if profile == nil {
		return f.render("checkers.profile.empty", nil)
	}
	return f.rating(profile, 0)
}

func (f *Formatter) Error(e checkersdto.DomainError) string {
	key := "checkers.errors." + e.Code
	if f != nil && f.catalog != nil && f.catalog.Has(key) {
		return f.render(key, nil)
	}
	return f.render("checkers.errors.internal", nil)
}

func (f *Formatter) rating(p *checkersdto.CheckersProfile, delta int) string {
	deltaText := ""
	if delta != 0 {
		deltaText = fmt.Sprintf("%+d", delta)
	}
	return f.render("checkers.rating", map[string]any{
		"Rating": p.Rating,
		"Delta":  deltaText,
		"Wins":   p.Wins,
		"Losses": p.Losses,
		"Games":  p.GamesPlayed,
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("01/02 15:04")
}
