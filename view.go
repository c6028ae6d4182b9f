package main

import (
	"fmt"
	"strings"
	"time"

	"akaun-master/internal/catalog"
	"akaun-master/internal/game"
	"akaun-master/internal/scoring"
	"akaun-master/internal/state"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // wrong card waiting to bounce
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // placed card
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // spare copy about to clear
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Reverse(true)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const (
	labelWidth  = 30
	amountWidth = 11
	bankWidth   = 72
)

func (s *LocalState) View() string {
	var body string
	switch s.Session.Screen() {
	case game.ScreenWelcome:
		body = s.viewWelcome()
	case game.ScreenMenu:
		body = s.viewMenu()
	case game.ScreenGame:
		body = s.viewGame()
	case game.ScreenLeaderboard:
		body = s.viewLeaderboard()
	}
	if s.err != nil {
		body += "\n" + redStyle.Render(s.err.Error())
	}
	return body + "\n"
}

func (s *LocalState) viewWelcome() string {
	return titleStyle.Render("AKAUN MASTER") + "\n\n" +
		"Who is playing?\n\n" +
		s.nameInput.View() + "\n\n" +
		dimStyle.Render("enter: continue • ctrl+c: quit")
}

func (s *LocalState) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AKAUN MASTER") + "\n")
	b.WriteString(fmt.Sprintf("Hello, %s. Pick a statement to complete.\n\n", boldStyle.Render(s.Session.Player)))

	for i, l := range s.Session.Catalog.Levels() {
		line := fmt.Sprintf("Level %s  %s", l.ID, l.Summary)
		if l.Summary == "" {
			line = fmt.Sprintf("Level %s  %s", l.ID, l.Subtitle)
		}
		if i == s.menuCursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n" + dimStyle.Render("↑/↓: choose • enter: play • s: scores • q: quit"))
	return b.String()
}

func (s *LocalState) viewGame() string {
	g := s.Session.Current
	st := g.State

	var b strings.Builder
	b.WriteString(titleStyle.Render(st.Level.Title) + "\n")
	b.WriteString(st.Level.Subtitle + "\n\n")
	b.WriteString(boxStyle.Render(s.renderStatement(st)) + "\n")
	b.WriteString(s.renderBank(st) + "\n\n")

	status := fmt.Sprintf("TIME: %s | MISTAKES: %d | FILLED: %d/%d",
		formatSeconds(g.Elapsed), st.Mistakes, st.Filled(), len(st.Level.SubSlots()))
	b.WriteString(yellowStyle.Render(status) + "\n")

	if s.held != nil {
		b.WriteString("Holding " + boldStyle.Render(s.held.item.Label) + ". Choose a slot and press enter.\n")
	} else if s.message != "" {
		b.WriteString(s.message + "\n")
	}
	b.WriteString(dimStyle.Render("tab: bank/statement • ←/→ ↑/↓: move • enter: pick up/drop • esc: cancel/menu • ctrl+r: restart"))
	return b.String()
}

func (s *LocalState) renderStatement(st *state.State) string {
	subs := st.Level.SubSlots()
	var cursor catalog.SubSlotID
	if s.focus == focusBoard && len(subs) > 0 {
		cursor = subs[s.boardCursor].ID
	}

	var b strings.Builder
	for _, slot := range st.Level.Slots {
		var label string
		switch {
		case !slot.IsDropTarget():
			label = slot.Label()
		case slot.HasOperator:
			label = s.renderSubSlot(st, slot, catalog.KindOp, cursor, 7)
			if slot.Owns(catalog.KindMain) {
				label += " " + s.renderSubSlot(st, slot, catalog.KindMain, cursor, labelWidth-8)
			}
		default:
			label = s.renderSubSlot(st, slot, catalog.KindMain, cursor, labelWidth)
		}
		if slot.IsHeader() {
			label = boldStyle.Render(label)
		}

		row := padRight(strings.Repeat("  ", slot.Indent)+label, labelWidth+2)
		for col := 0; col < 3; col++ {
			amount := ""
			if col == slot.Column {
				amount = slot.Display
			}
			row += fmt.Sprintf("%*s", amountWidth, amount)
		}
		b.WriteString(row + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *LocalState) renderSubSlot(st *state.State, slot catalog.Slot, k catalog.Kind, cursor catalog.SubSlotID, width int) string {
	id := slot.Address(k)
	text := strings.Repeat("·", width-2)
	style := dimStyle

	if it, ok := st.Placements.Get(id); ok {
		text = it.Label
		switch {
		case st.ErrorSlot == id:
			style = redStyle
		case st.IsPending(id):
			style = yellowStyle
		default:
			style = greenStyle
		}
	}

	cell := "[" + padRight(truncate(text, width-2), width-2) + "]"
	if id == cursor {
		return cursorStyle.Render(cell)
	}
	return style.Render(cell)
}

func (s *LocalState) renderBank(st *state.State) string {
	items := st.Bank.Items()
	if len(items) == 0 {
		return dimStyle.Render("The bank is empty.")
	}

	var lines []string
	line := ""
	for i, it := range items {
		card := "‹" + it.Label + "›"
		switch {
		case s.held != nil && s.held.item.ID == it.ID:
			card = boldStyle.Render(card)
		case s.focus == focusBank && i == s.bankCursor:
			card = cursorStyle.Render(card)
		}
		if line != "" && lipgloss.Width(line)+lipgloss.Width(card)+1 > bankWidth {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += card
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func (s *LocalState) viewLeaderboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("LEADERBOARD") + "\n\n")

	if r := s.Session.LastRecord; r != nil {
		b.WriteString(greenStyle.Render(fmt.Sprintf("Well done, %s! Level %s in %s with %d mistakes.",
			r.Name, r.LevelID, formatSeconds(r.Time), r.Score)) + "\n")
		if s.Session.SubmitErr != nil {
			b.WriteString(redStyle.Render("Your score could not be saved: "+s.Session.SubmitErr.Error()) + "\n")
		}
		b.WriteString("\n")
	}
	if s.Session.HistoryErr != nil {
		b.WriteString(redStyle.Render("Could not load scores: "+s.Session.HistoryErr.Error()) + "\n")
	}

	b.WriteString(s.scores.View() + "\n\n")
	b.WriteString(dimStyle.Render("↑/↓: scroll • enter/esc: menu • q: quit"))
	return b.String()
}

func newScoreTable() table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Name", Width: 20},
		{Title: "Level", Width: 6},
		{Title: "Mistakes", Width: 9},
		{Title: "Time", Width: 6},
		{Title: "Date", Width: 16},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true)
	t.SetStyles(styles)
	return t
}

func scoreRows(records []scoring.Record) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i, r := range records {
		rows = append(rows, table.Row{
			fmt.Sprint(i + 1),
			r.Name,
			r.LevelID,
			fmt.Sprint(r.Score),
			formatSeconds(r.Time),
			time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func formatSeconds(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
