// Command scheduler-tui is an operator dashboard over the Postgres field
// roster and visit history: a terminal view of tonight's field list,
// per-field progress, and the most recent completed visits, refreshed on a
// timer against the same store the monitor API reads from.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dlrabinowitz/ls4scheduler/internal/store"
	"github.com/dlrabinowitz/ls4scheduler/pkg/config"
)

type model struct {
	database *store.DB
	fieldDB  *store.FieldRepository
	visitDB  *store.VisitRepository

	night    time.Time
	fields   []store.FieldRow
	visits   []store.VisitRow
	selected int
	err      error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.err != nil {
			m.err = nil
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.fields)-1 {
				m.selected++
			}
		}

	case tickMsg:
		m.refresh()
		return m, tick()
	}

	return m, nil
}

func (m *model) refresh() {
	ctx := context.Background()

	fields, err := m.fieldDB.GetFieldsForNight(ctx, m.night)
	if err != nil {
		m.err = err
		return
	}
	m.fields = fields
	if m.selected >= len(m.fields) {
		m.selected = len(m.fields) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}

	visits, err := m.visitDB.GetRecentVisits(ctx, 10)
	if err != nil {
		m.err = err
		return
	}
	m.visits = visits
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	doableStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	vetoedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("LS4 SCHEDULER"))
	s.WriteString("  ")
	s.WriteString(m.night.Format("2006-01-02"))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errStyle.Render(fmt.Sprintf("error: %v", m.err)))
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("press any key to continue"))
		return s.String()
	}

	s.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-6s %-10s %-6s %-8s %-4s/%-4s", "IDX", "KIND", "SURVEY", "DOABLE", "FILTER", "DONE", "REQ")))
	s.WriteString("\n")

	for i, f := range m.fields {
		line := fmt.Sprintf("%-5d %-6s %-10s %-6s %-8s %-4d/%-4d",
			f.FieldIndex, f.Kind, f.Survey, doableLabel(f.Doable), f.Filter, f.NDone, f.NRequired)
		if f.Doable {
			line = doableStyle.Render(line)
		} else {
			line = vetoedStyle.Render(line)
		}
		if i == m.selected {
			s.WriteString(selectedStyle.Render("> "))
		} else {
			s.WriteString("  ")
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	if len(m.fields) == 0 {
		s.WriteString(helpStyle.Render("no fields recorded for tonight yet"))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(headerStyle.Render("recent visits"))
	s.WriteString("\n")
	for _, v := range m.visits {
		s.WriteString(fmt.Sprintf("  field %-4d  jd %.5f  airmass %.2f  %s\n", v.FieldIndex, v.JD, v.Airmass, v.Filename))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/k ↓/j: select   q: quit"))

	return s.String()
}

func doableLabel(doable bool) string {
	if doable {
		return "yes"
	}
	return "no"
}

func main() {
	cfg, err := config.Load("configs/config.json")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := store.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	m := model{
		database: database,
		fieldDB:  store.NewFieldRepository(database),
		visitDB:  store.NewVisitRepository(database),
		night:    time.Now().UTC().Truncate(24 * time.Hour),
	}
	m.refresh()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
