package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"orgstage/internal/adapters/tui/styles"
	"orgstage/internal/domain"
)

// ReviewKeyMap defines key bindings for the review view
type ReviewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Copy   key.Binding
	Filter key.Binding
	Cancel key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var ReviewKeys = ReviewKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "ctrl+p"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "ctrl+n"),
		key.WithHelp("↓/j", "down"),
	),
	Copy: key.NewBinding(
		key.WithKeys("enter", "y"),
		key.WithHelp("enter/y", "copy location"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// FlaggedLoader fetches the flagged entries to review.
type FlaggedLoader func() ([]domain.FlaggedEntry, error)

type flaggedLoadedMsg struct {
	entries []domain.FlaggedEntry
	err     error
}

// ReviewModel is the model for the flagged-entry review view
type ReviewModel struct {
	ViewState

	load      FlaggedLoader
	input     textinput.Model
	filtering bool

	entries  []domain.FlaggedEntry
	filtered []domain.FlaggedEntry
	cursor   int
}

// NewReviewModel creates a new review view model
func NewReviewModel(load FlaggedLoader) *ReviewModel {
	input := textinput.New()
	input.Placeholder = "Filter..."

	return &ReviewModel{
		load:  load,
		input: input,
	}
}

// Init loads the flagged entries
func (m *ReviewModel) Init() tea.Cmd {
	return m.Reload()
}

// Reload re-reads the flagged entries from the document set
func (m *ReviewModel) Reload() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.load()
		return flaggedLoadedMsg{entries: entries, err: err}
	}
}

// Update handles messages for the review view
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case flaggedLoadedMsg:
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
			return m, nil
		}
		m.entries = msg.entries
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m *ReviewModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ReviewKeys.Cancel):
		m.filtering = false
		m.input.SetValue("")
		m.input.Blur()
		m.applyFilter()
		return m, nil

	case msg.Type == tea.KeyEnter:
		m.filtering = false
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *ReviewModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ReviewKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ReviewKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, ReviewKeys.Filter):
		m.filtering = true
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, ReviewKeys.Cancel):
		m.input.SetValue("")
		m.applyFilter()
		return m, nil

	case key.Matches(msg, ReviewKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, ReviewKeys.Down):
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, ReviewKeys.Copy):
		if m.cursor >= 0 && m.cursor < len(m.filtered) {
			entry := m.filtered[m.cursor]
			loc := entry.File + "::" + entry.Heading
			if err := clipboard.WriteAll(loc); err != nil {
				m.SetMessage(err.Error(), true)
			} else {
				m.SetMessage("copied "+loc, false)
			}
		}
		return m, nil
	}

	return m, nil
}

// applyFilter narrows the entry list to those matching the filter text in
// file name, heading or note.
func (m *ReviewModel) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.input.Value()))
	if needle == "" {
		m.filtered = m.entries
	} else {
		m.filtered = nil
		for _, e := range m.entries {
			haystack := strings.ToLower(e.File + " " + e.Heading + " " + e.Note)
			if strings.Contains(haystack, needle) {
				m.filtered = append(m.filtered, e)
			}
		}
	}
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// View renders the review view
func (m *ReviewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Flagged entries"))
	b.WriteString("\n")

	if m.filtering || m.input.Value() != "" {
		b.WriteString(styles.InputField.Render(m.input.View()))
		b.WriteString("\n")
	}

	if len(m.filtered) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing flagged for review."))
		b.WriteString("\n")
	}

	for i, e := range m.filtered {
		line := fmt.Sprintf("%s %s  %s",
			styles.FlagMark.Render("⚑"),
			styles.RowFile.Render(e.File),
			e.Heading)
		if i == m.cursor && !m.filtering {
			line = styles.RowSelected.Render("⚑ " + e.File + "  " + e.Heading)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if e.Note != "" {
			b.WriteString(styles.RowNote.Render("    " + firstLine(e.Note)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	if m.Message != "" {
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusBar.Render(fmt.Sprintf("%d flagged  ·  enter copy  ·  / filter  ·  ? help  ·  q quit", len(m.filtered))))

	return styles.App.Render(b.String())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
