package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"orgstage/internal/adapters/tui/views"
)

// ViewState represents the current view
type ViewState int

const (
	ViewReview ViewState = iota
	ViewHelp
)

// App is the main review application model
type App struct {
	state  ViewState
	review *views.ReviewModel
	help   *views.HelpModel

	width  int
	height int
}

// NewApp creates the review application over a flagged-entry loader
func NewApp(load views.FlaggedLoader) *App {
	return &App{
		state:  ViewReview,
		review: views.NewReviewModel(load),
		help:   views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.review.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.review.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToReviewMsg:
		a.state = ViewReview
		return a, a.review.Reload()
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	default:
		_, cmd = a.review.Update(msg)
	}
	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewHelp:
		return a.help.View()
	default:
		return a.review.View()
	}
}
