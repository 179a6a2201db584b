package tui

import (
	"strconv"
	"strings"

	"current-weather/internal/daypart"
	"current-weather/internal/permission"
	"current-weather/internal/pipeline"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// stateMsg carries a fresh snapshot from the store
type stateMsg pipeline.ResolutionState

// Model renders the resolution state and forwards refresh and consent input
type Model struct {
	store     *pipeline.Store
	updates   <-chan struct{}
	refresh   func()
	backdrops daypart.Backdrops

	state   pipeline.ResolutionState
	consent chan<- permission.Decision

	locationSpinner spinner.Model
	weatherSpinner  spinner.Model

	width  int
	height int
}

// NewModel creates the model. updates comes from store.Subscribe and
// refresh is called on the refresh key.
func NewModel(store *pipeline.Store, updates <-chan struct{}, refresh func(), backdrops daypart.Backdrops) Model {
	return Model{
		store:     store,
		updates:   updates,
		refresh:   refresh,
		backdrops: backdrops,
		state:     store.Snapshot(),
		locationSpinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorBlue)),
		),
		weatherSpinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorGreen)),
		),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForUpdate(), m.locationSpinner.Tick, m.weatherSpinner.Tick)
}

// waitForUpdate blocks until the store changes and then reads it
func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-m.updates; !ok {
			return nil
		}
		return stateMsg(m.store.Snapshot())
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		m.state = pipeline.ResolutionState(msg)
		return m, m.waitForUpdate()

	case ConsentRequestMsg:
		m.consent = msg.Reply
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var locCmd, weatherCmd tea.Cmd
		m.locationSpinner, locCmd = m.locationSpinner.Update(msg)
		m.weatherSpinner, weatherCmd = m.weatherSpinner.Update(msg)
		return m, tea.Batch(locCmd, weatherCmd)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.answerConsent(permission.Denied)
		return m, tea.Quit
	}

	// A pending question takes every other key
	if m.consent != nil {
		m.answerConsent(permission.ParseAnswer(msg.String()))
		return m, nil
	}

	switch msg.String() {
	case "r":
		if m.refresh != nil {
			m.refresh()
		}
	case "q", "esc":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) answerConsent(d permission.Decision) {
	if m.consent == nil {
		return
	}
	m.consent <- d
	m.consent = nil
}

func (m Model) View() string {
	var lines []string
	lines = append(lines, titleStyle.Render("Current weather"))

	if m.state.IsResolvingLocation {
		lines = append(lines, m.locationSpinner.View()+textStyle.Render(" Locating..."))
	}
	if m.state.IsResolvingWeather {
		lines = append(lines, m.weatherSpinner.View()+textStyle.Render(" Fetching temperature..."))
	}
	if m.consent != nil {
		lines = append(lines, textStyle.Render("Allow access to your location? [y/N]"))
	}
	if m.state.ErrorMessage != nil {
		lines = append(lines, errorStyle.Render(*m.state.ErrorMessage))
	}
	if m.state.PlaceName != nil {
		lines = append(lines, textStyle.Render("Location: "+*m.state.PlaceName))
	}
	if m.state.TemperatureCelsius != nil {
		temp := strconv.FormatFloat(*m.state.TemperatureCelsius, 'f', -1, 64)
		lines = append(lines, textStyle.Render("Temperature: "+temp+" °C"))
	}
	if m.state.TimeOfDay != nil {
		lines = append(lines, textStyle.Render(string(*m.state.TimeOfDay)))
	}

	help := "r refresh • q quit"
	if m.state.IsManualRefreshInFlight {
		help = "refreshing • " + help
	}
	if img := m.backdrops.For(m.state.TimeOfDay); img != "" {
		help += " • " + img
	}
	lines = append(lines, helpStyle.Render(help))

	panel := panelStyle.Render(strings.Join(lines, "\n"))
	if m.width == 0 || m.height == 0 {
		return panel
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel,
		lipgloss.WithWhitespaceBackground(backdropColor(m.state.TimeOfDay)))
}
