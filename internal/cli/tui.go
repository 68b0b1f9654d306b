package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verdantlabs/verdant/pkg/observability"
	"github.com/verdantlabs/verdant/pkg/search"
)

var (
	tuiPhaseStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiPlantStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	tuiScaledStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Plan Progress Model
// =============================================================================

// planEvent is one search progress update delivered through the hooks.
type planEvent struct {
	phase     string
	placement *placementEvent
	adjusted  bool
}

type placementEvent struct {
	variety string
	x, y    float64
	score   float64
}

// planDoneMsg carries the search outcome into the TUI.
type planDoneMsg struct {
	result *search.Result
	err    error
}

type planTickMsg time.Time

// planModel is the bubbletea model for live search progress.
type planModel struct {
	events <-chan planEvent

	phase    string
	placed   int
	score    float64
	scaled   bool
	recent   []string
	start    time.Time
	done     *planDoneMsg
	canceled bool
}

func newPlanModel(events <-chan planEvent) planModel {
	return planModel{
		events: events,
		phase:  string(search.PhaseBuildStarter),
		start:  time.Now(),
	}
}

func (m planModel) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), planTick())
}

func (m planModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return ev
	}
}

func planTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return planTickMsg(t)
	})
}

func (m planModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		}
	case planEvent:
		if msg.phase != "" {
			m.phase = msg.phase
		}
		if msg.placement != nil {
			m.placed++
			m.score = msg.placement.score
			line := fmt.Sprintf("%s at (%.1f, %.1f)", msg.placement.variety, msg.placement.x, msg.placement.y)
			m.recent = append(m.recent, line)
			if len(m.recent) > 8 {
				m.recent = m.recent[len(m.recent)-8:]
			}
		}
		if msg.adjusted {
			m.scaled = true
		}
		return m, m.waitForEvent()
	case planDoneMsg:
		m.done = &msg
		return m, tea.Quit
	case planTickMsg:
		if m.done == nil {
			return m, planTick()
		}
	}
	return m, nil
}

func (m planModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Planning Garden"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	elapsed := time.Since(m.start).Round(time.Millisecond * 100)
	b.WriteString(fmt.Sprintf("  %s %s\n", tuiPhaseStyle.Render(m.phase), StyleDim.Render(elapsed.String())))
	b.WriteString(fmt.Sprintf("  %s placed, score %s\n",
		StyleNumber.Render(fmt.Sprintf("%d", m.placed)),
		StyleNumber.Render(fmt.Sprintf("%.2f", m.score))))
	if m.scaled {
		b.WriteString("  " + tuiScaledStyle.Render("depth scaled down to meet budget") + "\n")
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			b.WriteString("  " + tuiPlantStyle.Render("+") + " " + StyleDim.Render(line) + "\n")
		}
	}

	return b.String()
}

// =============================================================================
// TUI Runner
// =============================================================================

// tuiHooks forwards search events into the TUI's event channel. Sends are
// non-blocking so a stalled UI never stalls the search.
type tuiHooks struct {
	observability.NoopSearchHooks
	events chan<- planEvent
}

func (h *tuiHooks) OnPhaseChange(_ context.Context, _, to string) {
	h.send(planEvent{phase: to})
}

func (h *tuiHooks) OnPlacement(_ context.Context, variety string, x, y, score float64) {
	h.send(planEvent{placement: &placementEvent{variety: variety, x: x, y: y, score: score}})
}

func (h *tuiHooks) OnBudgetAdjust(_ context.Context, _ float64, _, _ int) {
	h.send(planEvent{adjusted: true})
}

func (h *tuiHooks) send(ev planEvent) {
	select {
	case h.events <- ev:
	default:
	}
}

// runPlanTUI runs the planner with a live progress display. The search runs
// in a goroutine; its outcome is delivered to the program as a message.
func runPlanTUI(ctx context.Context, planner *search.Planner) (*search.Result, error) {
	events := make(chan planEvent, 64)
	observability.SetSearchHooks(&tuiHooks{events: events})
	defer observability.Reset()

	prog := tea.NewProgram(newPlanModel(events), tea.WithContext(ctx))

	go func() {
		result, err := planner.Run(ctx)
		prog.Send(planDoneMsg{result: result, err: err})
	}()

	model, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Canceled
		}
		return nil, err
	}

	final := model.(planModel)
	if final.done == nil {
		if final.canceled {
			return nil, context.Canceled
		}
		return nil, ctx.Err()
	}
	if final.done.err != nil {
		return nil, final.done.err
	}
	return final.done.result, nil
}
