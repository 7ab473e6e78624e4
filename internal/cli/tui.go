package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pipeline"
)

// watchStages lists every pipeline.Stage in the order ToBpmn passes
// through them, for the --watch progress view. ToBpmn doesn't report
// intermediate stages back to the caller, so the view advances this list
// on a fixed tick while the computation runs in the background and snaps
// to the real final stage (done or failed) the moment it finishes.
var watchStages = []pipeline.Stage{
	pipeline.StageInput,
	pipeline.StageSized,
	pipeline.StageLayered,
	pipeline.StageBoundaryFixed,
	pipeline.StageGatewaysPropagated,
	pipeline.StageNormalized,
	pipeline.StageEdgesFixed,
	pipeline.StageCompacted,
	pipeline.StageFolded,
	pipeline.StageDone,
}

var (
	watchDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	watchPendingStyle = lipgloss.NewStyle().Foreground(colorDim)
	watchCurrentStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	watchFailStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)

type pipelineResultMsg struct {
	res pipeline.Result
	err error
}

type tickMsg time.Time

// watchModel drives the bubbletea progress view for "layout --watch".
type watchModel struct {
	cursor int
	result *pipelineResultMsg
	run    func() tea.Msg
}

func newWatchModel(run func() pipeline.Result, errCh <-chan error) watchModel {
	return watchModel{
		run: func() tea.Msg {
			res := run()
			return pipelineResultMsg{res: res, err: <-errCh}
		},
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.run, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case pipelineResultMsg:
		m.result = &msg
		return m, tea.Quit
	case tickMsg:
		if m.result == nil && m.cursor < len(watchStages)-1 {
			m.cursor++
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder
	b.WriteString("Laying out BPMN graph\n\n")

	failedAt := -1
	if m.result != nil && m.result.err != nil {
		failedAt = m.cursor
	}

	for i, stage := range watchStages {
		switch {
		case failedAt == i:
			b.WriteString(watchFailStyle.Render(fmt.Sprintf("✗ %s\n", stage)))
		case i < m.cursor || (m.result != nil && m.result.err == nil):
			b.WriteString(watchDoneStyle.Render(fmt.Sprintf("✓ %s\n", stage)))
		case i == m.cursor:
			b.WriteString(watchCurrentStyle.Render(fmt.Sprintf("▸ %s\n", stage)))
		default:
			b.WriteString(watchPendingStyle.Render(fmt.Sprintf("  %s\n", stage)))
		}
		if failedAt == i {
			break
		}
	}
	return b.String()
}

// runWatch drives toBpmn through the bubbletea progress view and returns
// its result once the program exits.
func runWatch(toBpmn func() (pipeline.Result, error)) (pipeline.Result, error) {
	errCh := make(chan error, 1)
	model := newWatchModel(func() pipeline.Result {
		res, err := toBpmn()
		errCh <- err
		return res
	}, errCh)

	p := tea.NewProgram(model)
	final, err := p.Run()
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("run progress view: %w", err)
	}

	fm := final.(watchModel)
	if fm.result == nil {
		return pipeline.Result{}, fmt.Errorf("layout cancelled")
	}
	return fm.result.res, fm.result.err
}
