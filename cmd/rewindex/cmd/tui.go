package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ryrobes/rewindex/internal/core"
	"github.com/ryrobes/rewindex/internal/detect"
)

var (
	tuiSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	tuiActiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	tuiDimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tuiHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Live terminal view of watcher status and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := openProject()
			if err != nil {
				return err
			}
			defer proj.Close()

			model := newWatchModel(proj)
			program := tea.NewProgram(model, tea.WithAltScreen())

			handle, err := proj.StartWatch(cmd.Context(), func(outcomes []detect.FileOutcome) {
				program.Send(batchMsg(outcomes))
			})
			if err != nil {
				return err
			}
			defer handle.Stop()

			_, err = program.Run()
			return err
		},
	}
}

type batchMsg []detect.FileOutcome
type tuiTickMsg time.Time

func tuiTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tuiTickMsg(t) })
}

type watchModel struct {
	proj       *core.Project
	spin       spinner.Model
	recent     []string
	statusLine string
	quitting   bool
}

func newWatchModel(proj *core.Project) *watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = tuiActiveStyle
	return &watchModel{proj: proj, spin: s}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, tuiTickCmd())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}
	case tuiTickMsg:
		st := m.proj.Status(context.Background())
		m.statusLine = fmt.Sprintf("files=%d versions=%d watcher=%s", st.FilesCount, st.VersionsCount, st.WatcherState)
		return m, tuiTickCmd()
	case batchMsg:
		for _, o := range msg {
			if o.Skipped {
				continue
			}
			line := fmt.Sprintf("%-9s %s", o.Outcome, o.RelativePath)
			if o.Err != nil {
				line = fmt.Sprintf("error     %s: %v", o.RelativePath, o.Err)
			}
			m.recent = append(m.recent, line)
		}
		if len(m.recent) > 20 {
			m.recent = m.recent[len(m.recent)-20:]
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	if m.quitting {
		return "stopped watching.\n"
	}

	header := tuiHeaderStyle.Render(fmt.Sprintf("rewindex watch · %s", m.proj.Root()))
	spin := m.spin.View()
	status := tuiDimStyle.Render(m.statusLine)

	var body string
	if len(m.recent) == 0 {
		body = tuiDimStyle.Render("waiting for changes...")
	} else {
		for _, line := range m.recent {
			body += tuiSuccessStyle.Render(line) + "\n"
		}
	}

	return fmt.Sprintf("%s %s\n%s\n\n%s\n%s\n", spin, header, status, body, tuiDimStyle.Render("q to quit"))
}
