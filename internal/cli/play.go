package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/plus3/blockfall/session"
	"github.com/spf13/cobra"
)

const frameInterval = 16 * time.Millisecond

func newPlayCmd(opts *globalOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively in the terminal",
		Long: `Play a board in the terminal.

Keys: left/right (h/l) move, up/z (k) rotate, down (j) soft drop,
space hard drop, r restart, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			// The terminal belongs to the UI, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			logger := newLogger(w, opts.level(cfg))

			s, err := session.New(cfg, session.WithLogger(logger))
			if err != nil {
				return err
			}

			_, err = tea.NewProgram(newPlayModel(s), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while playing")
	return cmd
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// playModel is the bubbletea model driving one session. bubbletea calls
// Update from a single goroutine, which keeps the session single-threaded.
type playModel struct {
	session  *session.Session
	renderer *boardRenderer
	last     time.Time
}

func newPlayModel(s *session.Session) playModel {
	return playModel{
		session:  s,
		renderer: newBoardRenderer(),
	}
}

func (m playModel) Init() tea.Cmd {
	return tick()
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.session.Enqueue(session.MoveLeft)
		case "right", "l":
			m.session.Enqueue(session.MoveRight)
		case "up", "k", "z", "x":
			m.session.Enqueue(session.RotateAction)
		case "down", "j":
			m.session.Enqueue(session.SoftDrop)
		case " ", "space":
			m.session.Enqueue(session.HardDrop)
		case "r":
			m.session.Restart()
		}
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		dt := time.Duration(0)
		if !m.last.IsZero() {
			dt = now.Sub(m.last)
		}
		m.last = now
		m.session.Step(dt)
		return m, tick()
	}

	return m, nil
}

func (m playModel) View() string {
	return m.renderer.Frame(m.session.Snapshot(), m.session.Status()) + "\n"
}
