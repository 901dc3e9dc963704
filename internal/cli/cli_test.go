package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	charmlog "github.com/charmbracelet/log"
	"github.com/plus3/blockfall/config"
	"github.com/plus3/blockfall/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	out, err := runRoot(t, "simulate", "--script", "R<H", "--frames", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "BLOCKFALL")
	assert.Contains(t, out, "score")
	assert.Contains(t, out, filledBlock, "the locked piece stays on the board")
}

func TestSimulateWithStats(t *testing.T) {
	out, err := runRoot(t, "simulate", "--script", "H", "--stats")
	require.NoError(t, err)
	for _, name := range []string{"InputSystem", "GravitySystem", "LockSystem", "LineClearSystem", "SpawnSystem"} {
		assert.Contains(t, out, name)
	}
}

func TestSimulateErrors(t *testing.T) {
	_, err := runRoot(t, "simulate", "--script", "R?")
	assert.Error(t, err)

	_, err = runRoot(t, "simulate", "--frames", "-1")
	assert.Error(t, err)

	_, err = runRoot(t, "simulate", "-c", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSimulateWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.toml")
	require.NoError(t, os.WriteFile(path, []byte("rows = 6\ncols = 8\n"), 0o644))

	out, err := runRoot(t, "simulate", "-c", path, "--seed", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "BLOCKFALL")
}

func newTestModel(t *testing.T) playModel {
	t.Helper()
	s, err := session.New(config.Default(), session.WithLogger(newLogger(&bytes.Buffer{}, charmlog.InfoLevel)))
	require.NoError(t, err)
	return newPlayModel(s)
}

func update(m playModel, msg tea.Msg) (playModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(playModel), cmd
}

func cols(m playModel) []int {
	var out []int
	for _, n := range m.session.Active() {
		out = append(out, n.Col)
	}
	return out
}

func TestPlayModel(t *testing.T) {
	m := newTestModel(t)
	assert.NotNil(t, m.Init())

	start := time.Now()
	m, cmd := update(m, tickMsg(start))
	assert.NotNil(t, cmd, "ticks reschedule themselves")
	require.NotEmpty(t, m.session.Active(), "first frame spawns a piece")
	before := cols(m)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(m, tickMsg(start.Add(frameInterval)))

	after := cols(m)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i]-1, after[i])
	}

	assert.Contains(t, m.View(), "BLOCKFALL")
}

func TestPlayModelQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyEsc},
	} {
		_, cmd := update(newTestModel(t), key)
		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.QuitMsg{}, cmd(), key.String())
	}
}

func TestPlayModelRestart(t *testing.T) {
	m := newTestModel(t)
	start := time.Now()
	m, _ = update(m, tickMsg(start))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	m, _ = update(m, tickMsg(start.Add(frameInterval)))
	require.Equal(t, 1, m.session.Status().Locked)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, 0, m.session.Status().Locked)
	assert.Empty(t, m.session.Snapshot().Filled())
}
