package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cache-viewer/internal/cacheclient"
	"cache-viewer/internal/models"
	"cache-viewer/internal/synchronizer"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Intents are the operator actions the view can trigger.
type Intents interface {
	AddEntry(ctx context.Context, key, value, expiry string) error
	DeleteEntry(ctx context.Context, key string) error
	ClearAll(ctx context.Context) error
	ManualRefresh(ctx context.Context) error
	RefreshOne(ctx context.Context, key string) error
}

// StatsSource reports the synchronizer state for the status line.
type StatsSource interface {
	Stats() synchronizer.Stats
}

// Options are the dependencies of the entry view.
type Options struct {
	Intents Intents
	// Updates delivers store snapshots, starting with the current one.
	Updates <-chan models.Snapshot
	Stats   StatsSource
	Remote  string
	Theme   *Theme
}

type intentKind int

const (
	intentAdd intentKind = iota
	intentDelete
	intentClear
	intentRefresh
	intentRefreshOne
)

// snapshotMsg carries a new store snapshot.
type snapshotMsg struct {
	snap models.Snapshot
}

// updatesClosedMsg is sent when the viewer shuts down.
type updatesClosedMsg struct{}

// intentResultMsg is sent when an intent completes.
type intentResultMsg struct {
	kind intentKind
	key  string
	err  error
}

// Model is the Bubble Tea model of the entry view.
type Model struct {
	table   table.Model
	help    help.Model
	keys    KeyMap
	form    *AddForm
	confirm *ConfirmModel
	// confirming is the intent the open dialog guards.
	confirming intentKind
	confirmKey string

	snap      models.Snapshot
	status    string
	statusErr bool
	busy      int
	showHelp  bool
	width     int
	height    int

	ctx  context.Context
	opts Options
}

// NewModel creates the entry view.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = NewTheme()
	}
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(opts.Theme.Accent)
	h.Styles.ShortDesc = opts.Theme.Subtle
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc

	return Model{
		table:  newEntryTable(opts.Theme, 80, 16),
		help:   h,
		keys:   DefaultKeyMap(),
		ctx:    ctx,
		opts:   opts,
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.waitForSnapshot()
}

func (m Model) waitForSnapshot() tea.Cmd {
	updates := m.opts.Updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m Model) run(kind intentKind, key string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return intentResultMsg{kind: kind, key: key, err: fn(ctx)}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, m.waitForSnapshot()
	case updatesClosedMsg:
		return m, tea.Quit
	case intentResultMsg:
		return m.handleResult(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(entryColumns(msg.Width))
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-8, 3))
		return m, nil
	}

	if m.form != nil {
		return m.handleForm(msg)
	}
	if m.confirm != nil {
		return m.handleConfirm(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(k)
	}
	return m, nil
}

func (m *Model) applySnapshot(snap models.Snapshot) {
	m.snap = snap
	rows := make([]table.Row, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		rows = append(rows, table.Row{e.Key, e.Value, formatExpiry(e.Expiry)})
	}
	m.table.SetRows(rows)
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(k, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(k, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(k, m.keys.Add):
		form := NewAddForm(m.opts.Theme)
		m.form = &form
		return m, nil
	case key.Matches(k, m.keys.Delete):
		if selected := m.selectedKey(); selected != "" {
			m.openConfirm(intentDelete, selected, fmt.Sprintf("Delete %q?", selected))
		}
		return m, nil
	case key.Matches(k, m.keys.Clear):
		m.openConfirm(intentClear, "", "Clear every entry in the cache?")
		return m, nil
	case key.Matches(k, m.keys.Refresh):
		m.busy++
		return m, m.run(intentRefresh, "", m.opts.Intents.ManualRefresh)
	case key.Matches(k, m.keys.RefreshOne):
		selected := m.selectedKey()
		if selected == "" {
			return m, nil
		}
		m.busy++
		return m, m.run(intentRefreshOne, selected, func(ctx context.Context) error {
			return m.opts.Intents.RefreshOne(ctx, selected)
		})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(k)
	return m, cmd
}

func (m *Model) openConfirm(kind intentKind, key, message string) {
	confirm := NewConfirm(m.opts.Theme, message)
	m.confirm = &confirm
	m.confirming = kind
	m.confirmKey = key
}

func (m Model) handleConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	confirm, _ := m.confirm.Update(msg)
	m.confirm = &confirm
	if !confirm.Done() {
		return m, nil
	}
	m.confirm = nil
	if !confirm.Result() {
		return m, nil
	}

	m.busy++
	intents := m.opts.Intents
	switch m.confirming {
	case intentDelete:
		selected := m.confirmKey
		return m, m.run(intentDelete, selected, func(ctx context.Context) error {
			return intents.DeleteEntry(ctx, selected)
		})
	default:
		return m, m.run(intentClear, "", intents.ClearAll)
	}
}

func (m Model) handleForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	switch {
	case form.Canceled:
		m.form = nil
		return m, nil
	case form.Submitted:
		form.Submitted = false
		form.Pending = true
		m.form = &form
		m.busy++
		k, v, e := form.Values()
		intents := m.opts.Intents
		return m, m.run(intentAdd, k, func(ctx context.Context) error {
			return intents.AddEntry(ctx, k, v, e)
		})
	}
	m.form = &form
	return m, cmd
}

func (m Model) handleResult(msg intentResultMsg) (tea.Model, tea.Cmd) {
	if m.busy > 0 {
		m.busy--
	}

	if msg.kind == intentAdd && m.form != nil {
		form := *m.form
		form.Pending = false
		if cacheclient.IsValidation(msg.err) {
			// keep the form open so the input can be corrected
			form.Err = msg.err.Error()
			m.form = &form
			return m, nil
		}
		m.form = nil
	}

	if msg.err != nil {
		m.status, m.statusErr = msg.err.Error(), true
		return m, nil
	}
	m.statusErr = false
	switch msg.kind {
	case intentAdd:
		m.status = fmt.Sprintf("Added %q", msg.key)
	case intentDelete:
		m.status = fmt.Sprintf("Deleted %q", msg.key)
	case intentClear:
		m.status = "Cache cleared"
	case intentRefresh:
		m.status = "Refreshed"
	case intentRefreshOne:
		m.status = fmt.Sprintf("Refreshed after probing %q", msg.key)
	}
	return m, nil
}

func (m Model) selectedKey() string {
	if len(m.snap.Entries) == 0 {
		return ""
	}
	row := m.table.SelectedRow()
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

// View implements tea.Model.
func (m Model) View() string {
	t := m.opts.Theme
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		t.Highlight.Render("Cache viewer"), "  ", t.Subtle.Render(m.opts.Remote))

	var body string
	switch {
	case m.form != nil:
		body = m.form.View()
	case m.confirm != nil:
		body = m.confirm.View()
	case len(m.snap.Entries) == 0:
		body = t.Subtle.Render("No entries in cache.")
	default:
		body = m.table.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		m.statusLine(),
		m.help.View(m.keys),
	)
}

func (m Model) statusLine() string {
	t := m.opts.Theme
	parts := []string{
		t.Badge.Render(fmt.Sprintf("v%d", m.snap.Version)),
		t.Subtle.Render(fmt.Sprintf("%d entries", m.snap.Len())),
	}
	if m.opts.Stats != nil {
		parts = append(parts, t.Subtle.Render(m.opts.Stats.Stats().State.String()))
	}
	if m.busy > 0 {
		parts = append(parts, t.WarningStyle.Render("working..."))
	}
	if msg := m.snap.ErrorMessage(); msg != "" {
		parts = append(parts, t.WarningStyle.Render("! "+msg))
	}
	if m.status != "" {
		style := t.SuccessStyle
		if m.statusErr {
			style = t.ErrorStyle
		}
		parts = append(parts, style.Render(m.status))
	}
	return strings.Join(parts, "  ")
}

func formatExpiry(seconds int64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%ds", seconds)
}

// Run starts the entry view and blocks until the operator quits or ctx is done.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
