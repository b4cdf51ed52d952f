// Package tui implements the interactive live port table.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Thegreatsura/portwitch/internal/config"
	"github.com/Thegreatsura/portwitch/internal/netstat"
	"github.com/Thegreatsura/portwitch/internal/process"
)

// mode tracks what the keyboard is currently driving.
type mode int

const (
	modeTable mode = iota
	modeFilter
	modeHelp
	modeConfirm
)

type scanDoneMsg struct {
	bindings []netstat.Binding
	err      error
}

type tickMsg time.Time

type killDoneMsg struct {
	binding netstat.Binding
	outcome process.Outcome
	forced  bool
	err     error
}

// Model is the bubbletea model for the live table.
type Model struct {
	cfg     *config.Config
	version string

	bindings []netstat.Binding
	rows     []int // indices into bindings after filter/excludes
	cursor   int
	scroll   int

	filter string
	input  textinput.Model

	mode      mode
	scanning  bool
	spinner   spinner.Model
	scanErr   error
	status    string
	statusErr bool

	confirm *netstat.Binding

	width  int
	height int
}

// New creates the TUI model. filter is the initial filter string, taken
// from the command line.
func New(cfg *config.Config, version, filter string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	input := textinput.New()
	input.Prompt = "/"
	input.CharLimit = 64

	return Model{
		cfg:      cfg,
		version:  version,
		filter:   strings.TrimSpace(filter),
		input:    input,
		spinner:  sp,
		scanning: true,
		mode:     modeTable,
	}
}

// Init kicks off the first scan, the refresh ticker and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanCmd(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	interval := time.Duration(m.cfg.RefreshInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func scanCmd() tea.Cmd {
	return func() tea.Msg {
		bindings, err := netstat.Snapshot(context.Background())
		return scanDoneMsg{bindings: bindings, err: err}
	}
}

func killCmd(b netstat.Binding, grace time.Duration, force bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if force {
			err := process.Kill(ctx, b.PID)
			return killDoneMsg{binding: b, forced: true, err: err}
		}
		outcome, err := process.Terminate(ctx, b.PID, grace)
		return killDoneMsg{binding: b, outcome: outcome, err: err}
	}
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tickMsg:
		if m.mode == modeTable || m.mode == modeFilter {
			return m, tea.Batch(scanCmd(), m.tickCmd())
		}
		return m, m.tickCmd()

	case scanDoneMsg:
		m.scanning = false
		m.scanErr = msg.err
		if msg.err == nil {
			m.applyScan(msg.bindings)
		}
		return m, nil

	case killDoneMsg:
		m.statusErr = msg.err != nil
		switch {
		case msg.err != nil:
			m.status = fmt.Sprintf("Failed: %v", msg.err)
		case msg.forced:
			m.status = fmt.Sprintf("Force killed %s (PID %d)", msg.binding.Process, msg.binding.PID)
		case msg.outcome == process.AlreadyGone:
			m.status = fmt.Sprintf("%s (PID %d) had already exited", msg.binding.Process, msg.binding.PID)
		case msg.outcome == process.Forced:
			m.status = fmt.Sprintf("%s (PID %d) ignored SIGTERM, sent SIGKILL", msg.binding.Process, msg.binding.PID)
		default:
			m.status = fmt.Sprintf("Killed %s (PID %d)", msg.binding.Process, msg.binding.PID)
		}
		m.scanning = true
		return m, tea.Batch(scanCmd(), m.spinner.Tick)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeFilter:
			return m.updateFilter(msg)
		case modeHelp:
			return m.updateHelp(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateTable(msg)
		}
	}

	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		// Esc clears the filter first; with no filter it quits.
		if m.filter != "" {
			m.filter = ""
			m.rebuildRows()
			return m, nil
		}
		return m, tea.Quit
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.clampScroll()
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
			m.clampScroll()
		}
	case "x":
		if b := m.selected(); b != nil {
			m.confirm = b
			m.mode = modeConfirm
		}
	case "/":
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		m.input.Focus()
		m.mode = modeFilter
	case "?":
		m.mode = modeHelp
	case "r":
		m.scanning = true
		return m, tea.Batch(scanCmd(), m.spinner.Tick)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filter = strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = modeTable
		m.rebuildRows()
		return m, nil
	case "esc":
		m.input.Blur()
		m.mode = modeTable
		m.rebuildRows()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.rebuildRows()
	return m, cmd
}

func (m Model) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.mode = modeTable
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	grace := time.Duration(m.cfg.KillGraceSecs) * time.Second
	switch msg.String() {
	case "y":
		if b := m.confirm; b != nil {
			m.confirm = nil
			m.mode = modeTable
			return m, killCmd(*b, grace, false)
		}
	case "f":
		if b := m.confirm; b != nil {
			m.confirm = nil
			m.mode = modeTable
			return m, killCmd(*b, grace, true)
		}
	case "n", "esc":
		m.confirm = nil
		m.mode = modeTable
	}
	return m, nil
}

// applyScan swaps in a fresh snapshot while keeping the selection on the
// same process when it is still present.
func (m *Model) applyScan(bindings []netstat.Binding) {
	var selectedPID, selectedPort int
	if b := m.selected(); b != nil {
		selectedPID, selectedPort = b.PID, b.Port
	}

	m.bindings = bindings
	m.rebuildRows()

	if selectedPID != 0 {
		for i, idx := range m.rows {
			if m.bindings[idx].PID == selectedPID && m.bindings[idx].Port == selectedPort {
				m.cursor = i
				break
			}
		}
	}
	m.clampScroll()
}

// activeFilter is what filtering should use right now: the draft while the
// filter is being edited, the applied one otherwise.
func (m Model) activeFilter() string {
	if m.mode == modeFilter {
		return strings.TrimSpace(m.input.Value())
	}
	return m.filter
}

func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	query := strings.ToLower(m.activeFilter())

	sort.SliceStable(m.bindings, func(i, j int) bool {
		return m.bindings[i].Port < m.bindings[j].Port
	})

	for i, b := range m.bindings {
		if b.State != "LISTEN" && b.State != "BOUND" {
			continue
		}
		if m.cfg.Excluded(b.Process) {
			continue
		}
		if query != "" && !bindingMatches(b, query) {
			continue
		}
		m.rows = append(m.rows, i)
	}

	if m.cursor >= len(m.rows) {
		m.cursor = max(0, len(m.rows)-1)
	}
	m.clampScroll()
}

// bindingMatches mirrors the CLI filter: process name, command, port and
// PID are all searchable.
func bindingMatches(b netstat.Binding, query string) bool {
	return strings.Contains(strings.ToLower(b.Process), query) ||
		strings.Contains(strings.ToLower(b.Command), query) ||
		strings.Contains(strconv.Itoa(b.Port), query) ||
		strings.Contains(strconv.Itoa(b.PID), query)
}

func (m *Model) selected() *netstat.Binding {
	if len(m.rows) == 0 || m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	b := m.bindings[m.rows[m.cursor]]
	return &b
}

func (m *Model) clampScroll() {
	visible := m.visibleRows()
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	maxScroll := len(m.rows) - visible
	if maxScroll < 0 {
		maxScroll = 0
	}
	if m.scroll > maxScroll {
		m.scroll = maxScroll
	}
	if m.scroll < 0 {
		m.scroll = 0
	}
}

func (m Model) visibleRows() int {
	// Header, column header, status line, help bar.
	const reserved = 6
	visible := m.height - reserved
	if visible < 1 {
		visible = 1
	}
	return visible
}

// View renders the current mode.
func (m Model) View() string {
	switch m.mode {
	case modeHelp:
		return m.viewHelp()
	case modeConfirm:
		return m.viewConfirm()
	default:
		return m.viewTable()
	}
}

func (m Model) viewTable() string {
	var b strings.Builder

	title := titleStyle.Render("portwitch " + m.version)
	stats := dimStyle.Render(fmt.Sprintf("%d ports in use", len(m.rows)))
	b.WriteString(title + "  " + stats + "\n")

	if m.scanning && len(m.bindings) == 0 {
		b.WriteString("\n" + m.spinner.View() + " Scanning ports...\n")
		return b.String()
	}
	if m.scanErr != nil {
		b.WriteString("\n" + errorStyle.Render("  Error: "+m.scanErr.Error()) + "\n")
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf(
		"  %-7s %-6s %-7s %-18s %-12s %s",
		"PORT", "PROTO", "PID", "PROCESS", "USER", "COMMAND",
	)) + "\n")

	if len(m.rows) == 0 {
		if f := m.activeFilter(); f != "" {
			b.WriteString("\n  Nothing matches: " + f + "\n")
		} else {
			b.WriteString("\n  No listening ports found.\n")
		}
	} else {
		end := m.scroll + m.visibleRows()
		if end > len(m.rows) {
			end = len(m.rows)
		}
		for i := m.scroll; i < end; i++ {
			e := m.bindings[m.rows[i]]

			cursor := "  "
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}

			pid := strconv.Itoa(e.PID)
			name := e.Process
			if !e.Owned() {
				pid, name = "-", "(not visible)"
			}

			cmd := e.Command
			maxCmd := m.width - 58
			if maxCmd < 10 {
				maxCmd = 10
			}
			if len(cmd) > maxCmd {
				cmd = cmd[:maxCmd-3] + "..."
			}

			line := fmt.Sprintf("%-7d %-6s %-7s %-18s %-12s %s",
				e.Port, e.Protocol, pid, truncate(name, 18), truncate(e.User, 12), cmd)
			b.WriteString(cursor + rowStyle(e).Render(line) + "\n")
		}

		if len(m.rows) > m.visibleRows() {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  [%d-%d of %d]",
				m.scroll+1, end, len(m.rows))) + "\n")
		}
	}

	// Filter indicator: highlighted while editing, dim once applied.
	switch {
	case m.mode == modeFilter:
		b.WriteString("\n" + filterEditStyle.Render(m.input.View()))
	case m.filter != "":
		b.WriteString("\n" + dimStyle.Render("/"+m.filter))
	}

	if m.status != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render("  "+m.status))
	}

	b.WriteString(helpStyle.Render("j/k:navigate  x:kill  /:filter  r:refresh  ?:help  esc:quit") + "\n")
	return b.String()
}

func (m Model) viewHelp() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("portwitch -- Help") + "\n\n")
	rows := [][2]string{
		{"esc", "clear filter / close help / quit"},
		{"k or up", "select previous"},
		{"j or down", "select next"},
		{"x", "kill selected"},
		{"/", "edit filter"},
		{"r", "refresh now"},
		{"q", "quit"},
	}
	for _, r := range rows {
		b.WriteString("  " + labelStyle.Render(r[0]) + r[1] + "\n")
	}

	b.WriteString("\n  " + dimStyle.Render("Tip: arguments set an initial filter:") + "\n")
	b.WriteString("  " + dimStyle.Render("  $ portwitch 8080") + "\n")
	b.WriteString(helpStyle.Render("esc:close") + "\n")
	return b.String()
}

func (m Model) viewConfirm() string {
	var b strings.Builder

	b.WriteString(dangerStyle.Render(" KILL PROCESS ") + "\n\n")

	if m.confirm == nil {
		b.WriteString("  No process selected.\n")
		b.WriteString(helpStyle.Render("esc:cancel") + "\n")
		return b.String()
	}

	e := m.confirm
	b.WriteString(fmt.Sprintf("  Kill %q (PID %d) on port %d/%s?\n\n",
		e.Process, e.PID, e.Port, e.Protocol))
	b.WriteString("  " + dimStyle.Render("[y] SIGTERM, escalate if ignored  [f] SIGKILL now  [n] cancel") + "\n")
	b.WriteString(helpStyle.Render("y:kill  f:force  n/esc:cancel") + "\n")
	return b.String()
}

// truncate shortens a string to maxLen, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
