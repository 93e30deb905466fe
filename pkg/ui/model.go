package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/skein/pkg/analysis"
	"github.com/vanderheijden86/skein/pkg/config"
	"github.com/vanderheijden86/skein/pkg/debug"
	"github.com/vanderheijden86/skein/pkg/loader"
	"github.com/vanderheijden86/skein/pkg/metrics"
	"github.com/vanderheijden86/skein/pkg/model"
	"github.com/vanderheijden86/skein/pkg/outline"
	"github.com/vanderheijden86/skein/pkg/watcher"
)

const (
	// Dimensions used until the first WindowSizeMsg arrives. bubbletea sends
	// one immediately on startup, so these only ever render in tests.
	defaultWidth  = 120
	defaultHeight = 40

	// Below this width the detail pane folds away and d swaps the whole
	// screen between thread and detail.
	splitMinWidth = 100
)

type focusArea int

const (
	focusThread focusArea = iota
	focusDetail
)

const (
	sortCreated = "created"
	sortScore   = "score"
)

// FileChangedMsg reports that the source file changed on disk.
type FileChangedMsg struct{}

// WatchFileCmd returns a command that blocks until the watcher reports a
// change. The handler must issue a fresh WatchFileCmd after every
// FileChangedMsg or later writes go unnoticed.
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// Model is the top-level bubbletea model: one thread, one cursor, and the
// overlays and panes hanging off it.
type Model struct {
	thread     *model.Thread
	roots      []*outline.Node
	view       ThreadModel
	cfg        config.Config
	theme      Theme
	sourcePath string
	sourceTag  string
	hash       string

	watcher *watcher.Watcher
	store   *StateStore

	md       *glamour.TermRenderer
	viewport viewport.Model

	searchInput textinput.Model
	searching   bool

	focused      focusArea
	showHelp     bool
	showInsights bool
	stats        *analysis.ThreadStats

	showDeleted bool
	sortField   string

	ready  bool
	width  int
	height int

	statusMsg     string
	statusIsError bool
}

// NewModel builds the program model for a loaded thread. Construction fails
// only when the configured columns cannot be rendered; everything else
// (missing watcher, unwritable state dir) degrades to a status line.
func NewModel(t *model.Thread, sourcePath string, cfg config.Config) (Model, error) {
	theme := DefaultTheme(lipgloss.NewRenderer(os.Stdout))
	ApplyBackgroundPreference(theme.Renderer, cfg.UI.Theme)

	rows, err := NewRowRenderer(theme, cfg, threadBinder{relTime: cfg.RelativeTime()})
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "search"
	ti.CharLimit = 128
	ti.Width = 40

	m := Model{
		thread:      t,
		cfg:         cfg,
		theme:       theme,
		view:        NewThreadModel(theme, rows),
		sourcePath:  sourcePath,
		store:       NewStateStore(sourcePath),
		searchInput: ti,
		viewport:    viewport.New(defaultWidth, defaultHeight-2),
		showDeleted: cfg.DeletedVisible(),
		sortField:   sortCreated,
		ready:       true,
		width:       defaultWidth,
		height:      defaultHeight,
	}
	if sourcePath != "" {
		m.sourceTag = filepath.Base(sourcePath)
	}

	m.rebuild()
	if vs := m.store.Load(); m.store.Matches(vs, m.hash) {
		if err := m.view.List().Restore(vs.Collapsed); err != nil {
			debug.Log("restoring saved view state: %v", err)
			m.view.ExpandAll()
		}
	} else if cfg.UI.CollapseDepth > 0 {
		m.view.CollapseToDepth(cfg.UI.CollapseDepth)
	}
	m.layout()
	m.refreshDetail()

	// Archive-backed threads carry a path#id pseudo-path that cannot be
	// watched; only arm the watcher for sources that exist on disk.
	if _, serr := os.Stat(sourcePath); sourcePath != "" && serr == nil {
		w, werr := watcher.NewWatcher(sourcePath)
		if werr == nil {
			werr = w.Start()
		}
		if werr != nil {
			debug.Log("file watcher unavailable: %v", werr)
			m.setStatus("live reload unavailable: "+werr.Error(), true)
		} else {
			m.watcher = w
		}
	}

	// Persist the opening shape so the next launch restores it even when
	// this session makes no further fold changes.
	if m.store.Dirty() {
		m.saveViewState()
	}
	return m, nil
}

// Close releases the file watcher. Call after the program exits.
func (m Model) Close() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refreshDetail()
		return m, nil

	case FileChangedMsg:
		return m.reload(true)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	// A status line shows until the next keypress.
	m.clearStatus()

	if m.showHelp || m.showInsights {
		switch msg.String() {
		case "q", "esc", "?", "i":
			m.showHelp = false
			m.showInsights = false
		}
		return m, nil
	}
	if m.focused == focusDetail {
		return m.handleDetailKey(msg)
	}
	return m.handleThreadKey(msg)
}

func (m Model) handleThreadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m.quit()
	case "j", "down":
		m.view.MoveDown()
	case "k", "up":
		m.view.MoveUp()
	case "g", "home":
		m.view.JumpToTop()
	case "G", "end":
		m.view.JumpToBottom()
	case "ctrl+d", "pgdown":
		m.view.HalfPageDown()
	case "ctrl+u", "pgup":
		m.view.HalfPageUp()
	case "p":
		m.view.JumpToParent()
	case "enter", " ", "tab":
		m.view.ToggleCursor()
	case "c":
		m.view.CollapseCursor()
	case "e":
		m.view.ExpandCursor()
	case "C":
		m.view.CollapseAll()
	case "E":
		m.view.ExpandAll()
	case "/":
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	case "n":
		m.view.NextMatch()
	case "N":
		m.view.PrevMatch()
	case "esc":
		m.view.ClearSearch()
	case "d":
		m.focused = focusDetail
	case "i":
		m.ensureStats()
		m.showInsights = true
	case "s":
		m.cycleSort()
	case "x":
		m.toggleDeleted()
	case "r":
		return m.reload(false)
	case "y":
		m.yankBody()
	case "Y":
		m.yankID()
	case "?":
		m.showHelp = true
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			m.view.CollapseToDepth(int(key[0] - '0'))
		}
	}
	m.afterAction()
	return m, nil
}

// handleDetailKey drives the detail pane. Unhandled keys fall through to the
// viewport so its scrolling keymap keeps working.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "d", "esc":
		m.focused = focusThread
		return m, nil
	case "y":
		m.yankBody()
		return m, nil
	case "Y":
		m.yankID()
		return m, nil
	case "?":
		m.showHelp = true
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.view.ClearSearch()
		return m, nil
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
			switch n := m.view.Search(q); n {
			case 0:
				m.setStatus(fmt.Sprintf("no matches for %q", q), true)
			case 1:
				m.setStatus(fmt.Sprintf("1 match for %q", q), false)
			default:
				m.setStatus(fmt.Sprintf("%d matches for %q", n, q), false)
			}
		} else {
			m.view.ClearSearch()
		}
		m.refreshDetail()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if q := strings.TrimSpace(m.searchInput.Value()); q != "" {
		m.view.Search(q)
	} else {
		m.view.ClearSearch()
	}
	m.refreshDetail()
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.store.Dirty() {
		m.saveViewState()
	}
	return m, tea.Quit
}

// reload re-reads the source file and rebuilds the outline, carrying the
// cursor and fold state across when the content allows it. The watcher
// subscription is re-armed before any early return so later writes still
// arrive.
func (m Model) reload(fromWatch bool) (tea.Model, tea.Cmd) {
	start := time.Now()
	defer func() { debug.LogTiming("reload", time.Since(start)) }()

	var cmds []tea.Cmd
	if fromWatch && m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher))
	}
	if m.sourcePath == "" {
		m.setStatus("no source file to reload", true)
		return m, tea.Batch(cmds...)
	}

	selID := m.view.SelectedID()
	prevHash := m.hash
	folds := m.view.CollapsedIndices()

	var skipped int
	t, err := loader.LoadThreadWithOptions(m.sourcePath, loader.ParseOptions{
		WarningHandler: func(string) { skipped++ },
	})
	if err != nil {
		m.setStatus(fmt.Sprintf("reload failed: %v", err), true)
		return m, tea.Batch(cmds...)
	}

	m.thread = t
	m.applySort()
	m.rebuild()
	m.stats = nil

	note := fmt.Sprintf("reloaded %d comments", t.Count())
	if m.hash == prevHash {
		if err := m.view.List().Restore(folds); err != nil {
			debug.Log("restoring folds after reload: %v", err)
			m.view.ExpandAll()
		}
	} else if len(folds) > 0 {
		note += ", folds reset"
	}
	if skipped > 0 {
		note += fmt.Sprintf(" (%d lines skipped)", skipped)
	}
	if selID != "" {
		m.view.SelectByID(selID)
	}
	m.refreshDetail()
	m.setStatus(note, false)
	if m.store.Dirty() {
		m.saveViewState()
	}
	return m, tea.Batch(cmds...)
}

// rebuild regenerates outline nodes from the thread and swaps in a fresh
// list. Fold state does not survive; callers that can carry it over do so
// through Restore against a matching content hash.
func (m *Model) rebuild() {
	defer metrics.Timer(metrics.OutlineRebuild)()

	m.roots = loader.BuildNodes(m.thread, loader.BuildOptions{ShowDeleted: m.showDeleted})
	l := outline.NewList()
	l.AddAll(outline.Flatten(m.roots...)...)
	m.view.SetList(l, m.roots)
	m.hash = ContentHash(m.roots...)
	l.Watch(m.store.MarkDirty)
}

func (m *Model) rebuildPreservingCursor() {
	selID := m.view.SelectedID()
	m.rebuild()
	m.stats = nil
	if selID != "" {
		m.view.SelectByID(selID)
	}
	m.refreshDetail()
}

func (m *Model) applySort() {
	switch m.sortField {
	case sortScore:
		m.thread.SortReplies(model.ByScore)
	default:
		m.thread.SortReplies(model.ByCreated)
	}
}

func (m *Model) cycleSort() {
	if m.sortField == sortCreated {
		m.sortField = sortScore
	} else {
		m.sortField = sortCreated
	}
	m.applySort()
	m.rebuildPreservingCursor()
	m.setStatus("sorted by "+m.sortField+", folds reset", false)
}

func (m *Model) toggleDeleted() {
	m.showDeleted = !m.showDeleted
	m.rebuildPreservingCursor()
	if m.showDeleted {
		m.setStatus("showing deleted comments", false)
	} else {
		m.setStatus("hiding deleted comments", false)
	}
}

func (m *Model) ensureStats() {
	if m.stats == nil {
		s := analysis.Analyze(m.thread)
		m.stats = &s
	}
}

func (m *Model) yankBody() {
	n := m.view.SelectedNode()
	if n == nil {
		return
	}
	id, _ := n.Payload["id"].(string)
	body, _ := n.Payload["body"].(string)
	if err := clipboard.WriteAll(body); err != nil {
		m.setStatus("clipboard unavailable: "+err.Error(), true)
		return
	}
	m.setStatus("copied body of "+id, false)
}

func (m *Model) yankID() {
	n := m.view.SelectedNode()
	if n == nil {
		return
	}
	id, _ := n.Payload["id"].(string)
	if err := clipboard.WriteAll(id); err != nil {
		m.setStatus("clipboard unavailable: "+err.Error(), true)
		return
	}
	m.setStatus("copied "+id, false)
}

func (m *Model) saveViewState() {
	if err := m.store.Save(m.sourcePath, m.hash, m.view.CollapsedIndices()); err != nil {
		debug.Log("saving view state: %v", err)
	}
}

// afterAction runs once per handled thread key: refresh the detail pane for
// the possibly-moved cursor and persist fold changes.
func (m *Model) afterAction() {
	m.refreshDetail()
	if m.store.Dirty() {
		m.saveViewState()
	}
}

func (m *Model) setStatus(msg string, isError bool) {
	m.statusMsg = msg
	m.statusIsError = isError
}

func (m *Model) clearStatus() {
	m.statusMsg = ""
	m.statusIsError = false
}

func (m Model) splitActive() bool {
	return m.width >= splitMinWidth
}

func (m Model) bodyHeight() int {
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) detailWidth() int {
	if !m.splitActive() {
		return m.width
	}
	dw := int(float64(m.width) * m.cfg.UI.SplitRatio)
	if dw < 30 {
		dw = 30
	}
	return dw
}

func (m Model) threadWidth() int {
	if !m.splitActive() {
		return m.width
	}
	return m.width - m.detailWidth() - 1
}

func (m *Model) layout() {
	body := m.bodyHeight()
	m.view.SetSize(m.threadWidth(), body)
	m.viewport.Width = m.detailWidth()
	m.viewport.Height = body
	m.md = NewMarkdownRenderer(m.viewport.Width - 2)
}

// refreshDetail re-renders the detail pane for the current selection.
// Skipped while the pane is hidden so thread navigation stays cheap.
func (m *Model) refreshDetail() {
	if !m.splitActive() && m.focused != focusDetail {
		return
	}
	var c *model.Comment
	if id := m.view.SelectedID(); id != "" && m.thread != nil {
		c = m.thread.ByID[id]
	}
	m.viewport.SetContent(renderCommentDetail(c, m.md, m.theme, m.viewport.Width, m.cfg.RelativeTime()))
	m.viewport.GotoTop()
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if !m.ready {
		return "Loading..."
	}
	header := m.renderHeader()
	footer := m.renderFooter()
	body := m.renderBody()
	if pad := m.bodyHeight() - lipgloss.Height(body); pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	finalStyle := m.theme.Renderer.NewStyle().
		Width(m.width).
		Height(m.height).
		MaxHeight(m.height)
	return finalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, footer))
}

func (m Model) renderBody() string {
	switch {
	case m.showHelp:
		return renderHelpOverlay(m.theme, m.width, m.bodyHeight())
	case m.showInsights && m.stats != nil:
		return renderInsights(*m.stats, m.theme, m.width, m.bodyHeight())
	case m.focused == focusDetail && !m.splitActive():
		return m.viewport.View()
	case m.splitActive():
		return m.renderSplit()
	default:
		return m.view.View()
	}
}

func (m Model) renderSplit() string {
	divColor := m.theme.Border
	if m.focused == focusDetail {
		divColor = m.theme.Primary
	}
	rail := make([]string, m.bodyHeight())
	for i := range rail {
		rail[i] = "│"
	}
	div := m.theme.Renderer.NewStyle().
		Foreground(divColor).
		Render(strings.Join(rail, "\n"))
	left := m.theme.Renderer.NewStyle().
		Width(m.threadWidth()).
		Render(m.view.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, div, m.viewport.View())
}

func (m Model) renderHeader() string {
	title := strings.TrimSpace(m.thread.Title)
	if title == "" {
		title = "(untitled thread)"
	}
	parts := []string{title, fmt.Sprintf("%d comments", m.thread.Count())}
	if n := m.view.List().Collapsed(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d folded", n))
	}
	if m.sortField == sortScore {
		parts = append(parts, "sort: score")
	}
	if !m.showDeleted {
		parts = append(parts, "deleted hidden")
	}
	if m.sourceTag != "" {
		parts = append(parts, m.sourceTag)
	}
	return m.theme.Header.Width(m.width).Render(truncate("sk · "+strings.Join(parts, " · "), m.width))
}

func (m *Model) renderFooter() string {
	base := m.theme.Renderer.NewStyle().Width(m.width).MaxHeight(1)

	if m.searching {
		line := m.searchInput.View()
		if s := m.view.MatchStatus(); s != "" {
			line += "  " + m.theme.MutedText.Render(s)
		}
		return base.Render(line)
	}

	if m.statusMsg != "" {
		prefix := "✓"
		bg := ColorSuccessBg
		if m.statusIsError {
			prefix = "✗"
			bg = ColorDangerBg
		}
		status := m.theme.Renderer.NewStyle().
			Background(ThemeBg(bg)).
			Foreground(ThemeFg(ColorText)).
			Bold(true).
			Padding(0, 1).
			Render(prefix + " " + truncate(m.statusMsg, m.width-4))
		return base.Render(status)
	}

	var hints []string
	switch {
	case m.showHelp, m.showInsights:
		hints = []string{"esc close"}
	case m.focused == focusDetail:
		hints = []string{"j/k scroll", "d thread", "y yank", "q quit"}
	default:
		hints = []string{"j/k move", "enter fold", "/ search", "d detail", "i insights", "? help", "q quit"}
		if s := m.view.MatchStatus(); s != "" {
			hints = append([]string{"match " + s + " (n/N)"}, hints...)
		}
	}
	return base.Render(" " + m.theme.MutedText.Render(strings.Join(hints, " · ")))
}
