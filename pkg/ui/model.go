package ui

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/mindmesh/pkg/config"
	"github.com/vanderheijden86/mindmesh/pkg/debug"
	"github.com/vanderheijden86/mindmesh/pkg/generate"
	"github.com/vanderheijden86/mindmesh/pkg/model"
	"github.com/vanderheijden86/mindmesh/pkg/version"
	"github.com/vanderheijden86/mindmesh/pkg/wiki"
)

const (
	frameInterval   = 50 * time.Millisecond
	noticeLifetime  = 4 * time.Second
	searchTimeout   = 60 * time.Second
	imageTimeout    = 20 * time.Second
	defaultPanelW   = 44
	thumbFetchLimit = 4
)

type focusArea int

const (
	focusInput focusArea = iota
	focusMap
	focusPanel
)

// Messages delivered by asynchronous work. Every message that belongs to a
// search or a panel selection carries the generation token of the request
// that started it, so answers to superseded requests are dropped.
type (
	conceptsMsg struct {
		gen      int
		topic    string
		concepts []model.Concept
	}
	searchFailedMsg struct {
		gen   int
		topic string
		err   error
	}
	thumbsMsg struct {
		gen  int
		urls map[string]string
	}
	imageMsg struct {
		gen int
		img image.Image
	}
	quizMsg struct {
		gen int
		q   model.QuizQuestion
		err error
	}
	cardMsg struct {
		gen  int
		card model.Flashcard
		err  error
	}
	frameMsg         time.Time
	noticeExpiredMsg struct{ id int }
)

// ConfigReloadedMsg is sent from outside the program (the config file
// watcher) when the configuration on disk changed.
type ConfigReloadedMsg struct {
	Config config.Config
}

// Model is the root bubbletea model: search input, mind map, side panel,
// history and status line.
type Model struct {
	cfg   config.Config
	theme Theme

	gen  generate.Client
	wiki *wiki.Client

	input   textinput.Model
	spin    spinner.Model
	mindmap *MindMap
	panel   *Panel
	history History

	width, height int
	focus         focusArea
	topic         string
	loading       bool

	searchGen    int
	thumbs       map[string]string
	framePending bool

	notice    string
	noticeErr bool
	noticeID  int
}

// NewModel wires the root model. gen must not be nil; wikiClient may be nil
// to disable thumbnails.
func NewModel(cfg config.Config, theme Theme, gen generate.Client, wikiClient *wiki.Client) *Model {
	in := textinput.New()
	in.Placeholder = cfg.UI.DefaultTopic
	in.Prompt = "? "
	in.CharLimit = 120
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = theme.NoticeInfo

	return &Model{
		cfg:     cfg,
		theme:   theme,
		gen:     gen,
		wiki:    wikiClient,
		input:   in,
		spin:    sp,
		mindmap: NewMindMap(theme, nil),
		panel:   NewPanel(theme),
		thumbs:  map[string]string{},
	}
}

// Init starts the spinner and, when configured, an initial search.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, textinput.Blink}
	if t := strings.TrimSpace(m.cfg.UI.DefaultTopic); t != "" {
		cmds = append(cmds, m.startSearch(t))
	}
	return tea.Batch(cmds...)
}

func (m *Model) panelWidth() int {
	w := m.cfg.UI.PanelWidth
	if w <= 0 {
		w = defaultPanelW
	}
	if w > m.width/2 {
		w = m.width / 2
	}
	return w
}

func (m *Model) mapSize() (int, int) {
	w := m.width
	if m.panel != nil {
		if _, ok := m.panel.Concept(); ok {
			w -= m.panelWidth()
		}
	}
	h := m.height - 3 // header + status
	return w, h
}

// Update is the single message pump.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case frameMsg:
		m.framePending = false
		if m.mindmap.Tick() || m.mindmap.Dragging() {
			return m, m.scheduleFrame()
		}
		return m, nil

	case conceptsMsg:
		return m.handleConcepts(msg)

	case searchFailedMsg:
		if msg.gen != m.searchGen {
			return m, nil
		}
		m.loading = false
		// A failed search leaves no half-built map behind.
		m.topic = ""
		m.mindmap.SetData(model.GraphData{})
		m.panel.Clear()
		m.resize()
		return m, m.showNotice(fmt.Sprintf("search %q failed: %v", msg.topic, msg.err), true)

	case thumbsMsg:
		if msg.gen == m.searchGen {
			m.thumbs = msg.urls
		}
		return m, nil

	case imageMsg:
		m.panel.SetImage(msg.gen, msg.img)
		return m, nil

	case quizMsg:
		m.panel.SetQuiz(msg.gen, msg.q, msg.err)
		return m, nil

	case cardMsg:
		m.panel.AddCard(msg.gen, msg.card, msg.err)
		return m, nil

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		m.resize()
		return m, m.showNotice("configuration reloaded", false)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) resize() {
	mw, mh := m.mapSize()
	m.mindmap.SetSize(mw, mh)
	m.panel.SetSize(m.panelWidth(), m.height-3)
	m.input.Width = m.width - 20
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	if m.focus == focusInput {
		switch msg.String() {
		case "enter":
			topic := strings.TrimSpace(m.input.Value())
			if topic == "" {
				topic = strings.TrimSpace(m.cfg.UI.DefaultTopic)
			}
			if topic == "" {
				return m, nil
			}
			m.focus = focusMap
			m.input.Blur()
			return m, m.startSearch(topic)
		case "esc":
			m.focus = focusMap
			m.input.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	// Map / panel focus.
	switch msg.String() {
	case "q":
		if m.focus != focusPanel {
			return m, tea.Quit
		}
	case "/":
		m.focus = focusInput
		m.input.SetValue("")
		return m, m.input.Focus()
	case "esc":
		if m.focus == focusPanel {
			m.focus = focusMap
			m.mindmap.ClearSelection()
			m.panel.Clear()
			m.resize()
		}
		return m, nil
	case "tab":
		if _, ok := m.panel.Concept(); ok {
			if m.focus == focusPanel {
				m.focus = focusMap
			} else {
				m.focus = focusPanel
			}
		}
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
		if m.focus == focusMap {
			i := int(msg.String()[0] - '1')
			if msg.String() == "0" {
				i = 9
			}
			if t := m.history.At(i); t != "" {
				return m, m.startSearch(t)
			}
		}
		return m, nil
	}

	if m.focus == focusPanel {
		return m.handlePanelKey(msg)
	}

	// Map navigation.
	switch msg.String() {
	case "left", "h":
		m.mindmap.Pan(-4, 0)
	case "right", "l":
		m.mindmap.Pan(4, 0)
	case "up", "k":
		m.mindmap.Pan(0, -2)
	case "down", "j":
		m.mindmap.Pan(0, 2)
	case "+", "=":
		m.mindmap.zoomAt(m.width/2, m.height/2, 1.2)
	case "-", "_":
		m.mindmap.zoomAt(m.width/2, m.height/2, 1/1.2)
	case "r":
		m.mindmap.ResetView()
	}
	return m, nil
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c, ok := m.panel.Concept()
	if !ok {
		return m, nil
	}
	switch m.panel.HandleKey(msg) {
	case PanelRequestQuiz:
		return m, m.fetchQuiz(m.panel.Generation(), c)
	case PanelRequestCard:
		return m, m.fetchCard(m.panel.Generation(), c, m.panel.Cards())
	case PanelRequestFocus:
		// Re-center the map on this concept: close the panel and search it
		// as a topic in its own right.
		m.focus = focusMap
		m.mindmap.ClearSelection()
		m.panel.Clear()
		m.resize()
		return m, m.startSearch(c.Concept)
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	mw, _ := m.mapSize()
	if msg.X >= mw {
		return m, nil
	}
	local := msg
	local.Y -= 2 // header rows
	if id := m.mindmap.Mouse(local); id != "" {
		return m, m.selectNode(id)
	}
	if m.mindmap.Dragging() || m.mindmap.Running() {
		return m, m.scheduleFrame()
	}
	return m, nil
}

func (m *Model) handleConcepts(msg conceptsMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.searchGen {
		debug.Log("ui: dropping stale search result for %q", msg.topic)
		return m, nil
	}
	m.loading = false
	m.topic = msg.topic
	m.history.Add(msg.topic)
	m.thumbs = map[string]string{}

	data := model.BuildGraph(msg.topic, msg.concepts)
	m.panel.Clear()
	m.resize()
	m.mindmap.SetData(data)

	cmds := []tea.Cmd{m.scheduleFrame()}
	if m.wiki != nil {
		cmds = append(cmds, m.prefetchThumbs(msg.gen, data))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) selectNode(id string) tea.Cmd {
	n := m.mindmap.Selected()
	if n == nil || n.ID != id {
		return nil
	}
	m.focus = focusPanel
	gen := m.panel.SetConcept(n.Data)
	m.resize()

	cmds := []tea.Cmd{
		m.fetchImage(gen, n.Data.Concept),
		m.fetchCard(gen, n.Data, nil),
	}
	return tea.Batch(cmds...)
}

// --- async commands ---------------------------------------------------------

// scheduleFrame arms the next layout tick unless one is already in flight,
// so overlapping triggers (mouse motion plus a running settle) never stack
// tick loops.
func (m *Model) scheduleFrame() tea.Cmd {
	if m.framePending {
		return nil
	}
	m.framePending = true
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) showNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeID++
	id := m.noticeID
	return tea.Tick(noticeLifetime, func(time.Time) tea.Msg { return noticeExpiredMsg{id} })
}

func (m *Model) startSearch(topic string) tea.Cmd {
	m.loading = true
	m.searchGen++
	gen := m.searchGen
	client := m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		start := time.Now()
		concepts, err := client.GenerateMap(ctx, topic)
		debug.LogTiming("GenerateMap("+topic+")", time.Since(start))
		if err != nil {
			return searchFailedMsg{gen: gen, topic: topic, err: err}
		}
		return conceptsMsg{gen: gen, topic: topic, concepts: concepts}
	}
}

// prefetchThumbs resolves thumbnail URLs for every concept concurrently so
// the panel image appears quickly on selection. Failures are silent; a
// concept without a thumbnail simply has no entry.
func (m *Model) prefetchThumbs(gen int, data model.GraphData) tea.Cmd {
	names := make([]string, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		names = append(names, n.Data.Concept)
	}
	client := m.wiki
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), imageTimeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(thumbFetchLimit)
		results := make([]string, len(names))
		for i, name := range names {
			i, name := i, name
			g.Go(func() error {
				results[i] = client.ThumbnailURL(ctx, name)
				return nil
			})
		}
		g.Wait()

		urls := make(map[string]string, len(names))
		for i, name := range names {
			if results[i] != "" {
				urls[name] = results[i]
			}
		}
		return thumbsMsg{gen: gen, urls: urls}
	}
}

func (m *Model) fetchImage(gen int, name string) tea.Cmd {
	if m.wiki == nil {
		return func() tea.Msg { return imageMsg{gen: gen} }
	}
	client := m.wiki
	url := m.thumbs[name]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), imageTimeout)
		defer cancel()
		if url == "" {
			url = client.ThumbnailURL(ctx, name)
		}
		if url == "" {
			return imageMsg{gen: gen}
		}
		img, err := client.FetchImage(ctx, url)
		if err != nil {
			debug.Log("ui: image fetch for %q: %v", name, err)
			return imageMsg{gen: gen}
		}
		return imageMsg{gen: gen, img: img}
	}
}

func (m *Model) fetchQuiz(gen int, c model.Concept) tea.Cmd {
	client := m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		q, err := client.GenerateQuiz(ctx, c)
		return quizMsg{gen: gen, q: q, err: err}
	}
}

func (m *Model) fetchCard(gen int, c model.Concept, previous []model.Flashcard) tea.Cmd {
	client := m.gen
	prev := make([]model.Flashcard, len(previous))
	copy(prev, previous)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		card, err := client.GenerateFlashcard(ctx, c, prev)
		return cardMsg{gen: gen, card: card, err: err}
	}
}

// --- view -------------------------------------------------------------------

// View assembles header, map, optional panel and status line.
func (m *Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	header := m.theme.Header.Render("mindmesh "+version.Version) + "  " + m.input.View()
	if m.loading {
		header += "  " + m.spin.View() + m.theme.NoticeInfo.Render(" thinking…")
	}

	mapView := m.mindmap.View()
	body := mapView
	if _, ok := m.panel.Concept(); ok {
		pw := m.panelWidth()
		panel := m.theme.PanelBorder.
			Width(pw - 2).
			Height(m.height - 5).
			Render(m.panel.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, mapView, panel)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, m.statusLine())
}

func (m *Model) statusLine() string {
	var parts []string
	if m.notice != "" {
		st := m.theme.NoticeInfo
		if m.noticeErr {
			st = m.theme.NoticeError
		}
		parts = append(parts, st.Render(m.notice))
	}
	if m.topic != "" {
		parts = append(parts, m.theme.StatusBar.Render("topic: "+m.topic))
	}
	if topics := m.history.Topics(); len(topics) > 1 {
		parts = append(parts, m.theme.StatusBar.Render(
			fmt.Sprintf("history: %s (press 1-%d)", strings.Join(topics, " · "), len(topics))))
	}
	parts = append(parts, m.theme.HelpText.Render("/ search · drag to pin · q quit"))
	return strings.Join(parts, "  ")
}
