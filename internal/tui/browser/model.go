// Package browser implements the interactive activity browser: a
// three-level drill-down from a summary of all platforms, to the
// categories of one platform, to the items of one category.
package browser

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kain88-de/reviewr/internal/activity"
)

// ViewKind identifies the level of the drill-down.
type ViewKind int

const (
	ViewSummary ViewKind = iota
	ViewPlatform
	ViewCategory
)

// View is the current navigation state.
type View struct {
	Kind       ViewKind
	PlatformID string
	Category   activity.Category
}

// PlatformInfo describes one configured platform.
type PlatformInfo struct {
	ID   string
	Name string
	Icon string
}

// Options configure a browser Model.
type Options struct {
	EmployeeName  string
	EmployeeEmail string

	// Platforms lists every configured platform, including those whose
	// fetch failed and therefore have no entry in Activities.
	Platforms  []PlatformInfo
	Activities map[string]activity.DetailedActivities

	// PreferredOrder puts these platform ids first; the rest follow
	// sorted by id.
	PreferredOrder []string
	ShowIcons      bool
	Theme          string

	Opener Opener
	// ItemURL resolves the URL opened for an item. Defaults to Item.URL.
	ItemURL func(activity.Item) string
	Logger  *slog.Logger
}

// Model is the bubbletea model of the browser.
type Model struct {
	employeeName  string
	employeeEmail string
	platforms     map[string]PlatformInfo
	activities    map[string]activity.DetailedActivities
	order         []string
	showIcons     bool

	view          View
	cursor        int
	platformIndex int
	categoryIndex int
	showHelp      bool
	status        string
	statusErr     bool

	width, height int
	keys          KeyMap
	help          help.Model
	list          viewport.Model
	styles        Styles

	opener  Opener
	itemURL func(activity.Item) string
	logger  *slog.Logger
}

// New creates a browser positioned on the summary.
func New(opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Opener == nil {
		opts.Opener = NewSystemOpener()
	}
	if opts.ItemURL == nil {
		opts.ItemURL = func(item activity.Item) string { return item.URL }
	}
	if opts.Activities == nil {
		opts.Activities = map[string]activity.DetailedActivities{}
	}

	platforms := make(map[string]PlatformInfo, len(opts.Platforms))
	ids := make([]string, 0, len(opts.Platforms))
	for _, p := range opts.Platforms {
		if p.Name == "" {
			p.Name = p.ID
		}
		if _, dup := platforms[p.ID]; !dup {
			ids = append(ids, p.ID)
		}
		platforms[p.ID] = p
	}

	h := help.New()
	h.ShowAll = true

	return &Model{
		employeeName:  opts.EmployeeName,
		employeeEmail: opts.EmployeeEmail,
		platforms:     platforms,
		activities:    opts.Activities,
		order:         PlatformOrder(ids, opts.PreferredOrder),
		showIcons:     opts.ShowIcons,
		keys:          DefaultKeyMap(),
		help:          h,
		list:          viewport.New(0, 0),
		styles:        NewStyles(opts.Theme),
		opener:        opts.Opener,
		itemURL:       opts.ItemURL,
		logger:        opts.Logger,
	}
}

// PlatformOrder returns ids with the preferred ids first, in preference
// order, followed by the remaining ids sorted. Preferred ids that are not
// in ids are ignored.
func PlatformOrder(ids, preferred []string) []string {
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	out := make([]string, 0, len(ids))
	used := make(map[string]bool, len(ids))
	for _, id := range preferred {
		if present[id] && !used[id] {
			out = append(out, id)
			used[id] = true
		}
	}
	var rest []string
	for _, id := range ids {
		if !used[id] {
			rest = append(rest, id)
			used[id] = true
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// CurrentView returns the navigation state.
func (m *Model) CurrentView() View { return m.view }

// Cursor returns the selected index of the current list.
func (m *Model) Cursor() int { return m.cursor }

// Order returns the platform display order.
func (m *Model) Order() []string { return m.order }

// HelpVisible reports whether the help overlay is shown.
func (m *Model) HelpVisible() bool { return m.showHelp }

// Status returns the status line message.
func (m *Model) Status() string { return m.status }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.SetWindowTitle("reviewr - " + m.employeeName)
}

// openedMsg reports the outcome of opening an item URL.
type openedMsg struct {
	url string
	err error
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case openedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to open URL in browser", "url", msg.url, "error", msg.err)
			m.status = fmt.Sprintf("Failed to open %s: %v", msg.url, msg.err)
			m.statusErr = true
		} else {
			m.status = "Opened " + msg.url
			m.statusErr = false
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Summary):
		m.view = View{Kind: ViewSummary}
		m.cursor = m.platformIndex
	case key.Matches(msg, m.keys.NextTab):
		m.switchPlatform(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchPlatform(-1)
	case key.Matches(msg, m.keys.Confirm):
		return m, m.confirm()
	case key.Matches(msg, m.keys.Back):
		m.back()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	}
	return m, nil
}

// switchPlatform moves the platform selection by delta with wrap-around.
// Outside the summary it also shows the newly selected platform.
func (m *Model) switchPlatform(delta int) {
	n := len(m.order)
	if n == 0 {
		return
	}
	m.platformIndex = (m.platformIndex + delta + n) % n
	if m.view.Kind == ViewSummary {
		m.cursor = m.platformIndex
		return
	}
	m.view = View{Kind: ViewPlatform, PlatformID: m.order[m.platformIndex]}
	m.categoryIndex = 0
	m.cursor = 0
}

func (m *Model) confirm() tea.Cmd {
	switch m.view.Kind {
	case ViewSummary:
		if len(m.order) == 0 {
			return nil
		}
		m.platformIndex = m.cursor
		m.view = View{Kind: ViewPlatform, PlatformID: m.order[m.platformIndex]}
		m.categoryIndex = 0
		m.cursor = 0

	case ViewPlatform:
		cats := m.categories(m.view.PlatformID)
		if m.cursor >= len(cats) {
			return nil
		}
		m.categoryIndex = m.cursor
		m.view = View{Kind: ViewCategory, PlatformID: m.view.PlatformID, Category: cats[m.cursor]}
		m.cursor = 0

	case ViewCategory:
		items := m.items(m.view.PlatformID, m.view.Category)
		if m.cursor >= len(items) {
			return nil
		}
		url := m.itemURL(items[m.cursor])
		if url == "" {
			m.status = "Item has no URL"
			m.statusErr = true
			return nil
		}
		opener := m.opener
		return func() tea.Msg {
			return openedMsg{url: url, err: opener.Open(url)}
		}
	}
	return nil
}

func (m *Model) back() {
	switch m.view.Kind {
	case ViewCategory:
		m.view = View{Kind: ViewPlatform, PlatformID: m.view.PlatformID}
		m.cursor = m.categoryIndex
	case ViewPlatform:
		m.view = View{Kind: ViewSummary}
		m.cursor = m.platformIndex
	}
}

// move shifts the cursor by delta, wrapping at both ends of the list.
func (m *Model) move(delta int) {
	n := m.listLen()
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
	switch m.view.Kind {
	case ViewSummary:
		m.platformIndex = m.cursor
	case ViewPlatform:
		m.categoryIndex = m.cursor
	}
}

func (m *Model) listLen() int {
	switch m.view.Kind {
	case ViewSummary:
		return len(m.order)
	case ViewPlatform:
		return len(m.categories(m.view.PlatformID))
	default:
		return len(m.items(m.view.PlatformID, m.view.Category))
	}
}

func (m *Model) categories(platformID string) []activity.Category {
	d, ok := m.activities[platformID]
	if !ok {
		return nil
	}
	return d.Categories()
}

func (m *Model) items(platformID string, c activity.Category) []activity.Item {
	d, ok := m.activities[platformID]
	if !ok {
		return nil
	}
	return d.Items(c)
}

// Run starts the browser on the terminal and blocks until it quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
