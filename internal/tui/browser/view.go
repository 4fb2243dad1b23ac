package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/ui"
)

const (
	titleWidth   = 60
	projectWidth = 20
	cursorMark   = "▶ "
	defaultIcon  = "📄"

	// Rows taken by header, footer, tabs and the detail panel.
	chromeRows = 20
)

const helpIntro = "📋 Multi-Platform Review Browser Help"

const helpFeatures = `FEATURES:
  • Summary: Overview of all configured platforms
  • Platform View: Browse categories within a platform
  • Category View: View specific items (changes, tickets, etc.)
  • Open items directly in your web browser`

const helpClose = "Press h or Esc to close this help."

var footers = map[ViewKind]string{
	ViewSummary:  "Tab/Shift+Tab: Switch Platform | Enter: View Platform | h: Help | q: Quit",
	ViewPlatform: "↑/↓: Navigate | Enter: View Category | Backspace: Back | h: Help | q: Quit",
	ViewCategory: "↑/↓: Navigate | Enter: Open in Browser | Backspace: Back | h: Help | q: Quit",
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.frame("Employee Review Dashboard",
		m.styles.Header.Render(fmt.Sprintf("📋 %s (%s) - %s", m.employeeName, m.employeeEmail, m.Title()))))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.frame("Help", m.helpText()))
		return b.String()
	}

	switch m.view.Kind {
	case ViewSummary:
		b.WriteString(m.renderSummary())
	case ViewPlatform:
		b.WriteString(m.renderPlatform())
	case ViewCategory:
		b.WriteString(m.renderCategory())
	}
	b.WriteString("\n")

	if m.status != "" {
		style := m.styles.Status
		if m.statusErr {
			style = m.styles.Error
		}
		b.WriteString(style.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.frame("Controls", m.styles.Footer.Render(footers[m.view.Kind])))
	return b.String()
}

// Title returns the title of the current view.
func (m *Model) Title() string {
	switch m.view.Kind {
	case ViewPlatform:
		return fmt.Sprintf("🏢 %s Activity", m.platformName(m.view.PlatformID))
	case ViewCategory:
		return fmt.Sprintf("📋 %s - %s", m.platformName(m.view.PlatformID), m.view.Category.DisplayName())
	default:
		return "📊 Multi-Platform Activity Summary"
	}
}

func (m *Model) platformName(id string) string {
	if p, ok := m.platforms[id]; ok {
		return p.Name
	}
	return id
}

// platformLabel is the platform name, prefixed with its icon when icons
// are enabled.
func (m *Model) platformLabel(id string) string {
	name := m.platformName(id)
	if !m.showIcons {
		return name
	}
	icon := defaultIcon
	if p, ok := m.platforms[id]; ok && p.Icon != "" {
		icon = p.Icon
	}
	return icon + " " + name
}

// SummaryLine renders the summary entry of one platform.
func (m *Model) SummaryLine(id string) string {
	d, ok := m.activities[id]
	if !ok {
		return m.platformLabel(id) + " - No data available"
	}
	return fmt.Sprintf("%s - %d items across %d categories", m.platformLabel(id), d.Total(), len(d.Categories()))
}

// CategoryLine renders a category entry of the platform view.
func CategoryLine(c activity.Category, count int) string {
	return fmt.Sprintf("%s %s (%d)", c.Icon(), c.DisplayName(), count)
}

// ItemLine renders an item entry: "[id] title - project", with the title
// cut to 60 runes and the project to 20.
func ItemLine(item activity.Item) string {
	return fmt.Sprintf("[%s] %s - %s", item.ID, ui.Truncate(item.Title, titleWidth), ui.Truncate(item.Project, projectWidth))
}

// ItemDetails renders the detail panel of an item.
func ItemDetails(item activity.Item) string {
	return fmt.Sprintf("ID: %s\nTitle: %s\nProject: %s\nStatus: %s\nCreated: %s\nUpdated: %s",
		item.ID, item.Title, item.Project, item.Status, item.Created, item.Updated)
}

func (m *Model) renderSummary() string {
	tabs := make([]string, len(m.order))
	lines := make([]string, len(m.order))
	for i, id := range m.order {
		style := m.styles.Tab
		if i == m.platformIndex {
			style = m.styles.ActiveTab
		}
		tabs[i] = style.Render(m.platformLabel(id))
		lines[i] = m.SummaryLine(id)
	}
	if len(m.order) == 0 {
		lines = []string{"No platforms configured"}
	}
	return m.frame("Available Platforms", lipgloss.JoinHorizontal(lipgloss.Top, tabs...)) + "\n" +
		m.frame("Platform Summary", m.renderList(lines, len(m.order) > 0))
}

func (m *Model) renderPlatform() string {
	id := m.view.PlatformID
	cats := m.categories(id)
	lines := make([]string, len(cats))
	for i, c := range cats {
		lines[i] = CategoryLine(c, len(m.items(id, c)))
	}
	if len(cats) == 0 {
		lines = []string{"No activity data available"}
	}
	return m.frame("Categories in "+m.platformName(id), m.renderList(lines, len(cats) > 0))
}

func (m *Model) renderCategory() string {
	items := m.items(m.view.PlatformID, m.view.Category)
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = ItemLine(item)
	}
	if len(items) == 0 {
		lines = []string{"No items"}
	}
	out := m.frame(m.view.Category.DisplayName()+" Items", m.renderList(lines, len(items) > 0))
	if m.cursor < len(items) {
		out += "\n" + m.frame("Details", m.styles.Item.Render(ItemDetails(items[m.cursor])))
	}
	return out
}

// renderList marks the cursor line and scrolls the list so the cursor
// stays visible once the terminal size is known.
func (m *Model) renderList(lines []string, selectable bool) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		if selectable && i == m.cursor {
			rendered[i] = m.styles.Selected.Render(cursorMark + line)
		} else {
			rendered[i] = m.styles.Item.Render("  " + line)
		}
	}
	content := strings.Join(rendered, "\n")
	if m.height == 0 {
		return content
	}

	m.list.Width = max(m.width-4, 20)
	m.list.Height = max(m.height-chromeRows, 3)
	m.list.SetContent(content)
	switch {
	case m.cursor < m.list.YOffset:
		m.list.SetYOffset(m.cursor)
	case m.cursor >= m.list.YOffset+m.list.Height:
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
	return m.list.View()
}

func (m *Model) helpText() string {
	return strings.Join([]string{
		helpIntro,
		"",
		m.help.View(m.keys),
		"",
		helpFeatures,
		"",
		helpClose,
	}, "\n")
}

// frame draws a bordered box with a title line.
func (m *Model) frame(title, body string) string {
	style := m.styles.Frame
	if m.width > 0 {
		style = style.Width(max(m.width-2, 20))
	}
	return style.Render(m.styles.FrameTitle.Render(title) + "\n" + body)
}
