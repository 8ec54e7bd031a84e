package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/stefanpenner/taskbuddy/pkg/tasks"
)

// Color palette
var (
	ColorPurple      = lipgloss.Color("#7D56F4")
	ColorGreen       = lipgloss.Color("#25A065")
	ColorBlue        = lipgloss.Color("#4285F4")
	ColorRed         = lipgloss.Color("#E05252")
	ColorYellow      = lipgloss.Color("#E5C07B")
	ColorGray        = lipgloss.Color("#626262")
	ColorGrayDim     = lipgloss.Color("#404040")
	ColorWhite       = lipgloss.Color("#FFFFFF")
	ColorOffWhite    = lipgloss.Color("#D0D0D0")
	ColorMagenta     = lipgloss.Color("#C678DD")
	ColorSelectionBg = lipgloss.Color("#2D3B4D")
	ColorCyan        = lipgloss.Color("#56B6C2")
	ColorOrange      = lipgloss.Color("#D19A66")
	ColorTodayBg     = lipgloss.Color("#3E2F1F")
)

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	HeaderCountStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	StatusInfoStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	StatusErrorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorRed)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorPurple).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Padding(0, 1)
)

// Task row styles
var (
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorSelectionBg)

	CompleteStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	CompletedTitleStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Strikethrough(true)

	IncompleteStyle = lipgloss.NewStyle().
			Foreground(ColorOffWhite)

	DueStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	RowIndent = "  "
)

// Priority styles
var (
	PriorityHighStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorRed)

	PriorityMediumStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	PriorityLowStyle = lipgloss.NewStyle().
				Foreground(ColorGray)
)

func priorityStyle(p tasks.Priority) lipgloss.Style {
	switch p {
	case tasks.PriorityHigh:
		return PriorityHighStyle
	case tasks.PriorityMedium:
		return PriorityMediumStyle
	default:
		return PriorityLowStyle
	}
}

var categoryColors = map[tasks.Category]lipgloss.Color{
	tasks.CategoryWork:     ColorBlue,
	tasks.CategoryStudy:    ColorMagenta,
	tasks.CategoryHome:     ColorOrange,
	tasks.CategoryPersonal: ColorCyan,
	tasks.CategoryProjects: ColorGreen,
}

func categoryBadge(c tasks.Category) string {
	color, ok := categoryColors[c]
	if !ok {
		color = ColorGray
	}
	return lipgloss.NewStyle().Foreground(color).Render(c.Label())
}

// Calendar styles
var (
	CalendarHeaderStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	CalendarDayStyle = lipgloss.NewStyle().
				Foreground(ColorOffWhite)

	CalendarOtherMonthStyle = lipgloss.NewStyle().
				Foreground(ColorGrayDim)

	CalendarTodayStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorOrange).
				Background(ColorTodayBg)

	CalendarSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWhite).
				Background(ColorPurple)

	CalendarMarkStyle = lipgloss.NewStyle().
				Foreground(ColorCyan)
)

// Notification styles
var (
	UnreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	ReadStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPurple).
			Padding(1, 2)

	AlertModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorRed).
			Padding(1, 2)

	ModalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPurple)

	ModalLabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Width(14)

	ModalFocusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorPurple).
				Width(14)

	ModalValueStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)
)

// Input styles
var (
	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)
)

// Icons
const (
	IconComplete   = "✓"
	IconIncomplete = "○"
	IconUnread     = "●"
	IconRead       = " "
	IconMark       = "•"
	IconSelectL    = "‹"
	IconSelectR    = "›"
)

func notificationIcon(kind string) string {
	switch kind {
	case "deadline":
		return "⏰"
	case "reminder":
		return "🔔"
	case "achievement":
		return "🏆"
	case "success":
		return "✅"
	default:
		return "ℹ"
	}
}

// ColorAccent is the current accent, set by applyAccent.
var ColorAccent = ColorPurple

var accentColors = map[string]lipgloss.Color{
	"blue":   ColorBlue,
	"purple": ColorPurple,
	"green":  ColorGreen,
	"orange": ColorOrange,
	"pink":   lipgloss.Color("#E06C9F"),
}

// applyAccent recolors the accent styles. Unknown names keep the current
// accent.
func applyAccent(name string) {
	c, ok := accentColors[name]
	if !ok {
		return
	}
	ColorAccent = c
	HeaderStyle = HeaderStyle.Foreground(c)
	ActiveTabStyle = ActiveTabStyle.Background(c)
	CalendarSelectedStyle = CalendarSelectedStyle.Background(c)
	ModalStyle = ModalStyle.BorderForeground(c)
	ModalTitleStyle = ModalTitleStyle.Foreground(c)
	ModalFocusedLabelStyle = ModalFocusedLabelStyle.Foreground(c)
	InputPromptStyle = InputPromptStyle.Foreground(c)
}
