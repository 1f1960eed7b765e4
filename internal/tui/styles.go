package tui

import "github.com/charmbracelet/lipgloss"

// One Dark Pro color palette
var (
	ColorBgHighlight = lipgloss.Color("#2C313C")

	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorFgComment = lipgloss.Color("#5C6370")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorOrange  = lipgloss.Color("#D19A66")

	ColorBorder = lipgloss.Color("#3F4451")
)

// Component styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true).
			PaddingLeft(1)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true).
			Padding(0, 2)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(ColorFgMuted).
				Padding(0, 2)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ItemTitleStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			Bold(true)

	ItemSelectedStyle = lipgloss.NewStyle().
				Background(ColorBgHighlight).
				Foreground(ColorFgPrimary).
				Bold(true)

	ItemMetaStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)

	BadgeActiveStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	BadgeDoneStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	BadgeMutedStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	OverdueStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	PriorityHighStyle = lipgloss.NewStyle().
				Foreground(ColorOrange)

	PriorityCriticalStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	FormTitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)
)
