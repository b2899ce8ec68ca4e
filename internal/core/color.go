package core

// Color represents a foreground color for a screen cell.
// Values map to ANSI 256-color codes in the platform layer.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorDarkGray
)

// TeamColor returns the display color for a team name.
// Unknown teams are drawn in white.
func TeamColor(team string) Color {
	switch team {
	case "blue":
		return ColorBrightBlue
	case "green":
		return ColorBrightGreen
	case "red":
		return ColorBrightRed
	case "yellow":
		return ColorBrightYellow
	case "":
		return ColorGray
	default:
		return ColorWhite
	}
}
