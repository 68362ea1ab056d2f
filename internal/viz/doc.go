// Package viz holds the terminal look shared by the race report and the
// live replay: lipgloss styles, color themes and small text widgets
// (sparklines, progress bars, gradient titles).
//
// Each car on the grid is drawn in its own lane color, taken from the
// current theme in grid order.
package viz
