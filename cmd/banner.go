package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/swiftline-carrier/driver-notify/internal/build"
	"github.com/swiftline-carrier/driver-notify/internal/config"
	"github.com/swiftline-carrier/driver-notify/internal/server"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 2)
)

// printBanner writes the startup summary. Structured logs go to the logger.
func printBanner(w io.Writer, cfg *config.AppConfig) {
	logs := "stdout"
	if cfg.LogDir != "" {
		logs = cfg.LogDir
	}
	lines := []string{
		titleStyle.Render("Swiftline driver-notify " + build.Version),
		"",
		labelStyle.Render("Events") + fmt.Sprintf("POST http://localhost:%d%s", cfg.Port, server.EventsPath),
		labelStyle.Render("Relay") + fmt.Sprintf("%s:%d (%s)", cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEncryption),
		labelStyle.Render("Logs") + logs,
	}
	if cfg.MongoEnabled() {
		lines = append(lines, labelStyle.Render("Watching")+cfg.MongoDatabase+"."+cfg.DriversCollection)
	}
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
