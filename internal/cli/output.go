package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/pkl/pkg/types"
)

var (
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	progressStyle = lipgloss.NewStyle().Faint(true)
)

// printSuccess writes "success: <msg>" followed by one line per context entry.
func printSuccess(w io.Writer, msg string, context ...string) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("success:"), msg)
	for _, line := range context {
		fmt.Fprintln(w, line)
	}
}

// printError writes "error: <msg>" followed by one line per context entry.
func printError(w io.Writer, msg string, context ...string) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("error:"), msg)
	for _, line := range context {
		fmt.Fprintln(w, line)
	}
}

// progressPrinter renders pipeline progress, one line per transition.
type progressPrinter struct {
	w io.Writer
}

func (p progressPrinter) Started(pkg string, stage types.Stage) {
	fmt.Fprintln(p.w, progressStyle.Render(fmt.Sprintf("%s - %s...", pkg, stage.Progressive())))
}

func (p progressPrinter) Failed(pkg string, _ types.Stage) {
	fmt.Fprintf(p.w, "%s %s - error\n", errorStyle.Render("✖"), pkg)
}

func (p progressPrinter) Installed(pkg string) {
	fmt.Fprintf(p.w, "%s %s - installed\n", successStyle.Render("✔"), pkg)
}
