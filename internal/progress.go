package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// UIManager prints status lines and progress for the pipeline stages
type UIManager interface {
	NewProgressBar(total int, description string) ProgressBar
	// Verbose prints only with --verbose
	Verbose(format string, args ...interface{})
	// Printf prints unless --quiet
	Printf(format string, args ...interface{})
}

// ProgressBar tracks how many episodes or chunks a stage has handled
type ProgressBar interface {
	Set(current int)
	Describe(description string)
	Finish()
}

type terminalUI struct {
	out     io.Writer
	verbose bool
	quiet   bool
	bars    bool
}

// NewUIManager creates a UI manager; progress bars are only drawn when stderr is a terminal
func NewUIManager(verbose, quiet bool) UIManager {
	return &terminalUI{
		out:     os.Stdout,
		verbose: verbose,
		quiet:   quiet,
		bars:    !quiet && IsTerminal(os.Stderr),
	}
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (ui *terminalUI) NewProgressBar(total int, description string) ProgressBar {
	if !ui.bars || total <= 0 {
		return stageBar{}
	}
	return stageBar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))}
}

func (ui *terminalUI) Verbose(format string, args ...interface{}) {
	if ui.verbose && !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

func (ui *terminalUI) Printf(format string, args ...interface{}) {
	if !ui.quiet {
		fmt.Fprintf(ui.out, format, args...)
	}
}

// stageBar draws nothing when bar is nil
type stageBar struct {
	bar *progressbar.ProgressBar
}

func (b stageBar) Set(current int) {
	if b.bar != nil {
		_ = b.bar.Set(current)
	}
}

func (b stageBar) Describe(description string) {
	if b.bar != nil {
		b.bar.Describe(description)
	}
}

func (b stageBar) Finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
