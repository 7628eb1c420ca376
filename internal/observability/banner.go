package observability

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset    = "\033[0m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
)

var spinnerFrames = []string{"◜", "◝", "◞", "◟"}

// termMu serializes all terminal output so the cursor save/restore in
// PrintLiveStatus is never interleaved with a log write.
var termMu sync.Mutex

var spinnerIdx int

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// IsInteractive reports whether stdout is a terminal.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type termWriter struct{}

func (tw *termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns a stderr writer that never interleaves with the
// live status line.
func NewTermWriter() io.Writer {
	return &termWriter{}
}

const banner = `
    ____  __    ___    _   ___       _________    ____________
   / __ \/ /   /   |  / | / / |     / / ____/   |/ /  _/ ____/
  / /_/ / /   / /| | /  |/ /| | /| / / __/ / /| | / / // __/
 / ____/ /___/ ___ |/ /|  / | |/ |/ / /___/ ___ |/ / // /___
/_/   /_____/_/  |_/_/ |_/  |__/|__/_____/_/  |_|__/___/_____/

          >> plan . graph . execute <<
`

func PrintBanner() {
	fmt.Print("\033[2J\033[H")

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := max((width-len(l))/2, 0)
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}

// InitializeTerminal reserves lines 1-9 for the banner and line 10 for the
// status; logs scroll from line 12.
func InitializeTerminal() {
	fmt.Print("\033[12;r")
	fmt.Print("\033[12;1H")
}

func CleanupTerminal() {
	fmt.Print("\033[r\033[2J\033[H")
}

// StatusLine renders the status as one line without escape sequences.
func StatusLine(s StatusSnapshot, now time.Time) string {
	pulse := "OFFLINE"
	switch delta := now.Sub(s.LastHeartbeat); {
	case delta < 40*time.Second:
		pulse = "HEALTHY"
	case delta < 90*time.Second:
		pulse = "LAGGING"
	}

	detail := s.Detail
	if detail == "" {
		detail = "waiting..."
	}
	if len(detail) > 25 {
		detail = detail[:22] + "..."
	}

	return fmt.Sprintf("[%s] %-7s | %-9s runs=%d | %s",
		s.LastHeartbeat.Format("15:04:05"), pulse, s.Phase, s.ActiveRuns, detail)
}

func PrintLiveStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s := GetStatus()
	uptime := time.Since(startTime).Round(time.Second)
	memMB := float64(m.Alloc) / 1024 / 1024

	spinner := " "
	color := colorReset
	if s.ActiveRuns > 0 {
		spinner = spinnerFrames[spinnerIdx]
		spinnerIdx = (spinnerIdx + 1) % len(spinnerFrames)
		color = colorNeonMag
	}

	memPercent := memMB / (float64(m.Sys) / 1024 / 1024)
	barWidth := 20
	filled := min(max(int(memPercent*float64(barWidth)), 0), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("▒", barWidth-filled)

	line := fmt.Sprintf(
		"\033[s\033[10;1H\033[K%s%s%s %s%s%s [%v] [%s %.1fMB]\033[u",
		color, StatusLine(s, time.Now()), colorReset,
		colorPurple, spinner, colorReset,
		uptime, bar, memMB,
	)

	termMu.Lock()
	fmt.Print(line)
	termMu.Unlock()
}
