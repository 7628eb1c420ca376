package observability

import (
	"sync"
	"time"
)

type SystemStatus struct {
	mu            sync.RWMutex
	ActiveRuns    int
	Phase         string
	Detail        string
	LastHeartbeat time.Time
}

// StatusSnapshot is a copy of the system status.
type StatusSnapshot struct {
	ActiveRuns    int
	Phase         string
	Detail        string
	LastHeartbeat time.Time
}

const PhaseIdle = "IDLE"

var globalStatus = &SystemStatus{
	Phase:         PhaseIdle,
	LastHeartbeat: time.Now(),
}

// RunStarted counts a run as active.
func RunStarted() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.ActiveRuns++
}

// RunFinished counts a run as done. With no run left the status turns idle.
func RunFinished() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	if globalStatus.ActiveRuns > 0 {
		globalStatus.ActiveRuns--
	}
	if globalStatus.ActiveRuns == 0 {
		globalStatus.Phase = PhaseIdle
		globalStatus.Detail = ""
	}
}

// SetStatus records the phase and detail (usually a step id) of the most
// recent run activity.
func SetStatus(phase, detail string) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.Phase = phase
	globalStatus.Detail = detail
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() StatusSnapshot {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return StatusSnapshot{
		ActiveRuns:    globalStatus.ActiveRuns,
		Phase:         globalStatus.Phase,
		Detail:        globalStatus.Detail,
		LastHeartbeat: globalStatus.LastHeartbeat,
	}
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
