// Package resource defines the lifecycle contract shared by kernel
// subsystems and the manager that starts them and reports the outcome.
package resource

import (
	"io"

	"titanium/device/video"
	"titanium/kernel"
	"titanium/kernel/cpu"
	"titanium/kernel/kfmt"
)

// maxOutcomes bounds the registration history kept by the Manager.
const maxOutcomes = 32

// Resource is implemented by every subsystem managed during boot.
type Resource interface {
	// Name returns a human readable label for the resource.
	Name() string

	// Start brings the resource up and reports the outcome.
	Start() kernel.Status
}

// Console is the output used for reporting registrations.
type Console interface {
	io.Writer

	// WriteColor writes p using the supplied attribute.
	WriteColor(p []byte, attr video.Attr) (int, error)
}

// Outcome records the result of a single registration.
type Outcome struct {
	Name   string
	Status kernel.Status
}

// Report labels and colors for each status class.
var (
	labelOK      = []byte("OK\n")
	labelFailed  = []byte("FAILED\n")
	labelPanic   = []byte("PANIC\n")
	labelWarning = []byte("WARNING\n")
	labelUnknown = []byte("UNKNOWN\n")

	attrGreen  = video.MakeAttr(video.Black, video.Green, false)
	attrRed    = video.MakeAttr(video.Black, video.Red, false)
	attrYellow = video.MakeAttr(video.Black, video.Yellow, false)
)

// Manager starts resources and reports their outcome on the console. A
// resource whose Start returns StatusPanic halts the CPU.
type Manager struct {
	cons Console
	cpu  cpu.Privileged

	outcomes     [maxOutcomes]Outcome
	outcomeCount int
}

// NewManager creates a Manager that reports to cons and halts through cpu.
func NewManager(cons Console, cpu cpu.Privileged) *Manager {
	m := &Manager{cons: cons, cpu: cpu}
	kfmt.Fprintf(cons, "Initialised resource manager\n")
	return m
}

// Register starts r, prints the classified outcome and returns the status
// reported by r. The resource itself is not retained; only its name and
// status are added to the outcome history.
func (m *Manager) Register(r Resource) kernel.Status {
	name := r.Name()
	kfmt.Fprintf(m.cons, "Registering resource: %s...", name)

	status := r.Start()
	m.record(name, status)

	switch status {
	case kernel.StatusSuccess:
		m.cons.WriteColor(labelOK, attrGreen)
	case kernel.StatusFailure:
		m.cons.WriteColor(labelFailed, attrRed)
	case kernel.StatusPanic:
		m.cons.WriteColor(labelPanic, attrRed)
		m.cpu.Halt()
	case kernel.StatusWarning:
		m.cons.WriteColor(labelWarning, attrYellow)
	default:
		m.cons.WriteColor(labelUnknown, attrYellow)
	}

	return status
}

func (m *Manager) record(name string, status kernel.Status) {
	if m.outcomeCount < maxOutcomes {
		m.outcomes[m.outcomeCount] = Outcome{Name: name, Status: status}
	}
	m.outcomeCount++
}

// Outcomes returns the recorded registrations in order. Registrations past
// the history capacity are counted but not listed.
func (m *Manager) Outcomes() []Outcome {
	n := m.outcomeCount
	if n > maxOutcomes {
		n = maxOutcomes
	}
	return m.outcomes[:n]
}

// Registered returns the total number of Register calls.
func (m *Manager) Registered() int {
	return m.outcomeCount
}
