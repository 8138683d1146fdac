package cpu

// PortWrite describes a single byte written to an I/O port.
type PortWrite struct {
	Port  uint16
	Value uint8
}

// SegmentReload describes a call to ReloadSegments.
type SegmentReload struct {
	Code uint16
	Data uint16
}

// Recorder implements Privileged by logging every operation instead of
// executing it. It is used by the host simulator and by tests.
type Recorder struct {
	// PortWrites lists all port writes in the order they were issued.
	PortWrites []PortWrite

	// PortValues holds the values returned by PortReadByte. Ports without
	// an entry read as 0xff, which is what an unpopulated ISA port returns.
	PortValues map[uint16]uint8

	// GDTLoads lists the descriptor addresses passed to LoadGDT.
	GDTLoads []uintptr

	// SegmentReloads lists the selector pairs passed to ReloadSegments.
	SegmentReloads []SegmentReload

	// Halts counts the calls to Halt.
	Halts int

	// OnHalt, if set, is invoked after a halt is recorded.
	OnHalt func()
}

// PortWriteByte records a port write.
func (r *Recorder) PortWriteByte(port uint16, val uint8) {
	r.PortWrites = append(r.PortWrites, PortWrite{Port: port, Value: val})
}

// PortReadByte returns the configured value for port.
func (r *Recorder) PortReadByte(port uint16) uint8 {
	if val, ok := r.PortValues[port]; ok {
		return val
	}
	return 0xff
}

// LoadGDT records a descriptor table load.
func (r *Recorder) LoadGDT(descriptorAddr uintptr) {
	r.GDTLoads = append(r.GDTLoads, descriptorAddr)
}

// ReloadSegments records a segment register reload.
func (r *Recorder) ReloadSegments(codeSelector, dataSelector uint16) {
	r.SegmentReloads = append(r.SegmentReloads, SegmentReload{Code: codeSelector, Data: dataSelector})
}

// Halt records a halt request.
func (r *Recorder) Halt() {
	r.Halts++
	if r.OnHalt != nil {
		r.OnHalt()
	}
}

// Halted returns true if Halt has been called at least once.
func (r *Recorder) Halted() bool {
	return r.Halts != 0
}
