// Package sim runs the kernel boot sequence against a simulated machine
// described by a YAML profile.
package sim

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"titanium/kernel/hal/multiboot"
)

// Profile describes the simulated machine and the handoff passed by the
// boot loader.
type Profile struct {
	Name string `yaml:"name"`

	// Magic is the value passed in EAX. Defaults to the multiboot magic.
	Magic *Hex `yaml:"magic"`

	// InfoAddr is the physical address of the information block.
	InfoAddr Hex `yaml:"info_addr"`

	// Flags lists the information block fields the loader provides.
	// Defaults to the fields a valid handoff must contain.
	Flags *FlagSet `yaml:"flags"`

	Memory     MemorySize `yaml:"memory"`
	BootDevice Hex        `yaml:"boot_device"`
	CmdLine    string     `yaml:"cmdline"`
	MemoryMap  []Region   `yaml:"mmap"`

	// Diagnostics enables the optional handoff checks.
	Diagnostics bool `yaml:"diagnostics"`

	// Palette overrides entries of the 16 colour VGA palette.
	Palette map[uint8]RGB `yaml:"palette"`
}

// MemorySize holds the memory reported by the loader in kB.
type MemorySize struct {
	Lower uint32 `yaml:"lower"`
	Upper uint32 `yaml:"upper"`
}

// Region is a memory map entry.
type Region struct {
	Base   Hex    `yaml:"base"`
	Length Hex    `yaml:"length"`
	Type   string `yaml:"type"`
}

const (
	defaultInfoAddr = 0x9000
)

// DefaultProfile returns the profile of a machine with 128M of memory booted
// by a compliant loader.
func DefaultProfile() *Profile {
	p := &Profile{
		Name:       "default",
		Memory:     MemorySize{Lower: 639, Upper: 130048},
		BootDevice: 0x80ffffff,
		CmdLine:    "/boot/titanium root=/dev/hda1",
		MemoryMap: []Region{
			{Base: 0, Length: 0x9fc00, Type: "available"},
			{Base: 0x9fc00, Length: 0x400, Type: "reserved"},
			{Base: 0xf0000, Length: 0x10000, Type: "reserved"},
			{Base: 0x100000, Length: 0x7f00000, Type: "available"},
		},
	}
	p.applyDefaults()
	return p
}

// LoadProfile reads a profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile and applies defaults for omitted
// fields.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	for _, r := range p.MemoryMap {
		if _, err := regionType(r.Type); err != nil {
			return nil, err
		}
	}

	p.applyDefaults()
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.Magic == nil {
		magic := Hex(multiboot.BootloaderMagic)
		p.Magic = &magic
	}
	if p.InfoAddr == 0 {
		p.InfoAddr = defaultInfoAddr
	}
	if p.Flags == nil {
		flags := FlagSet(multiboot.FlagMemory | multiboot.FlagBootDevice | multiboot.FlagCmdLine | multiboot.FlagMemoryMap)
		p.Flags = &flags
	}
}

// Hex is an integer that can be written in YAML as a decimal, hex (0x) or
// octal (0o) literal.
type Hex uint64

// UnmarshalYAML implements yaml.Unmarshaler for Hex.
func (h *Hex) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", value.Line)
	}

	parsed, err := strconv.ParseUint(strings.ReplaceAll(value.Value, "_", ""), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q: %w", value.Line, value.Value, err)
	}
	*h = Hex(parsed)
	return nil
}

var flagNames = map[string]multiboot.Flag{
	"memory":       multiboot.FlagMemory,
	"boot_device":  multiboot.FlagBootDevice,
	"cmdline":      multiboot.FlagCmdLine,
	"modules":      multiboot.FlagModules,
	"aout_symbols": multiboot.FlagAoutSymbols,
	"elf_sections": multiboot.FlagElfSections,
	"mmap":         multiboot.FlagMemoryMap,
}

// FlagSet is the information block flag word. In YAML it is either a list
// of field names or a raw number.
type FlagSet multiboot.Flag

// UnmarshalYAML implements yaml.Unmarshaler for FlagSet.
func (f *FlagSet) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var raw Hex
		if err := raw.UnmarshalYAML(value); err != nil {
			return err
		}
		*f = FlagSet(raw)
		return nil
	}

	var names []string
	if err := value.Decode(&names); err != nil {
		return err
	}

	var flags multiboot.Flag
	for _, name := range names {
		flag, ok := flagNames[name]
		if !ok {
			return fmt.Errorf("line %d: unknown flag %q", value.Line, name)
		}
		flags |= flag
	}
	*f = FlagSet(flags)
	return nil
}

// RGB is a colour written in YAML as "#rrggbb".
type RGB color.RGBA

// UnmarshalYAML implements yaml.Unmarshaler for RGB.
func (c *RGB) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return fmt.Errorf("line %d: invalid colour %q", value.Line, value.Value)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid colour %q: %w", value.Line, value.Value, err)
	}

	*c = RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
	return nil
}

func regionType(name string) (multiboot.MemoryEntryType, error) {
	switch name {
	case "available", "":
		return multiboot.MemAvailable, nil
	case "reserved":
		return multiboot.MemReserved, nil
	case "acpi":
		return multiboot.MemAcpiReclaimable, nil
	case "nvs":
		return multiboot.MemNvs, nil
	default:
		return 0, fmt.Errorf("unknown memory region type %q", name)
	}
}
