// Package machines models per-machine system information: CPU family,
// kernel and endianness, plus the BUILD/HOST/TARGET fallback container
// lowering passes and toolchain lookups key off.
//
// Grounded on MIR::Machines::Info / PerMachine (mir/meson/machines.hpp
// upstream).
package machines

import (
	"runtime"
)

// Endian is the machine's byte order.
type Endian int

const (
	Little Endian = iota
	Big
)

func (e Endian) String() string {
	if e == Big {
		return "big"
	}
	return "little"
}

// Info describes one machine.
type Info struct {
	System     string // e.g. "linux"
	CPUFamily  string
	CPU        string
	Endian     Endian
}

// DetectBuild returns Info for the machine the compiler itself runs on,
// derived from the Go runtime's GOOS/GOARCH — the host==build
// degenerate case spec.md scopes this compiler to.
func DetectBuild() Info {
	family := runtime.GOARCH
	switch runtime.GOARCH {
	case "amd64":
		family = "x86_64"
	case "386":
		family = "x86"
	case "arm64":
		family = "aarch64"
	}
	return Info{
		System:    runtime.GOOS,
		CPUFamily: family,
		CPU:       family,
		Endian:    Little,
	}
}

// PerMachine holds a value for each of BUILD/HOST/TARGET, with the
// fallback lookup rule from spec §3: HOST falls back to BUILD, TARGET
// falls back to HOST then BUILD.
type PerMachine[T any] struct {
	build        T
	host         *T
	target       *T
}

// NewPerMachine seeds the container with the BUILD value; HOST and
// TARGET are unset and fall back to it.
func NewPerMachine[T any](build T) *PerMachine[T] {
	return &PerMachine[T]{build: build}
}

func (p *PerMachine[T]) Build() T { return p.build }

func (p *PerMachine[T]) Host() T {
	if p.host != nil {
		return *p.host
	}
	return p.build
}

func (p *PerMachine[T]) Target() T {
	if p.target != nil {
		return *p.target
	}
	return p.Host()
}

func (p *PerMachine[T]) Get(m Machine) T {
	switch m {
	case MachineBuild:
		return p.Build()
	case MachineHost:
		return p.Host()
	case MachineTarget:
		return p.Target()
	default:
		return p.Build()
	}
}

func (p *PerMachine[T]) Set(m Machine, v T) {
	switch m {
	case MachineBuild:
		p.build = v
	case MachineHost:
		p.host = &v
	case MachineTarget:
		p.target = &v
	}
}
