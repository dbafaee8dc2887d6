package machines

// Machine identifies one of the three machines Meson distinguishes:
// the machine running the compiler (Build), the machine the compiler
// runs on (Host, degenerate case: == Build), and the machine the
// program being built will itself target (Target, rarely used outside
// compiler toolchains).
type Machine int

const (
	MachineBuild Machine = iota
	MachineHost
	MachineTarget
)

func (m Machine) String() string {
	switch m {
	case MachineBuild:
		return "build"
	case MachineHost:
		return "host"
	case MachineTarget:
		return "target"
	default:
		return "unknown"
	}
}
