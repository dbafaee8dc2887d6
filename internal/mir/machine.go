package mir

import "github.com/mesonpp/mpp/internal/mir/machines"

// Machine identifies one of the three machines Meson distinguishes:
// the machine running the compiler (Build), the machine the compiler
// runs on (Host, degenerate case: == Build), and the machine the
// program being built will itself target (Target, rarely used outside
// compiler toolchains).
//
// Defined in internal/mir/machines to avoid an import cycle with
// State's Machines field; aliased here so existing mir.Machine call
// sites are unaffected.
type Machine = machines.Machine

const (
	MachineBuild  = machines.MachineBuild
	MachineHost   = machines.MachineHost
	MachineTarget = machines.MachineTarget
)
