package scene

// Modifier is a single-character prefix that changes how the CAD engine
// treats a node.
type Modifier string

const (
	NoModifier    Modifier = ""
	ModDisable    Modifier = "*"
	ModDebug      Modifier = "#"
	ModBackground Modifier = "%"
	ModRoot       Modifier = "!"
)

// ParseModifier accepts the full word ("disable", "debug", "background",
// "root") or its single-character form. Anything else yields NoModifier.
func ParseModifier(s string) Modifier {
	switch s {
	case "disable", "*":
		return ModDisable
	case "debug", "#":
		return ModDebug
	case "background", "%":
		return ModBackground
	case "root", "!":
		return ModRoot
	default:
		return NoModifier
	}
}

// Word returns the full name of the modifier, or "" for NoModifier.
func (m Modifier) Word() string {
	switch m {
	case ModDisable:
		return "disable"
	case ModDebug:
		return "debug"
	case ModBackground:
		return "background"
	case ModRoot:
		return "root"
	default:
		return ""
	}
}

// Disable sets the disable modifier on n and returns n.
func Disable(n *Node) *Node { return n.SetModifier("disable") }

// Debug sets the debug modifier on n and returns n.
func Debug(n *Node) *Node { return n.SetModifier("debug") }

// Background sets the background modifier on n and returns n.
func Background(n *Node) *Node { return n.SetModifier("background") }

// Root sets the root modifier on n and returns n.
func Root(n *Node) *Node { return n.SetModifier("root") }
