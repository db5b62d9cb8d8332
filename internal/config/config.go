package config

type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeCatch
)

func (kind ScopeKind) String() string {
	switch kind {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeCatch:
		return "catch"
	default:
		panic("Internal error")
	}
}

// A Policy decides which declared names must keep their original spelling.
// The printer asks it about every name before assigning a minified name, and
// every name it refuses is passed through unchanged and claimed so that no
// other symbol can be renamed to it.
type Policy interface {
	// The target path is the dotted chain of the named functions enclosing the
	// declaration, or "" for a declaration in the global scope
	IsNameRenameable(kind ScopeKind, targetPath string, memberName string) bool

	// Names that must never be generated as a minified name
	ClaimedNames() []string
}

// The zero value renames every name it can
type RenameAll struct{}

func (RenameAll) IsNameRenameable(ScopeKind, string, string) bool { return true }
func (RenameAll) ClaimedNames() []string                          { return nil }

type Options struct {
	// Indent the output and put each statement on its own line
	Formatted bool

	// Annotate every declaration with its rank and the reason it was or
	// wasn't renamed. This is only meant for debugging the renamer.
	SymbolDebug bool

	// Print every identifier with its original name
	NoObfuscate bool

	// Wrap minified output after a line reaches this many bytes. This is
	// cosmetic and zero means there is no limit.
	LineLimit int

	Warnings bool

	// Replace reads of local variables that are bound exactly once to a
	// numeric or boolean literal with the literal itself
	InlineConstants bool

	// Keep "/*!" comments at the top of the output
	PreserveImportantComments bool

	// A nil policy renames everything
	Policy Policy
}

func (options *Options) PolicyOrDefault() Policy {
	if options.Policy != nil {
		return options.Policy
	}
	return RenameAll{}
}
