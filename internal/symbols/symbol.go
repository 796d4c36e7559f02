package symbols

// SymbolKind classifies a top-level binding of a module.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolImport
	SymbolVar
	SymbolLet
	SymbolConst
	SymbolFunction
	SymbolClass
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolImport:
		return "import"
	case SymbolVar:
		return "var"
	case SymbolLet:
		return "let"
	case SymbolConst:
		return "const"
	case SymbolFunction:
		return "function"
	case SymbolClass:
		return "class"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint8

const (
	SymbolFlagExported SymbolFlags = 1 << iota
	// SymbolFlagNamespace marks `import * as ns` bindings.
	SymbolFlagNamespace
	// SymbolFlagDownleveled marks let/const/class bindings rewritten to var.
	SymbolFlagDownleveled
)

// Symbol is one top-level binding.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Flags SymbolFlags
	Scope ScopeID
	// для импортов: исходный спецификатор и импортируемое имя ("default", "*", ...)
	Specifier string
	Imported  string
}

// Export is one name a module exposes. Local is the module-scope binding
// backing it; for re-exports Specifier is set and Local names the binding in
// the other module ("*" for `export * as ns from`).
type Export struct {
	Name      string
	Local     string
	Specifier string
}

// IsReexport reports whether the value comes from another module.
func (e Export) IsReexport() bool { return e.Specifier != "" }
