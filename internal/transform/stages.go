package transform

import (
	"mako/internal/compile"
)

// Stage is one named rewrite applied to a Tree.
type Stage struct {
	Name string
	Run  func(t *Tree, cc *compile.Context) error
}

func runStages(t *Tree, cc *compile.Context, stages []Stage) error {
	for _, st := range stages {
		if err := st.Run(t, cc); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeStages returns the stages Normalize runs after parsing, in order.
func NormalizeStages() []Stage {
	return []Stage{
		{Name: "shebang", Run: stripShebang},
		{Name: "legal-comments", Run: liftLegalComments},
		{Name: "bindings", Run: recordBindings},
		{Name: "exports", Run: recordExports},
		{Name: "lexical-downlevel", Run: downlevelLexical},
	}
}

// RuntimeStages returns the stages ToRuntimeForm runs, in order.
func RuntimeStages() []Stage {
	return []Stage{
		{Name: "interop", Run: interop},
		{Name: "inject-helpers", Run: injectHelpers},
	}
}
