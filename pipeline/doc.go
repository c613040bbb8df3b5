// Package pipeline runs an ordered list of named stages over a shared
// mutable context. The stage list comes from a YAML document; each entry
// names a stage and carries its arguments, and the concrete stage type is
// resolved at run time through a registry of factories installed by the
// embedding application.
//
// A stage is any type whose pointer implements Stage[C] for the chosen
// context type C. Arguments are decoded into the stage value with the
// yaml field tags the type declares, so each stage defines its own schema.
// A Manager is itself a Stage, which lets a stage embed a nested Manager
// and receive a full sub-pipeline as its arguments.
//
//	m, err := pipeline.ParseString[Calc](doc)
//	if err != nil { ... }
//	pipeline.Register[Add](m)
//	pipeline.Register[Mul](m)
//	var c Calc
//	if err := m.Run(&c); err != nil { ... }
package pipeline
