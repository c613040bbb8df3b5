package stage

import (
	"github.com/fernwick/stagehand/pipeline"
)

// Group runs a nested stage list against the same envelope. Its Setup
// registers the built-ins into the nested registry, so nested stage
// lists resolve the same names as the top level.
type Group struct {
	Stages pipeline.Manager[Envelope] `yaml:"stages"`
}

func (*Group) StageName() string { return "group" }

func (g *Group) Setup() error {
	Builtins(&g.Stages)
	return nil
}

func (g *Group) Run(env *Envelope) error {
	return g.Stages.Run(env)
}
