package stage

import (
	"github.com/fernwick/stagehand/pipeline"
)

// Builtins registers every built-in stage into m and returns m.
func Builtins(m *pipeline.Manager[Envelope]) *pipeline.Manager[Envelope] {
	pipeline.Register[Echo](m)
	pipeline.Register[Discover](m)
	pipeline.Register[ReadMeta](m)
	pipeline.Register[LuaMap](m)
	pipeline.Register[LuaFilter](m)
	pipeline.Register[EnrichGit](m)
	pipeline.Register[WriteOutput](m)
	pipeline.Register[Group](m)
	return m
}
