package stage

// Echo marks the envelope as having passed through, setting meta.stage.
// It is the smallest built-in and mostly useful in smoke tests.
type Echo struct{}

func (*Echo) StageName() string { return "echo" }

func (*Echo) Run(env *Envelope) error {
	if env.Meta == nil {
		env.Meta = &Meta{}
	}
	env.Meta.Stage = "echo"
	return nil
}
