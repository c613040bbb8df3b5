package run

import (
	"fmt"
	"io"
	"os"

	"github.com/fernwick/stagehand/internal/config"
	"github.com/fernwick/stagehand/internal/stage"
	"github.com/fernwick/stagehand/pipeline"
	"github.com/spf13/cobra"
)

var (
	pipelinePath string
	rootDir      string
	quiet        bool
)

// Cmd represents the `stagehand run` command.
var Cmd = &cobra.Command{
	Use:           "run",
	Short:         "Run a pipeline defined in a YAML file",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipelinePath == "" {
			return fmt.Errorf("missing required flag: --pipeline")
		}
		env, err := executePipeline(pipelinePath, rootDir)
		if err != nil {
			return err
		}
		if quiet {
			return nil
		}
		// Success output is a single JSON line.
		return renderEnvelope(env, os.Stdout)
	},
}

func init() {
	Cmd.Flags().StringVarP(&pipelinePath, "pipeline", "p", "", "Path to pipeline file (.yaml)")
	Cmd.Flags().StringVar(&rootDir, "root", "", "Working root for locator resolution")
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the final envelope")
}

// executePipeline validates, parses and runs the pipeline file against
// a fresh envelope, with every built-in stage registered.
func executePipeline(path, root string) (*stage.Envelope, error) {
	if err := config.ValidatePipelineFile(path); err != nil {
		return nil, err
	}
	m, err := pipeline.Load[stage.Envelope](path)
	if err != nil {
		return nil, err
	}
	stage.Builtins(m)
	env := stage.Envelope{Records: []stage.Record{}}
	if root != "" {
		env.SetRoot(root)
	}
	if err := m.Run(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

// renderEnvelope writes the envelope as one compact JSON line.
func renderEnvelope(env *stage.Envelope, w io.Writer) error {
	s, err := encodeJSON(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, s)
	return err
}
