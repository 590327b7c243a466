package builtin

import (
	"context"
	"errors"
	"fmt"

	"github.com/cchalm/devtasks/internal/taskfile"
)

// FormatTaskfile rewrites the active task file in canonical form
type FormatTaskfile struct{}

func (FormatTaskfile) Description() string {
	return "rewrite the task file in canonical form"
}

func (FormatTaskfile) Run(ctx context.Context, bctx *Context) error {
	tf := bctx.Taskfile
	if tf.IsEmbedded() {
		bctx.Logger.Debug().Msg("No task file on disk, nothing to format")
		return nil
	}

	if bctx.DryRun {
		fmt.Fprintf(bctx.Stdout, "# would format %s\n", tf.Path)
		return nil
	}

	changed, err := taskfile.FormatFile(tf)
	if errors.Is(err, taskfile.ErrTOMLComments) {
		bctx.Logger.Warn().Str("path", tf.Path).Msg("Not formatting task file, it has comments that TOML re-encoding would drop")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", tf.Path, err)
	}
	if changed {
		bctx.Logger.Info().Str("path", tf.Path).Msg("Formatted task file")
	} else {
		bctx.Logger.Debug().Str("path", tf.Path).Msg("Task file already formatted")
	}
	return nil
}
