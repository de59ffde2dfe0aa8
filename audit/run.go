package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"gridcss/archive"
	"gridcss/css"
	"gridcss/state"
)

// Run is the action of inspect command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("inspect")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no stylesheet has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	if strings.EqualFold(filepath.Ext(src), ".zip") {
		// debug report, inspect every generated stylesheet it carries
		return archive.Stylesheets(src, func(name string, data []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "== %s\n", name)
			return inspect(env, data, name, cmd.Root().Writer, log)
		})
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read stylesheet: %w", err)
	}
	env.Rpt.Store("input/"+filepath.Base(src), src)

	return inspect(env, data, src, cmd.Root().Writer, log)
}

func inspect(env *state.LocalEnv, data []byte, source string, out io.Writer, log *zap.Logger) error {
	sheet := css.NewParser(log).Parse(data, source)
	rpt := NewInspector(env.Resolver, env.Cfg.Layout.SerializeSelector, log).Inspect(sheet)
	if len(rpt.Mismatches) > 0 {
		log.Warn("Compiled stylesheet does not match configured breakpoints", zap.String("source", source), zap.Strings("differences", rpt.Mismatches))
	}

	if _, err := rpt.WriteTo(out); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}
