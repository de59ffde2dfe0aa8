package layout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"gridcss/state"
)

// Run is the action of build command.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no layout file has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	env.Overwrite = cmd.Bool("overwrite")

	if err := env.Rpt.StoreCopy("input/"+filepath.Base(src), src); err != nil {
		log.Warn("Unable to store layout in the report", zap.Error(err))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, env, src, dst, log)
}

// process does the work independently of CLI framework.
func process(ctx context.Context, env *state.LocalEnv, src, dst string, log *zap.Logger) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read layout: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return fmt.Errorf("unable to parse layout '%s': %w", src, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b := NewBuilder(env.Resolver,
		WithLogger(log),
		WithColumns(env.Cfg.Layout.Columns),
		WithSerializeSelector(env.Cfg.Layout.SerializeSelector),
	)
	sheet, diags, err := b.Build(l)
	if err != nil {
		return fmt.Errorf("unable to build stylesheet: %w", err)
	}
	if n := len(diags.Warnings()); n > 0 {
		log.Warn("Stylesheet generated with warnings", zap.Int("count", n))
	}

	out := sheet.String()
	env.Rpt.StoreData("output/"+outputName(src), []byte(out))

	var w io.Writer = os.Stdout
	if len(dst) > 0 {
		if !env.Overwrite {
			if _, err := os.Stat(dst); err == nil {
				return fmt.Errorf("output file already exists: %s", dst)
			}
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return fmt.Errorf("unable to create destination directory: %w", err)
		}
		f, err := os.Create(dst)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
		}
		defer f.Close()
		w = f
	}
	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return nil
}

func outputName(src string) string {
	base := filepath.Base(src)
	return base[:len(base)-len(filepath.Ext(base))] + ".css"
}
