package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gridcss/breakpoint"
	"gridcss/config"
	"gridcss/responsive"
	"gridcss/state"
)

func resolveReferences(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no breakpoint references have been specified")
	}

	var (
		err   error
		out   = cmd.Root().Writer
		query = cmd.Bool("query")
	)
	for _, arg := range cmd.Args().Slice() {
		ref, er := breakpoint.ParseReference(arg)
		if er != nil {
			err = multierr.Append(err, er)
			continue
		}

		var (
			text  string
			diags breakpoint.Diagnostics
		)
		if query {
			text, diags = env.Resolver.Media(ref)
		} else {
			var cond breakpoint.Condition
			cond, diags = env.Resolver.Resolve(ref)
			text = cond.String()
		}
		if er := diags.Err(); er != nil {
			err = multierr.Append(err, er)
			continue
		}
		env.Log.Debug("Reference resolved", zap.Stringer("reference", ref), zap.String("result", text))
		fmt.Fprintln(out, text)
	}
	return err
}

func lookupValue(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("no values have been specified")
	}

	var v responsive.Value[string]
	if args := cmd.Args().Slice(); len(args) == 1 && !strings.Contains(args[0], "=") {
		v = responsive.Scalar(args[0])
	} else {
		for _, arg := range args {
			name, val, ok := strings.Cut(arg, "=")
			if !ok || len(name) == 0 {
				return fmt.Errorf("malformed value '%s', expected NAME=VALUE", arg)
			}
			if !env.Resolver.Standard().Has(name) {
				env.Log.Warn("Value for unknown breakpoint will be ignored", zap.String("breakpoint", name))
			}
			v = v.Set(name, val)
		}
	}

	at := cmd.String("at")
	val, err := v.Require(env.Resolver.Standard(), at)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, val)
	return nil
}

func exportBreakpoints(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 0 {
		env.Log.Warn("Malformed command line, arguments are not expected", zap.Strings("ignoring", cmd.Args().Slice()))
	}

	out := cmd.Root().Writer
	fmt.Fprintln(out, env.Resolver.Standard().Serialize())
	if cmd.Bool("hidpi") && env.Resolver.HiDPI().Len() > 0 {
		fmt.Fprintln(out, env.Resolver.HiDPI().Serialize())
	}
	return nil
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputing configuration", zap.String("state", state), zap.String("file", fname))

	_, err = out.Write(data)
	if err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
