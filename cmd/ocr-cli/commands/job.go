package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

// JobAction returns the action running one job of kind.
func JobAction(kind model.JobKind) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := jobOptions(kind, cmd)
		if err != nil {
			return err
		}

		appCtx, err := NewAppContext(cmd.String("env"))
		if err != nil {
			return err
		}

		unsubscribe := appCtx.Processor.Notifier().Subscribe(NewConsoleReporter(os.Stdout))
		defer unsubscribe()

		artifacts, err := appCtx.Processor.RunJob(ctx, opts, cmd.Name)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "done: %d file(s) written to %s\n", len(artifacts), opts.TargetDir)
		return nil
	}
}

// jobOptions collects the raw flag values. Normalization happens in the
// processor so the CLI and the web front-end share the same rules.
func jobOptions(kind model.JobKind, cmd *cli.Command) (model.JobOptions, error) {
	target := cmd.String("target")
	if target == "" {
		wd, err := os.Getwd()
		if err != nil {
			return model.JobOptions{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		target = wd
	}

	opts := model.JobOptions{
		Kind:          string(kind),
		Sources:       cmd.StringSlice("source"),
		TargetDir:     target,
		Language:      cmd.String("language"),
		ExportFormats: cmd.StringSlice("exportFormat"),
		Profile:       cmd.String("profile"),
		XMLSettings:   cmd.String("xml-settings"),
	}

	if s := cmd.String("region"); s != "" {
		region, err := model.ParseFieldRegion(s)
		if err != nil {
			return model.JobOptions{}, err
		}
		opts.Region = region
	}

	return opts, nil
}
