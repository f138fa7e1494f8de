package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/ocrsdk/cloud-runner/cmd/ocr-cli/commands"
	"github.com/ocrsdk/cloud-runner/internal/model"
)

func jobCommand(kind model.JobKind, usage string) *cli.Command {
	return &cli.Command{
		Name:   string(kind),
		Usage:  usage,
		Flags:  commands.JobFlags(),
		Action: commands.JobAction(kind),
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.SetFlags(log.LstdFlags)

	app := &cli.Command{
		Name:  "ocr-cli",
		Usage: "Run recognition jobs against the OCR cloud service",
		Commands: []*cli.Command{
			jobCommand(model.JobKindImage, "recognize a single image"),
			jobCommand(model.JobKindDocument, "recognize a multi-page document"),
			jobCommand(model.JobKindFields, "recognize fields described by an XML settings file"),
			jobCommand(model.JobKindTextField, "recognize a text field"),
			jobCommand(model.JobKindBarcodeField, "read a barcode"),
			jobCommand(model.JobKindCheckmarkField, "read a checkmark"),
			jobCommand(model.JobKindMRZ, "read a machine readable zone"),
			jobCommand(model.JobKindBusinessCard, "recognize a business card"),
			{
				Name:   "list",
				Usage:  "list tasks known to the service",
				Flags:  commands.ListFlags(),
				Action: commands.ListAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
