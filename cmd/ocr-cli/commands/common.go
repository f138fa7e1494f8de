package commands

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/config"
	"github.com/ocrsdk/cloud-runner/internal/service"
)

// AppContext holds what every command needs to talk to the service.
type AppContext struct {
	Config    *config.Config
	Processor *service.Processor
}

// NewAppContext loads configuration and wires a processor.
func NewAppContext(envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.OCR.IsConfigured() {
		return nil, fmt.Errorf("OCR_APPLICATION_ID and OCR_PASSWORD must be set")
	}

	ocrClient := client.NewOCRClient(&cfg.OCR)
	processor := service.NewProcessor(ocrClient, ocrClient, service.NewNotifier(), validator.New(), nil)

	return &AppContext{Config: cfg, Processor: processor}, nil
}

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "path to an env file",
		Value: ".env",
	}
}

// JobFlags are shared by every recognition subcommand.
func JobFlags() []cli.Flag {
	return []cli.Flag{
		envFlag(),
		&cli.StringSliceFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "source file or directory (repeatable)",
			Required: true,
		},
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "directory results are written to (default: current directory)",
		},
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "recognition languages, comma separated",
			Value:   "english",
		},
		&cli.StringSliceFlag{
			Name:    "exportFormat",
			Aliases: []string{"ef"},
			Usage:   "export format (repeatable)",
		},
		&cli.StringFlag{
			Name:    "profile",
			Aliases: []string{"p"},
			Usage:   "documentConversion, documentArchiving or textExtraction",
		},
		&cli.StringFlag{
			Name:    "xml-settings",
			Aliases: []string{"xs"},
			Usage:   "field settings XML for the fields command",
		},
		&cli.StringFlag{
			Name:  "region",
			Usage: "field region as left,top,right,bottom",
		},
	}
}

// ListFlags are the flags of the list command.
func ListFlags() []cli.Flag {
	return []cli.Flag{envFlag()}
}
