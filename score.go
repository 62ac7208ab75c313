package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"loan-qualifier/domain"
	"loan-qualifier/service"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var formatFlag = &cli.StringFlag{
	Name:  "format",
	Usage: "Output format [json, yaml]",
	Value: formatJSON,
}

func (a *app) scoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Qualify one application read from a JSON file or stdin",
		ArgsUsage: "[application.json]",
		Flags:     []cli.Flag{formatFlag},
		Action:    a.score,
	}
}

func (a *app) score(_ context.Context, cmd *cli.Command) error {
	format := cmd.String(formatFlag.Name)
	if format == "yml" {
		format = formatYAML
	}
	if format != formatJSON && format != formatYAML {
		return fmt.Errorf("unsupported output format %q", format)
	}

	body, err := readInput(cmd)
	if err != nil {
		return err
	}

	var raw domain.RawApplication
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return fmt.Errorf("decoding application: %w", err)
		}
	}

	bundle, err := a.loadBundle()
	if err != nil {
		return err
	}

	stage1, stage2 := stages(bundle)
	svc := service.NewQualificationService(stage1, stage2, nil, nil,
		service.WithLogger(a.logger),
		service.WithNormalizeOptions(service.NormalizeOptions{
			ImputeMissing: a.cfg.Validation.ImputeMissing,
		}),
	)

	result, err := svc.Qualify(raw)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return printResult(out, format, result)
}

func readInput(cmd *cli.Command) ([]byte, error) {
	if path := cmd.Args().First(); path != "" && path != "-" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading application: %w", err)
		}
		return b, nil
	}

	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	b, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return b, nil
}

func printResult(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
