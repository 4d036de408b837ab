// cmd/vizctl/render.go
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		inputPath string
		formats   []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Validate, transform and export a chart read from a JSON file",
		Long: `render reads {"chartType": "...", "data": {...}} (the /api/process-data
request body) from --input, or stdin when --input is "-", and writes one file
per --format into --out-dir.`,
		Example: `  vizctl render --input sales.json --format png --format csv
  cat pie.json | vizctl render --input - --format pdf -o out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := readProcessRequest(inputPath)
			if err != nil {
				return err
			}
			input, err := models.DecodeChartInput(req.ChartType, req.Data)
			if err != nil {
				return fmt.Errorf("invalid chart data: %w", err)
			}

			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.pipeline.Submit(cmd.Context(), req.ChartType, input); err != nil {
				return err
			}

			for _, f := range formats {
				result, err := s.export(cmd, models.ParseExportFormat(f))
				if err != nil {
					return err
				}
				fmt.Printf("📄 %s (%d bytes)\n", filepath.Join(outDir, result.Filename), result.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Chart input JSON file, - for stdin")
	cmd.Flags().StringSliceVarP(&formats, "format", "f", []string{"png"}, "Export formats: png, svg, pdf, json, csv, xlsx")
	return cmd
}

func readProcessRequest(path string) (*models.ProcessRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var req models.ProcessRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse input: %w", err)
	}
	if req.ChartType == "" || len(req.Data) == 0 {
		return nil, errors.New(services.MsgMissingFields)
	}
	req.ChartType = models.ChartType(strings.ToLower(string(req.ChartType)))
	return &req, nil
}
