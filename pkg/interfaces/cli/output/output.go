package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
)

// Formats lists the supported output formats
var Formats = []string{"text", "json", "svg", "csv"}

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool

	// Writer receives output when OutputDir is empty, and progress
	// messages otherwise. Defaults to os.Stdout.
	Writer io.Writer

	// Today is highlighted in text output. Defaults to the result's
	// generation time.
	Today time.Time
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate creates output in the specified format
func Generate(result *dto.ScheduleResult, config Config) error {
	if result == nil {
		return fmt.Errorf("no schedule to render")
	}

	switch config.Format {
	case "text", "":
		return generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "svg":
		return generateSVGOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates the terminal chart
func generateTextOutput(result *dto.ScheduleResult, config Config) error {
	today := config.Today
	if today.IsZero() {
		today = result.GeneratedAt
	}
	text := RenderTerminal(result, today)
	return emit(config, "schedule.txt", []byte(text))
}

// generateJSONOutput creates JSON output
func generateJSONOutput(result *dto.ScheduleResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return emit(config, "schedule.json", append(jsonData, '\n'))
}

// generateSVGOutput creates the Gantt chart image
func generateSVGOutput(result *dto.ScheduleResult, config Config) error {
	chart := NewGanttChart(result)
	return emit(config, "schedule.svg", []byte(chart.GenerateSVG(result)))
}

// generateCSVOutput writes one row per placed task
func generateCSVOutput(result *dto.ScheduleResult, config Config) error {
	if config.OutputDir == "" {
		return writeTasksCSV(result, config.writer())
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "schedule.csv")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := writeTasksCSV(result, file); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 CSV results saved to: %s\n", filename)
	}
	return nil
}

func writeTasksCSV(result *dto.ScheduleResult, w io.Writer) error {
	writer := csv.NewWriter(w)
	header := []string{"id", "line", "slot", "status", "label", "start", "end", "days", "overdue"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, lane := range result.Layout.Lanes {
		for _, p := range lane.Tasks {
			record := []string{
				p.Task.ID,
				lane.Line,
				fmt.Sprintf("%d", p.Slot),
				string(p.Task.Status),
				p.Task.Label,
				p.Task.Start.Format("2006-01-02"),
				p.Task.End.Format("2006-01-02"),
				fmt.Sprintf("%d", schedule.DaysBetween(p.Task.Start, p.Task.End)+1),
				fmt.Sprintf("%t", p.Overdue),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// emit prints data when no output directory is configured, otherwise saves
// it under filename in the directory.
func emit(config Config, filename string, data []byte) error {
	if config.OutputDir == "" {
		_, err := config.writer().Write(data)
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(config.OutputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if config.Verbose {
		fmt.Fprintf(config.writer(), "💾 Results saved to: %s\n", path)
	}
	return nil
}
