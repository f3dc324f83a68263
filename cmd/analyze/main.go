// Command analyze prints quick, human-readable heuristics about maze
// configurations. It summarizes dimensions, traversable cells, dead ends and
// connected regions, and highlights items a player can never reach.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// Report is the analysis of one config file
type Report struct {
	File        string
	Name        string
	Width       int
	Height      int
	Traversable int
	DeadEnds    int
	Regions     []int // region sizes, largest first
	Adversaries int
	Lives       int
	TickMillis  int
	Problems    []string
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "report maze statistics for game configurations",
		ArgsUsage: "[file.json ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				var err error
				files, err = filepath.Glob(filepath.Join(cmd.String("config-dir"), "*.json"))
				if err != nil {
					return err
				}
				sort.Strings(files)
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found")
			}

			for _, file := range files {
				fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
				report, err := analyzeFile(file)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					continue
				}
				printReport(os.Stdout, report)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyzeFile reads a config without validating it, so broken mazes still get a report
func analyzeFile(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return Report{}, fmt.Errorf("parsing JSON: %w", err)
	}

	report, err := analyze(&config)
	report.File = filepath.Base(path)
	return report, err
}

func analyze(config *engine.GameConfig) (Report, error) {
	report := Report{
		Name:        config.Name,
		Adversaries: len(config.Adversaries),
		Lives:       config.Player.Lives,
		TickMillis:  config.TickInterval(),
	}

	legend, err := config.MazeLegend()
	if err != nil {
		return report, err
	}
	board, err := engine.BuildWithLegend(config.Maze(), legend)
	if err != nil {
		return report, err
	}

	report.Width = board.Width()
	report.Height = board.Height()
	report.Traversable = len(board.Traversables())
	report.DeadEnds = engine.CountDeadEnds(board)

	for _, region := range engine.ConnectedRegions(board) {
		report.Regions = append(report.Regions, len(region))
	}
	sort.Sort(sort.Reverse(sort.IntSlice(report.Regions)))

	if report.Traversable == 0 {
		report.Problems = append(report.Problems, "no traversable cells")
	}
	if len(report.Regions) > 1 {
		unreachable := report.Traversable - report.Regions[0]
		report.Problems = append(report.Problems,
			fmt.Sprintf("%d regions: up to %d items may be unreachable", len(report.Regions), unreachable))
	}
	if report.Adversaries > 0 {
		for _, size := range report.Regions {
			if size == 1 {
				report.Problems = append(report.Problems, "enclosed cell: adversaries spawned there cannot move")
				break
			}
		}
	}

	return report, nil
}

func printReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Width, r.Height)
	fmt.Fprintf(w, "Traversable Cells: %d (items at start)\n", r.Traversable)
	fmt.Fprintf(w, "Dead Ends: %d\n", r.DeadEnds)
	fmt.Fprintf(w, "Regions: %d %v\n", len(r.Regions), r.Regions)
	fmt.Fprintf(w, "Adversaries: %d\n", r.Adversaries)
	fmt.Fprintf(w, "Lives: %d\n", r.Lives)
	fmt.Fprintf(w, "Tick: %dms\n", r.TickMillis)

	if len(r.Problems) == 0 {
		fmt.Fprintln(w, "✓ Every item is reachable")
		return
	}
	for _, p := range r.Problems {
		fmt.Fprintf(w, "⚠️  %s\n", p)
	}
}
