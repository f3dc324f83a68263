package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/mazechase/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single configuration JSON file. Beyond
// engine.ValidateGameConfig it requires every traversable cell to be reachable,
// otherwise the items there can never be collected and the maze cannot be won.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	// ValidateGameConfig already built the maze once, so these cannot fail
	legend, _ := config.MazeLegend()
	board, _ := engine.BuildWithLegend(config.Maze(), legend)

	regions := engine.ConnectedRegions(board)
	if len(regions) > 1 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: maze splits into %d regions", len(regions)))
		for _, region := range regions {
			start := region[0]
			result.Errors = append(result.Errors, fmt.Sprintf("Region of %d cells starting at row %d, col %d", len(region), start.Row+1, start.Col+1))
		}
		return result
	}

	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", board.Width(), board.Height()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Items: %d", len(board.Traversables())))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Dead ends: %d", engine.CountDeadEnds(board)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Adversaries: %d", len(config.Adversaries)))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Lives: %d", config.Player.Lives))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Tick: %dms", config.TickInterval()))
	result.Errors = append(result.Errors, "✓ Connectivity: every item reachable")

	return result
}

// validateFiles validates each file, writes a concise report to w and reports
// whether all of them passed.
func validateFiles(w io.Writer, files []string) bool {
	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(w, "  "+info)
			}
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Fprintln(w, "  ❌ "+err)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some configurations have errors")
	}
	return allValid
}
