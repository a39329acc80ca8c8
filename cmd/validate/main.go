// Command validate checks preset JSON files before they are deployed to a
// server's presets directory. For each file it checks:
//   - JSON structure
//   - Length within the playable range
//   - A declared name matching the file name
//   - Attempts large enough to be winnable with a consistent strategy
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/bulls-and-cows/game/config"
)

// recommendedAttempts is the guess count a consistent-candidate player
// needs in the worst case, indexed by length.
var recommendedAttempts = map[int]uint32{4: 7, 5: 8, 6: 8, 7: 8, 8: 8, 9: 8}

// ValidationResult captures the outcome of validating a single file.
// Warnings do not make a file invalid.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	preset, err := config.ParsePreset(data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	name := strings.TrimSuffix(result.File, ".json")
	if preset.Name != "" && preset.Name != name {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("name %q does not match file name %q", preset.Name, name))
	}

	if preset.Description == "" {
		result.Warnings = append(result.Warnings, "description is empty")
	}
	// A game accepts MaxAttempts+1 guesses
	if want := recommendedAttempts[preset.Length]; preset.MaxAttempts+1 < want {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d guesses may not be enough for length %d (recommended at least %d attempts)",
				preset.MaxAttempts+1, preset.Length, want-1))
	}

	return result
}

func validateDir(out io.Writer, dir string) (bool, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return false, fmt.Errorf("finding preset files: %w", err)
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No preset files found in %s\n", dir)
		return true, nil
	}

	allValid := true
	for _, file := range files {
		result := validatePreset(file)

		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(out, "VALID")
		} else {
			fmt.Fprintln(out, "INVALID")
			allValid = false
		}
		for _, e := range result.Errors {
			fmt.Fprintln(out, "  error: "+e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(out, "  warning: "+w)
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "All presets are valid!")
	} else {
		fmt.Fprintln(out, "Some presets have errors")
	}
	return allValid, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "Validate preset JSON files",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = os.Getenv("PRESETS_DIR")
			}
			if dir == "" {
				dir = "presets"
			}

			ok, err := validateDir(os.Stdout, dir)
			if err != nil {
				return err
			}
			if !ok {
				return cli.Exit("", 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
