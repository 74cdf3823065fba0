package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyuri/tinyvg/pkg/tinyvg"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tinyvgctl",
	Short: "Inspect and validate TinyVG vector graphics files",
	Long: `tinyvgctl is a tool for working with TinyVG binary vector graphics files.

It can display file metadata and a per-command kind listing (as text or
JSON) and validate structure. It is a decoder only; it cannot write TinyVG files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose diagnostic logging")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

func openSized(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open input file: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat input file: %w", err)
	}
	return f, stat.Size(), nil
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info <input.tvg>",
	Short: "Display TinyVG file information",
	Long: `Display header metadata and command statistics about a TinyVG file.

Shows the coordinate range, color encoding, dimensions, and counts of
commands and colors.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().Bool("brief", false, "Show only summary")
}

func runInfo(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")
	brief, _ := cmd.Flags().GetBool("brief")

	f, size, err := openSized(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	log.WithFields(logrus.Fields{"file": inputPath, "size": size}).Debug("parsing file")
	img, err := tinyvg.Parse(f, size)
	if err != nil {
		return fmt.Errorf("parse TinyVG file: %w", err)
	}

	if jsonOutput {
		return outputInfoJSON(inputPath, img, size)
	}
	return outputInfoText(inputPath, img, size, brief)
}

func outputInfoText(path string, img *tinyvg.Image, fileSize int64, brief bool) error {
	if brief {
		fmt.Printf("%s: %dx%d %s %s colors=%d commands=%d\n",
			path,
			img.Header.Width, img.Header.Height,
			img.Header.ColorEncoding,
			img.Header.CoordinateRange,
			len(img.ColorTable),
			len(img.Commands))
		return nil
	}

	fmt.Printf("TinyVG File: %s\n", path)
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	fmt.Println("Header:")
	fmt.Printf("  Version:          %d\n", img.Header.Version)
	fmt.Printf("  Dimensions:       %d x %d\n", img.Header.Width, img.Header.Height)
	fmt.Printf("  Scale:            %d (unit divisor 2^%d)\n", img.Header.Scale, img.Header.Scale)
	fmt.Printf("  Color encoding:   %s\n", img.Header.ColorEncoding)
	fmt.Printf("  Coordinate range: %s\n", img.Header.CoordinateRange)
	fmt.Println()

	fmt.Println("Contents:")
	fmt.Printf("  Colors:           %d\n", len(img.ColorTable))
	fmt.Printf("  Commands:         %d\n", len(img.Commands))
	fmt.Printf("  Trailer bytes:    %d\n", len(img.Trailer))
	fmt.Println()

	fmt.Printf("File Size:          %s (%d bytes)\n", formatBytes(fileSize), fileSize)

	if len(img.Warnings) > 0 {
		fmt.Println()
		fmt.Println("Warnings:")
		for _, w := range img.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	if len(img.Commands) > 0 && len(img.Commands) <= 20 {
		fmt.Println()
		fmt.Println("Commands:")
		for i, c := range img.Commands {
			outline := ""
			if c.Outline != nil {
				outline = " (outlined)"
			}
			fmt.Printf("  %3d: %s%s\n", i, c.Kind, outline)
		}
	}

	return nil
}

func outputInfoJSON(path string, img *tinyvg.Image, fileSize int64) error {
	info := map[string]interface{}{
		"file": path,
		"header": map[string]interface{}{
			"version":         img.Header.Version,
			"width":           img.Header.Width,
			"height":          img.Header.Height,
			"scale":           img.Header.Scale,
			"colorEncoding":   img.Header.ColorEncoding.String(),
			"coordinateRange": img.Header.CoordinateRange.String(),
		},
		"counts": map[string]int{
			"colors":   len(img.ColorTable),
			"commands": len(img.Commands),
		},
		"fileSize": fileSize,
		"warnings": img.Warnings,
	}

	commands := make([]map[string]interface{}, len(img.Commands))
	for i, c := range img.Commands {
		commands[i] = map[string]interface{}{
			"kind":    c.Kind.String(),
			"outline": c.Outline != nil,
		}
	}
	info["commands"] = commands

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input.tvg>",
	Short: "Validate TinyVG file structure",
	Long: `Validate TinyVG file structure and contents.

Checks for out-of-range color indices, malformed path segments, and other
structural issues that a successful parse does not already rule out.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	strict, _ := cmd.Flags().GetBool("strict")

	f, size, err := openSized(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := tinyvg.Parse(f, size)
	if err != nil {
		return fmt.Errorf("parse TinyVG file: %w", err)
	}

	issues := tinyvg.Validate(img)
	printValidationResults(inputPath, issues)

	hasErrors := false
	hasWarnings := false
	for _, issue := range issues {
		if issue.Level == "error" {
			hasErrors = true
		} else {
			hasWarnings = true
		}
	}
	if hasErrors || (strict && hasWarnings) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

func printValidationResults(path string, issues []tinyvg.ValidationError) {
	fmt.Printf("Validating: %s\n", path)
	fmt.Println(strings.Repeat("=", 50))

	if len(issues) == 0 {
		fmt.Println("valid TinyVG file - no issues found")
		return
	}

	var errs, warnings []tinyvg.ValidationError
	for _, issue := range issues {
		if issue.Level == "error" {
			errs = append(errs, issue)
		} else {
			warnings = append(warnings, issue)
		}
	}

	if len(errs) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(errs))
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  - %s\n", w)
		}
	}

	fmt.Println()
	if len(errs) > 0 {
		fmt.Printf("Validation failed: %d error(s), %d warning(s)\n", len(errs), len(warnings))
	} else {
		fmt.Printf("Validation passed with %d warning(s)\n", len(warnings))
	}
}

// version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tinyvgctl version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
	},
}
