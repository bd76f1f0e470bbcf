package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/notionbackup/internal/assets"
	"github.com/jmylchreest/notionbackup/internal/logger"
	"github.com/jmylchreest/notionbackup/internal/output"
	"github.com/jmylchreest/notionbackup/pkg/htmlfmt"
	"github.com/jmylchreest/notionbackup/pkg/transformer"
)

var processCmd = &cobra.Command{
	Use:   "process <file.html>",
	Short: "Rewrite one exported page in place",
	Long: `Process a single exported Notion page and overwrite it with the result.

The stylesheet defaults to notionbackup/injection/inject.css under the
current directory. Pass --stylesheet builtin to use the bundled copy.

Examples:
  notionbackup process "Page 1a2b3c.html"
  notionbackup process page.html --stylesheet ./theme.css --indent 2
  notionbackup process page.html --report json`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	defaults := transformer.DefaultConfig()
	formatDefaults := htmlfmt.DefaultConfig()

	flags.StringP("stylesheet", "s", assets.DefaultStylesheetPath, "stylesheet to inject, or \"builtin\"")
	flags.String("wrapper-class", defaults.WrapperClass, "class token marking attachment link wrappers")
	flags.String("external-prefix", defaults.ExternalPrefix, "href prefix of links left unchanged")
	flags.Int("indent", formatDefaults.IndentWidth, "spaces per indentation level")
	flags.Int("print-width", formatDefaults.PrintWidth, "line width for wrapping text (0 disables wrapping)")
	flags.String("report", "", "print a processing report: json, yaml")
	flags.Bool("dry-run", false, "print the result to stdout instead of writing the file")

	_ = viper.BindPFlag("stylesheet", flags.Lookup("stylesheet"))
	_ = viper.BindPFlag("wrapper_class", flags.Lookup("wrapper-class"))
	_ = viper.BindPFlag("external_prefix", flags.Lookup("external-prefix"))
	_ = viper.BindPFlag("indent", flags.Lookup("indent"))
	_ = viper.BindPFlag("print_width", flags.Lookup("print-width"))
	_ = viper.BindPFlag("report", flags.Lookup("report"))
}

func runProcess(cmd *cobra.Command, args []string) error {
	logger.Debug("process command starting")

	path := args[0]
	if path == "" {
		return transformer.ErrInvalidPath
	}

	reportFormat, err := output.ParseFormat(viper.GetString("report"))
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Load stylesheet
	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}
	loader, err := assets.NewLoader(workdir, viper.GetString("stylesheet"))
	if err != nil {
		return err
	}
	if fl, ok := loader.(*assets.FileLoader); ok {
		logger.Debug("loading stylesheet", "path", fl.Path())
	} else {
		logger.Debug("loading bundled stylesheet")
	}
	css, err := loader.LoadStylesheet()
	if err != nil {
		return err
	}
	logger.Debug("stylesheet loaded", "size", humanize.Bytes(uint64(len(css))))

	// Build transformer
	cfg := transformer.DefaultConfig()
	cfg.Stylesheet = css
	cfg.WrapperClass = viper.GetString("wrapper_class")
	cfg.ExternalPrefix = viper.GetString("external_prefix")
	cfg.Format.IndentWidth = viper.GetInt("indent")
	cfg.Format.PrintWidth = viper.GetInt("print_width")

	t, err := transformer.New(cfg)
	if err != nil {
		return err
	}

	var result *transformer.Result
	if dryRun {
		result, err = t.TransformFile(path)
	} else {
		result, err = t.ProcessFile(path)
	}
	if err != nil {
		return err
	}
	logger.Debug("page stats", "stats", result.Stats.String())
	if result.HasWarnings() {
		logger.Warn("some attachment links were left unchanged",
			"file", filepath.Base(path), "skipped", result.Stats.LinksSkipped)
	}

	reportOut := cmd.OutOrStdout()
	if dryRun {
		if _, err := fmt.Fprint(cmd.OutOrStdout(), result.Content); err != nil {
			return err
		}
		// stdout carries the page
		reportOut = cmd.ErrOrStderr()
	}

	if reportFormat == output.FormatNone {
		return nil
	}
	w, err := output.NewWriter(reportOut, reportFormat)
	if err != nil {
		return err
	}
	return w.WriteReport(output.NewReport(result, !dryRun))
}
