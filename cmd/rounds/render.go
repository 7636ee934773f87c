package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/rounds/internal/config"
	"github.com/ehr/rounds/internal/domain/rounding"
	"github.com/ehr/rounds/internal/domain/smartphrase"
	"github.com/ehr/rounds/internal/platform/clipboard"
)

// sheetFlags select the sheet a command works on: a JSON file, a sheet of
// the configured workspace, or one of the demo patients (1-based).
type sheetFlags struct {
	file string
	id   string
	demo int
	copy bool
}

func (f *sheetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "sheet", "", "Path to a sheet JSON file")
	cmd.Flags().StringVar(&f.id, "id", "", "Sheet id in the configured workspace")
	cmd.Flags().IntVar(&f.demo, "demo", 1, "Demo patient number when no sheet is given")
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Copy the output to the clipboard")
}

func (f *sheetFlags) load(ctx context.Context, logger zerolog.Logger) (*rounding.Sheet, error) {
	switch {
	case f.file != "":
		return loadSheetFile(f.file)
	case f.id != "":
		return loadWorkspaceSheet(ctx, f.id, logger)
	default:
		return demoSheet(f.demo, time.Now())
	}
}

func loadSheetFile(path string) (*rounding.Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	var s rounding.Sheet
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("sheet %s: %w", path, err)
	}
	return &s, nil
}

func loadWorkspaceSheet(ctx context.Context, rawID string, logger zerolog.Logger) (*rounding.Sheet, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet id %q", rawID)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	repo, pool, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pool != nil {
		defer pool.Close()
	}
	svc := rounding.NewService(repo, cfg.WorkspaceKey, logger)
	if err := svc.Load(ctx); err != nil {
		return nil, err
	}
	return svc.GetSheet(ctx, id)
}

func demoSheet(n int, now time.Time) (*rounding.Sheet, error) {
	demo := rounding.DemoSheets(now)
	if n < 1 || n > len(demo) {
		return nil, fmt.Errorf("--demo must be between 1 and %d", len(demo))
	}
	return demo[n-1], nil
}

// askTemplate shows the interactive picker and returns the chosen index.
var askTemplate = func(options []string, defaultIndex int) (int, error) {
	var out string
	prompt := &survey.Select{
		Message:  "SmartPhrase template:",
		Options:  options,
		Default:  options[defaultIndex],
		PageSize: len(options),
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return 0, context.Canceled
		}
		return 0, err
	}
	for i, o := range options {
		if o == out {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown selection %q", out)
}

var stdinIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// chooseTemplate resolves --template, or asks when attached to a terminal,
// or falls back to the suggestion for the sheet's diagnosis.
func chooseTemplate(catalog *smartphrase.Catalog, id string, sheet *rounding.Sheet) (smartphrase.Template, error) {
	if id != "" {
		return catalog.Get(id)
	}
	suggested := catalog.ForDiagnosis(sheet.DiagnosisType)
	if !stdinIsTerminal() {
		return suggested, nil
	}

	templates := catalog.List()
	options := make([]string, len(templates))
	def := 0
	for i, t := range templates {
		options[i] = t.Label
		if t.ID == suggested.ID {
			def = i
		}
	}
	i, err := askTemplate(options, def)
	if err != nil {
		return smartphrase.Template{}, err
	}
	return templates[i], nil
}

// emit prints text or, with --copy, sends it to the clipboard.
func emit(cmd *cobra.Command, text string, toClipboard bool, logger zerolog.Logger) error {
	if !toClipboard {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	copier := clipboard.New(cmd.OutOrStdout(), clipboard.WithLogger(logger))
	copied, err := copier.Copy(text)
	if err != nil {
		return err
	}
	if copied {
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
	}
	return nil
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	return newLogger(cmd.ErrOrStderr(), "development").Level(zerolog.WarnLevel)
}

func renderCmd() *cobra.Command {
	var (
		flags      sheetFlags
		templateID string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a SmartPhrase template against a sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger(cmd)
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			sheet, err := flags.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			tmpl, err := chooseTemplate(catalog, templateID, sheet)
			if err != nil {
				return err
			}
			return emit(cmd, smartphrase.Render(tmpl, *sheet), flags.copy, logger)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "Template id (see 'rounds templates')")
	return cmd
}

func noteCmd() *cobra.Command {
	var flags sheetFlags
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Print the plain rounding note for a sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cliLogger(cmd)
			sheet, err := flags.load(cmd.Context(), logger)
			if err != nil {
				return err
			}
			return emit(cmd, rounding.NoteText(sheet), flags.copy, logger)
		},
	}
	flags.register(cmd)
	return cmd
}

func templatesCmd() *cobra.Command {
	var showTokens bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the available SmartPhrase templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			catalog, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			return writeTemplateList(cmd.OutOrStdout(), catalog, showTokens)
		},
	}
	cmd.Flags().BoolVar(&showTokens, "tokens", false, "Also list the supported tokens")
	return cmd
}

func writeTemplateList(w io.Writer, catalog *smartphrase.Catalog, showTokens bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tSERVICE")
	for _, t := range catalog.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Label, t.Service)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if showTokens {
		fmt.Fprintln(w)
		for _, tok := range smartphrase.Tokens() {
			fmt.Fprintln(w, tok)
		}
	}
	return nil
}
