package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/library"
	"intervaltimer/internal/ui/preferences"
)

func newListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				presets, err := lib.List()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(presets) == 0 {
					fmt.Fprintln(out, "no presets saved")
					return nil
				}
				for _, preset := range presets {
					printPresetLine(out, preset)
				}
				return nil
			})
		},
	}
}

func newShowCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <preset>",
		Short: "Show the phases of a preset",
		Long:  "Show a preset by id, id prefix or exact name.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Resolve(args[0])
				if err != nil {
					return err
				}
				printPreset(cmd.OutOrStdout(), preset)
				return nil
			})
		},
	}
}

func newNewCmd(env *cliEnv) *cobra.Command {
	var (
		name        string
		phaseSpecs  []string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a preset",
		Long: `Create a preset from --phase flags, each NAME=MM:SS or NAME=SECONDS,
or fill in a form with --interactive.`,
		Example: `  intervalctl new --name Tabata --phase Work=0:20 --phase Rest=0:10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interactive {
				var err error
				name, phaseSpecs, err = runPresetForm(name)
				if err != nil {
					return err
				}
			}
			if len(phaseSpecs) == 0 {
				return errors.New("required flag --phase not set")
			}
			phases, err := parsePhaseSpecs(phaseSpecs)
			if err != nil {
				return err
			}
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Create(name, phases)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", preset.ID)
				printPreset(cmd.OutOrStdout(), preset)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Preset name")
	cmd.Flags().StringArrayVar(&phaseSpecs, "phase", nil, "Phase as NAME=MM:SS (repeatable, in order)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill in the preset with a form")
	return cmd
}

// parsePhaseSpecs turns NAME=MM:SS values into phases.
func parsePhaseSpecs(specs []string) ([]model.Phase, error) {
	phases := make([]model.Phase, 0, len(specs))
	for _, spec := range specs {
		name, clock, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("phase %q: expected NAME=MM:SS", spec)
		}
		seconds, err := preferences.ParseClock(clock)
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", spec, err)
		}
		phases = append(phases, model.NewPhase(strings.TrimSpace(name), seconds))
	}
	return phases, nil
}

// runPresetForm asks for a name and one phase per line.
func runPresetForm(name string) (string, []string, error) {
	lines := "Work=0:20\nRest=0:10"
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Preset name").
			Value(&name),
		huh.NewText().
			Title("Phases").
			Description("One NAME=MM:SS per line, in order.").
			Value(&lines).
			Validate(func(value string) error {
				_, err := parsePhaseSpecs(splitLines(value))
				return err
			}),
	))
	if err := form.Run(); err != nil {
		return "", nil, err
	}
	return name, splitLines(lines), nil
}

func splitLines(value string) []string {
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// quickFlags are the sets/work/rest flags shared by quick and run.
type quickFlags struct {
	sets int
	work string
	rest string
}

func (flags *quickFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flags.sets, "sets", 0, "Number of work sets (default: from settings)")
	cmd.Flags().StringVar(&flags.work, "work", "", "Work duration, MM:SS or seconds (default: from settings)")
	cmd.Flags().StringVar(&flags.rest, "rest", "", "Rest duration, MM:SS or seconds (default: from settings)")
}

// values applies the flags over the quick-start defaults in settings.
func (flags *quickFlags) values(settings preferences.Settings) (int, int, int, error) {
	sets := settings.QuickSets
	work := int(settings.QuickWork.Seconds())
	rest := int(settings.QuickRest.Seconds())

	if flags.sets != 0 {
		if flags.sets < 1 || flags.sets > preferences.MaxQuickSets {
			return 0, 0, 0, fmt.Errorf("--sets must be between 1 and %d", preferences.MaxQuickSets)
		}
		sets = flags.sets
	}
	if flags.work != "" {
		seconds, err := preferences.ParseClock(flags.work)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("--work: %w", err)
		}
		work = seconds
	}
	if flags.rest != "" {
		seconds, err := preferences.ParseClock(flags.rest)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("--rest: %w", err)
		}
		rest = seconds
	}
	return sets, work, rest, nil
}

func newQuickCmd(env *cliEnv) *cobra.Command {
	var (
		flags quickFlags
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Build a work/rest preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				sets, work, rest, err := flags.values(env.settings)
				if err != nil {
					return err
				}
				preset, err := lib.QuickStart(sets, work, rest, save)
				if err != nil {
					return err
				}
				if save {
					fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", preset.ID)
				}
				printPreset(cmd.OutOrStdout(), preset)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "Save the preset to the library")
	return cmd
}

func newShareCmd(env *cliEnv) *cobra.Command {
	var copyLink bool

	cmd := &cobra.Command{
		Use:   "share <preset>",
		Short: "Print the share link for a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Resolve(args[0])
				if err != nil {
					return err
				}
				link, err := lib.ShareLink(preset.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), link)
				if copyLink {
					if err := clipboard.WriteAll(link); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(fmt.Sprintf("copy to clipboard: %v", err)))
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&copyLink, "copy", false, "Also copy the link to the clipboard")
	return cmd
}

func newImportCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "import <link>",
		Short: "Import a preset from a share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				result, err := lib.ImportLink(args[0])
				if err != nil {
					return err
				}
				if result.Outcome == library.ImportIgnored {
					return fmt.Errorf("not an intervaltimer share link: %q", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", result.Outcome, result.Preset.ID)
				printPreset(cmd.OutOrStdout(), result.Preset)
				return nil
			})
		},
	}
}

func newRenameCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <preset> <name>",
		Short: "Rename a preset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Resolve(args[0])
				if err != nil {
					return err
				}
				renamed, err := lib.Rename(preset.ID, args[1])
				if err != nil {
					return err
				}
				printPresetLine(cmd.OutOrStdout(), renamed)
				return nil
			})
		},
	}
}

func newDuplicateCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <preset>",
		Short: "Copy a preset under a new name and id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Resolve(args[0])
				if err != nil {
					return err
				}
				copied, err := lib.Duplicate(preset.ID)
				if err != nil {
					return err
				}
				printPresetLine(cmd.OutOrStdout(), copied)
				return nil
			})
		},
	}
}

func newDeleteCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <preset>",
		Aliases: []string{"rm"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.withLibrary(func(lib *library.Service) error {
				preset, err := lib.Resolve(args[0])
				if err != nil {
					return err
				}
				if err := lib.Delete(preset.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", preset.DisplayName())
				return nil
			})
		},
	}
}
