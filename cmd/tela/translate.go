package main

import (
	"os"
	"strings"

	"github.com/aretw0/tela"
	"github.com/aretw0/tela/internal/cli"
	"github.com/aretw0/tela/internal/presentation/tui"
	"github.com/aretw0/tela/pkg/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var translateCmd = &cobra.Command{
	Use:   "translate [formula]",
	Short: "Translate a formula and print the automaton",
	Long: `Translates an LTL formula, given as argument or with -f, and prints the
alternating automaton (phase 1), the nondeterministic automaton (phase 2, default)
or both (phase 3).

Exits with status 32 when the translation needs more acceptance marks than allowed.`,
	Example: `  tela translate 'G (req -> F grant)'
  tela translate -p 3 -o dot 'a U b'
  tela translate -a ltl3ba -o summary 'G F a | G F b'`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		formula, _ := cmd.Flags().GetString("formula")
		if len(args) > 0 {
			formula = args[0]
		}
		if strings.TrimSpace(formula) == "" {
			return cmd.Usage()
		}

		cfg, err := cli.ConfigFromFlags(cmd, file.Translation)
		if err != nil {
			return err
		}
		tr, err := tela.New(tela.WithConfig(cfg), tela.WithLogger(logger))
		if err != nil {
			return err
		}
		defer tr.Close()

		format, _ := cmd.Flags().GetString("output")
		phase, _ := cmd.Flags().GetInt("phase")
		mergeable, _ := cmd.Flags().GetInt("mergeable-info")
		banner, _ := cmd.Flags().GetBool("banner")

		pretty := term.IsTerminal(int(os.Stdout.Fd()))
		if banner && pretty {
			tui.PrintBanner(os.Stdout)
		}

		return cli.RunTranslate(cmd.Context(), tr, cli.TranslateOptions{
			Formula:   formula,
			Format:    domain.Format(format),
			Phase:     domain.Phase(phase),
			Mergeable: mergeable,
			Pretty:    pretty,
		}, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringP("formula", "f", "", "Formula to translate")
	translateCmd.Flags().StringP("output", "o", string(domain.FormatHOA), "Output format: hoa, dot, mermaid or summary")
	translateCmd.Flags().IntP("phase", "p", int(domain.PhaseNA), "1 alternating automaton, 2 nondeterministic automaton, 3 both")
	translateCmd.Flags().IntP("mergeable-info", "m", 0, "Only report whether an until (1) or a G loop (2) is merged")
	translateCmd.Flags().Bool("banner", false, "Print the banner on terminals")
	cli.AddConfigFlags(translateCmd)
}
