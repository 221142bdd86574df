package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"myFoodFinder/business/simulation"
	"myFoodFinder/pkg/logger"
	"myFoodFinder/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string // "json" | "text"
	Env    string
}

var validFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "simulator",
		Short:         "Offline tools for the food recommender",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			logger.InitWithWriter(opts.Env, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", "production", "logging environment")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
}

func NewRunCommand(opts *RootOptions) *cobra.Command {
	var (
		scenarioPath string
		rounds       int
		seed         uint64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate swipes against a scenario of places with known accept rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := simulation.LoadScenario(scenarioPath)
			if err != nil {
				return err
			}

			logger.Info("simulation starting", "scenario", scenario.Name, "rounds", rounds, "seed", seed)

			res, err := simulation.Run(cmd.Context(), scenario, rounds, seed)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), opts.Format, res)
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to scenario YAML")
	cmd.Flags().IntVar(&rounds, "rounds", 1000, "number of swipes to simulate")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed (0 picks one)")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func writeResult(w io.Writer, format string, res *simulation.Result) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "scenario: %s  rounds: %d  accepts: %d  regret: %.2f  best: %s\n\n",
		res.Scenario, res.Rounds, res.Accepts, res.Regret, res.BestArm)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ARM\tRATE\tPICKS\tSHARE\tACCEPTS\tSUCCESS\tFAILURE")
	for _, a := range res.Arms {
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%.1f%%\t%d\t%d\t%d\n",
			a.ID, a.AcceptRate, a.Picks, 100*float64(a.Picks)/float64(res.Rounds), a.Accepts, a.Successes, a.Failures)
	}
	return tw.Flush()
}

// NewTokenCommand mints a bearer token for local testing against the API.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		secret string
		userID string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			utils.SetJWTSecret(secret)

			token, err := utils.GenerateJWT(userID, role)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (JWT_SECRET)")
	cmd.Flags().StringVar(&userID, "user", "1", "user id claim")
	cmd.Flags().StringVar(&role, "role", "USER", "role claim")

	return cmd
}
