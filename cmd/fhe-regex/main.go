// Command fhe-regex demonstrates regex matching over encrypted
// content: it generates keys, encrypts the content, evaluates the
// pattern homomorphically and decrypts the single boolean result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"go.uber.org/zap"

	fheregex "github.com/RKlompUU/fhe-regex"
	"github.com/RKlompUU/fhe-regex/bfv"
)

var version = "dev"

var (
	flagContent string
	flagPattern string
	flagClear   bool
	flagWorkers int
	flagVerbose bool
	flagLength  int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "fhe-regex",
	Short:   "Regex matching over homomorphically encrypted content",
	Version: version,
	Long: `fhe-regex evaluates a regular expression against content whose
characters are encrypted under the BFV scheme. The server side never
sees the content in the clear; only the final encrypted boolean is
decrypted, by the key owner.

Patterns use the slash-delimited syntax: /^a+b$/ or /hello/i.`,
}

func init() {
	matchCmd.Flags().StringVar(&flagContent, "content", "", "content string to encrypt and match against")
	matchCmd.Flags().StringVar(&flagPattern, "pattern", "", "slash-delimited pattern, e.g. '/^a+b$/'")
	matchCmd.Flags().BoolVar(&flagClear, "clear", false, "skip encryption and run the cleartext backend")
	matchCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel comparison workers (0 = GOMAXPROCS)")
	matchCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "debug logging")
	_ = matchCmd.MarkFlagRequired("content")
	_ = matchCmd.MarkFlagRequired("pattern")

	planCmd.Flags().StringVar(&flagPattern, "pattern", "", "slash-delimited pattern")
	planCmd.Flags().IntVar(&flagLength, "length", 0, "public content length to plan for")
	_ = planCmd.MarkFlagRequired("pattern")

	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(planCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Encrypt content and evaluate a pattern against it",
	RunE: func(cmd *cobra.Command, args []string) error {
		for i := 0; i < len(flagContent); i++ {
			if flagContent[i] >= 0x80 {
				return fmt.Errorf("content byte %d is not ASCII", i)
			}
		}

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cfg := fheregex.DefaultConfig()
		cfg.Logger = log
		if flagWorkers > 0 {
			cfg.Workers = flagWorkers
		}

		if flagClear {
			return runClear(cmd.Context(), cfg)
		}
		return runBFV(cmd.Context(), log, cfg)
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the variants a pattern produces for a public length",
	RunE: func(cmd *cobra.Command, args []string) error {
		re, err := fheregex.Compile(flagPattern)
		if err != nil {
			return err
		}
		plan, err := re.Plan(flagLength)
		if err != nil {
			return err
		}
		fmt.Printf("pattern:        %s\n", re)
		fmt.Printf("content length: %d\n", plan.ContentLen)
		fmt.Printf("variants:       %d (pruned %d branches)\n", len(plan.Variants), plan.Pruned)
		fmt.Printf("distinct atoms: %d\n", len(plan.Atoms))
		for i, v := range plan.Variants {
			fmt.Printf("  %3d: %s\n", i, v)
		}
		return nil
	},
}

func runClear(ctx context.Context, cfg fheregex.Config) error {
	engine := fheregex.NewEngineWithConfig[byte, bool](fheregex.Clear{}, cfg)
	res, err := engine.HasMatch(ctx, fheregex.ClearContent(flagContent), flagPattern)
	if err != nil {
		return err
	}
	fmt.Printf("res: %d\n", boolToInt(res))
	return nil
}

func runBFV(ctx context.Context, log *zap.Logger, cfg fheregex.Config) error {
	params, err := bfv.NewParameters()
	if err != nil {
		return err
	}

	log.Info("generating keys")
	client, err := bfv.NewClient(params)
	if err != nil {
		return err
	}
	server, err := bfv.NewServer(params, client.PublicKey(), client.EvaluationKeys())
	if err != nil {
		return err
	}

	log.Info("encrypting content", zap.Int("chars", len(flagContent)))
	content, err := client.EncryptString(flagContent)
	if err != nil {
		return err
	}

	log.Info("applying regex", zap.String("pattern", flagPattern))
	engine := fheregex.NewEngineWithConfig[*rlwe.Ciphertext, *rlwe.Ciphertext](server, cfg)
	ct, err := engine.HasMatch(ctx, content, flagPattern)
	if err != nil {
		return err
	}

	res, err := client.DecryptBool(ct)
	if err != nil {
		return err
	}
	fmt.Printf("res: %d\n", boolToInt(res))
	return nil
}

func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
