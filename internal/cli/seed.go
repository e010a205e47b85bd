package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"brainscore-quiz-service/internal/auth"
	"brainscore-quiz-service/internal/config"
)

// NewSeedCmd loads the sample quizzes into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample quizzes into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			if cfg.StorageDriver() == "memory" {
				log.Warn("memory storage does not persist; seeding is a no-op outside start")
				return nil
			}
			b, err := openBackend(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer b.Close()
			return seedQuizzes(ctx, b.quizzes, log)
		},
	}
}

// NewHashPasswordCmd prints a bcrypt hash for admin.passwordHash.
func NewHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash suitable for admin.passwordHash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}
			hash, err := auth.HashPassword(password, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
