package cli

import (
	"github.com/spf13/cobra"
	"logo-quiz-service/internal/domain"
)

// NewLeaderboardCmd prints the ranked scoreboard.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var (
		name  string
		score int
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			service, cleanup, err := buildService(cmd.Context(), cfg)
			defer cleanup()
			if err != nil {
				return err
			}

			var highlight *domain.Highlight
			if name != "" {
				highlight = &domain.Highlight{Name: name, Score: score}
			}
			printLeaderboard(cmd.OutOrStdout(), service.Leaderboard(cmd.Context(), highlight))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "player to highlight")
	cmd.Flags().IntVar(&score, "score", 0, "score of the highlighted player")
	return cmd
}
