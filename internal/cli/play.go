package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"logo-quiz-service/internal/app"
	"logo-quiz-service/internal/domain"
)

var letters = [4]string{"A", "B", "C", "D"}

// NewPlayCmd plays one session in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var name, email, mode string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a round in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if mode == "" {
				mode = cfg.Game.Mode
			}
			m, err := domain.ParseMode(mode)
			if err != nil {
				return err
			}
			service, cleanup, err := buildService(cmd.Context(), cfg)
			defer cleanup()
			if err != nil {
				return err
			}
			return playRound(cmd.Context(), service, cmd.InOrStdin(), cmd.OutOrStdout(), domain.Identity{Name: name, Email: email}, m)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "player name (prompted when empty)")
	cmd.Flags().StringVar(&email, "email", "", "player email")
	cmd.Flags().StringVar(&mode, "mode", "", "random or sequential (defaults to game.mode)")
	return cmd
}

func playRound(ctx context.Context, service *app.GameService, in io.Reader, out io.Writer, identity domain.Identity, mode domain.Mode) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	if strings.TrimSpace(identity.Name) == "" {
		fmt.Fprint(out, "Enter your name: ")
		identity.Name = <-lines
		if identity.Email == "" {
			fmt.Fprint(out, "Enter your email (optional): ")
			identity.Email = <-lines
		}
	}

	state, err := service.StartGame(ctx, identity, mode)
	if err != nil {
		return err
	}
	defer service.Leave(ctx, state.ID)

	updates, cancel, err := service.Subscribe(ctx, state.ID)
	if err != nil {
		return err
	}
	defer cancel()

	prompt := true
	for state.Phase == domain.PhaseActive {
		if prompt {
			printQuestion(out, state)
			prompt = false
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			turn, err := service.Submit(ctx, state.ID, pickOption(state, line))
			if err != nil {
				return err
			}
			if turn.Accepted {
				fmt.Fprintln(out, feedbackLabel(turn.Feedback))
			}
			state, err = service.Advance(ctx, state.ID)
			if err != nil {
				return err
			}
			prompt = true
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// the timer is the only thing that ends a round behind our back
			if update.Phase == domain.PhaseEnded {
				fmt.Fprintln(out, "\nTime's up!")
				state = update
			}
		}
	}

	fmt.Fprintf(out, "\nFinal score: %d (%d answered)\n", state.Score, state.Answered)
	service.Wait()
	view := service.Leaderboard(ctx, &domain.Highlight{Name: state.Player.Name, Score: state.Score})
	printLeaderboard(out, view)
	return nil
}

func feedbackLabel(fb domain.Feedback) string {
	if fb == domain.FeedbackCorrect {
		return "Correct!"
	}
	return "Wrong!"
}

func printQuestion(out io.Writer, state domain.SessionState) {
	if state.Question == nil {
		return
	}
	fmt.Fprintf(out, "\nWhat is this logo? %s\n", state.Question.PromptAssetRef)
	for i, opt := range state.Question.Options {
		fmt.Fprintf(out, "  %s) %s\n", letters[i], opt)
	}
	if state.Mode == domain.ModeRandom {
		fmt.Fprintf(out, "[%ds left, score %d] > ", state.Remaining, state.Score)
	} else {
		fmt.Fprintf(out, "[%d/%d, score %d] > ", state.Cursor+1, state.Total, state.Score)
	}
}

// pickOption accepts a letter A-D or the option text itself.
func pickOption(state domain.SessionState, line string) string {
	line = strings.TrimSpace(line)
	if state.Question == nil {
		return line
	}
	for i, l := range letters {
		if strings.EqualFold(line, l) {
			return state.Question.Options[i]
		}
	}
	return line
}

func printLeaderboard(out io.Writer, view domain.LeaderboardView) {
	fmt.Fprintln(out, "\nLeaderboard")
	for i, rec := range view.Top {
		marker := "  "
		if i+1 == view.CurrentPlayerRank {
			marker = "->"
		}
		fmt.Fprintf(out, "%s %2d. %-20s %4d\n", marker, i+1, displayName(rec), rec.Score)
	}
	if view.CurrentPlayerRank > 0 && !view.InTop {
		fmt.Fprintf(out, "\nYour ranking: #%d\n", view.CurrentPlayerRank)
	}
}

func displayName(rec domain.ScoreRecord) string {
	if rec.Email == "" {
		return rec.Name
	}
	return fmt.Sprintf("%s (%s)", rec.Name, rec.Email)
}
