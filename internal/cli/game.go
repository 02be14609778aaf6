package cli

import (
	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "In-game commands for the current room",
	}

	cmd.AddCommand(newGameStartCmd())
	cmd.AddCommand(newGameCommanderCmd())
	cmd.AddCommand(newGameWordCmd())
	cmd.AddCommand(newGameEmojisCmd())
	cmd.AddCommand(newGameGuessCmd())
	cmd.AddCommand(newGameResultsCmd())

	return cmd
}

func newGameStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game (creator only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/rooms/start", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game started")
			return nil
		},
	}
}

func newGameCommanderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commander",
		Short: "Select or re-query the round's commander",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CommanderResult

			if err := client.Post("/api/v1/rooms/commander", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameWordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word",
		Short: "Fetch the secret word (commander only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WordResult

			if err := client.Post("/api/v1/rooms/word", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameEmojisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "emojis <emoji>...",
		Short: "Broadcast emoji clues (commander only)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{"emojis": args}
			if err := client.Post("/api/v1/rooms/emojis", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Emojis sent")
			return nil
		},
	}
}

func newGameGuessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guess <word>",
		Short: "Submit a guess for the round's word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"guess": args[0]}
			var result CheckedWordResult

			if err := client.Post("/api/v1/rooms/guess", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Close the round and show the leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoundResults

			if err := client.Post("/api/v1/rooms/results", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
