package cli

import (
	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room lifecycle commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var name, category string
	var rounds, duration int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"name":           name,
				"category":       category,
				"rounds":         rounds,
				"round_duration": duration,
			}
			var result Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Room name (required)")
	cmd.Flags().StringVar(&category, "category", "", "Word category (required)")
	cmd.Flags().IntVar(&rounds, "rounds", 10, "Number of rounds (10-30)")
	cmd.Flags().IntVar(&duration, "duration", 30, "Round duration in seconds (15-45)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room

			if err := client.Post("/api/v1/rooms/"+args[0]+"/join", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the current room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/rooms/leave", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left the room")
			return nil
		},
	}
}
