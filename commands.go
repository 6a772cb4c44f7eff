package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/distgeniusmadlabs/labassistant/config"
	"github.com/distgeniusmadlabs/labassistant/db"
	"github.com/distgeniusmadlabs/labassistant/schedule"
)

// loadConfig applies the --db and --driver flags over the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if path, _ := cmd.Flags().GetString("db"); path != "" {
		cfg.DBPath = path
	}
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.DBDriver = driver
	}
	return cfg, nil
}

func openDatabase(cfg config.Config) (*db.Database, error) {
	database, err := db.InitDatabase(db.Config{Driver: cfg.DBDriver, Path: cfg.DBPath})
	if err != nil {
		return nil, fmt.Errorf("failed to open schedule database: %w", err)
	}
	return database, nil
}

// scheduleCmd adapts a schedule operation into a cobra RunE that prints
// the resulting message.
func scheduleCmd(run func(d *db.Database, args []string) (string, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		msg, err := run(database, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgGreen).Sprint(msg))
		return nil
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the schedule tables if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			database, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Schedule database ready at %s\n", color.New(color.FgCyan).Sprint(database.Path()))
			return nil
		},
	}
}

func addGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addgame [name...]",
		Short: "Start tracking a game",
		Args:  cobra.MinimumNArgs(1),
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			return schedule.AddGame(d, strings.Join(args, " "))
		}),
	}
}

func setGameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setgame [name]",
		Short: "Mark a tracked game as the current game",
		Args:  cobra.ExactArgs(1),
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			return schedule.SetCurrent(d, args[0])
		}),
	}
}

func addStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addstream [game] [title] [MM-DD-YY HH:MM]",
		Short: "Schedule a stream; pass \"\" as the game to use the current game",
		Args:  cobra.RangeArgs(1, 3),
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			padded := make([]string, 3)
			copy(padded, args)
			return schedule.AddStream(d, padded[0], padded[1], padded[2])
		}),
	}
}

func nextStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nextstream",
		Short: "Show the scheduled stream with the latest date",
		Args:  cobra.NoArgs,
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			return schedule.NextStream(d)
		}),
	}
}

func streamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streams",
		Short: "List scheduled streams",
		Args:  cobra.NoArgs,
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			return schedule.ListStreams(d)
		}),
	}
}

func startStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [stream-id]",
		Short: "Mark a scheduled stream as live",
		Args:  cobra.ExactArgs(1),
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			streamId, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("invalid stream id %q", args[0])
			}
			return schedule.StartStream(d, streamId)
		}),
	}
}

func stopStreamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop [stream-id]",
		Short: "Mark the live stream as finished",
		Args:  cobra.ExactArgs(1),
		RunE: scheduleCmd(func(d *db.Database, args []string) (string, error) {
			streamId, err := strconv.Atoi(args[0])
			if err != nil {
				return "", fmt.Errorf("invalid stream id %q", args[0])
			}
			return schedule.StopStream(d, streamId)
		}),
	}
}
