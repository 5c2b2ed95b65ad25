package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"fieldbot/internal/auth"
	"fieldbot/internal/bus"
	"fieldbot/internal/channel"
	"fieldbot/internal/engine"
	"fieldbot/internal/store"
)

func chatCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			return runChat(email)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "agent email to chat as")
	return cmd
}

func runChat(email string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.Database.AutoSeed {
		seed, err := store.LoadSeedFile(cfg.Database.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}
		if err := st.Seed(ctx, seed); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	agent, err := st.AgentByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("no agent with email %s", email)
	}

	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(agent.PasswordHash, strings.TrimSpace(password)) {
		return fmt.Errorf("invalid credentials")
	}

	fmt.Fprintf(os.Stderr, "Logged in as %s.\n", agent.Name)

	eng := engine.New(engine.Config{
		Store:     st,
		Exchanges: st,
		Logger:    logger,
	})
	dispatcher := bus.New(eng, logger)
	defer dispatcher.Close()

	cli := channel.NewCLI(channel.CLIConfig{
		AgentID: agent.ID,
		Logger:  logger,
		In:      reader,
	})
	return cli.Start(ctx, dispatcher)
}
