package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jtoledano/organizer/internal/api"
	"github.com/jtoledano/organizer/internal/config"
	"github.com/jtoledano/organizer/internal/logger"
	"github.com/jtoledano/organizer/internal/prefs"
	"github.com/jtoledano/organizer/internal/session"
	"github.com/jtoledano/organizer/internal/store"
	"github.com/jtoledano/organizer/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// app bundles everything the commands share
type app struct {
	cfg     *config.Config
	prefs   *prefs.Store
	client  *api.Client
	session *session.Store
	cache   *store.Cache
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger.Init(os.Stderr, cfg.LogLevel, cfg.LogJSON)

	p, err := prefs.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening preferences: %w", err)
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)
	sess := session.New(client, p)
	cache := store.New(client)

	return &app{
		cfg:     cfg,
		prefs:   p,
		client:  client,
		session: sess,
		cache:   cache,
	}, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.prefs.Close()

	model := ui.NewApp(a.session, a.cache, a.prefs)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.prefs.Close()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email == "" || password == "" {
		return fmt.Errorf("both --email and --password are required")
	}

	user, err := a.session.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %s", a.session.LastError())
	}
	fmt.Printf("Signed in as %s\n", user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.prefs.Close()

	a.session.Bootstrap(cmd.Context())
	a.session.Logout(cmd.Context())
	fmt.Println("Signed out")
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "organizer",
		Short:         "Terminal client for the organizer task service",
		Long:          "A terminal UI for managing tasks: list, Kanban board, weekly planner and Eisenhower matrix.",
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE:  runLogin,
	}
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and discard the stored session",
		RunE:  runLogout,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("organizer %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
