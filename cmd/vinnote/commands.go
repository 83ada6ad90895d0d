package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jrsteele09/vinnote-client/feed"
	"github.com/jrsteele09/vinnote-client/internal/config"
	"github.com/jrsteele09/vinnote-client/internal/errors"
	"github.com/jrsteele09/vinnote-client/internal/tui"
	"github.com/jrsteele09/vinnote-client/session"
	"github.com/jrsteele09/vinnote-client/users"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile    string
	configFile string
	noBanner   bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	var a *app

	root := &cobra.Command{
		Use:           "vinnote",
		Short:         "VinNote wine tasting client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "env" {
				return nil
			}
			var err error
			a, err = newApp(flags.envFile, flags.configFile)
			if err != nil {
				return err
			}
			if !flags.noBanner {
				displayAppname(a.config.GetAppName())
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "YAML config file, environment variables override it")
	root.PersistentFlags().BoolVar(&flags.noBanner, "no-banner", false, "skip the start up banner")

	appFn := func() *app { return a }
	root.AddCommand(
		newLoginCommand(appFn),
		newRegisterCommand(appFn),
		newLogoutCommand(appFn),
		newWhoamiCommand(appFn),
		newFeedCommand(appFn),
		newOnboardingCommand(appFn),
		newEnvCommand(),
	)
	return root
}

func newLoginCommand(a func() *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("VINNOTE_PASSWORD")
			}
			return printResult(cmd, a().session.Login(cmd.Context(), strings.TrimSpace(email), password))
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account e-mail")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password, defaults to $VINNOTE_PASSWORD")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(a func() *app) *cobra.Command {
	var form users.RegistrationForm
	var userType string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			form.UserType = users.UserType(strings.ToUpper(userType))
			return printResult(cmd, a().session.SubmitRegistration(cmd.Context(), form))
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "account e-mail")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "password, at least 6 characters")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password again")
	cmd.Flags().StringVar(&userType, "type", string(users.Enthusiast), "SOMMELIER or ENTHUSIAST")
	return cmd
}

func newLogoutCommand(a func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear stored credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a().session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCommand(a func() *app) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if offline {
				u, err := a().session.CachedUser(cmd.Context())
				if err != nil {
					return err
				}
				if u == nil {
					return errors.New("no cached profile")
				}
				printProfile(cmd, u)
				return nil
			}

			if err := a().requireSession(cmd.Context()); err != nil {
				return err
			}
			printProfile(cmd, a().session.State().User)
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "print the cached profile without contacting the server")
	return cmd
}

func newFeedCommand(a func() *app) *cobra.Command {
	var interactive, mock bool
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the tasting feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !mock {
				if err := a().requireSession(cmd.Context()); err != nil {
					return err
				}
			}
			feedSync, err := a().newFeed(mock)
			if err != nil {
				return err
			}

			if interactive {
				_, err := tea.NewProgram(tui.NewFeedView(cmd.Context(), feedSync), tea.WithAltScreen()).Run()
				return err
			}
			return printFeed(cmd, feedSync)
		},
	}
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the feed in the terminal UI")
	cmd.Flags().BoolVar(&mock, "mock", false, "serve the seed file instead of calling the server")
	return cmd
}

func newOnboardingCommand(a func() *app) *cobra.Command {
	var done bool
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show or complete the onboarding flag",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if done {
				if err := a().session.CompleteOnboarding(cmd.Context()); err != nil {
					return err
				}
			}
			ok, err := a().session.OnboardingDone(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Onboarding done: %t\n", ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&done, "done", false, "mark onboarding as completed")
	return cmd
}

func newEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List supported environment variables",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), config.Usage())
		},
	}
}

func printResult(cmd *cobra.Command, res session.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	if res.User == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Welcome.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s.\n", res.User.Name)
	return nil
}

func printProfile(cmd *cobra.Command, u *users.Profile) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(out, "Type: %s\n", u.UserType)
	if u.IsVerified() {
		fmt.Fprintln(out, "Verified")
	}
	if joined := u.Joined(); !joined.IsZero() {
		fmt.Fprintf(out, "Joined: %s\n", joined.Format("2 Jan 2006"))
	}
}

func printFeed(cmd *cobra.Command, feedSync *feed.Synchronizer) error {
	feedSync.LoadFeed(cmd.Context())

	st := feedSync.State()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tui.Header("Feed"))
	for _, t := range st.Items {
		line := fmt.Sprintf("%s  ♥ %d  %d comments", t.ID, t.LikeCount, t.CommentCount)
		if t.Score != nil {
			line += fmt.Sprintf("  %d pts", *t.Score)
		}
		if t.Comment != nil {
			line += "  " + *t.Comment
		}
		fmt.Fprintln(out, line)
	}
	if st.Error != "" {
		return errors.New(st.Error)
	}
	return nil
}
