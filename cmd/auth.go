package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagEmail    string
	flagPassword string
	flagName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&flagEmail, "email", "", "Account email")
		c.Flags().StringVar(&flagPassword, "password", "", "Account password (prompted when empty)")
	}
	registerCmd.Flags().StringVar(&flagName, "name", "", "Display name")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	creds := model.Credentials{Email: flagEmail, Password: flagPassword}
	if creds.Email == "" || creds.Password == "" {
		if err := credentialsForm(&creds); err != nil {
			return err
		}
	}

	u, err := a.session.Login(ctx, creds)
	if err != nil {
		return err
	}
	fmt.Printf("  Signed in as %s <%s>\n", u.Name, u.Email)
	return nil
}

func runRegister(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	reg := model.Registration{Name: flagName, Email: flagEmail, Password: flagPassword}
	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		if err := registrationForm(&reg); err != nil {
			return err
		}
	}

	u, err := a.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Printf("  Welcome, %s! You are signed in.\n", u.Name)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.Logout()
	fmt.Println("  Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	u, _ := a.session.User()
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Name", u.Name},
			{"Email", u.Email},
			{"ID", u.ID},
			{"Server", a.client.BaseURL()},
		},
		LeftCols: 2,
	}))
	return nil
}
