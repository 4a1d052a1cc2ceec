package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benvon/flow/internal/models"
	"github.com/spf13/cobra"
)

func newAuthCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in to the flow backend and manage the account",
	}

	cmd.AddCommand(newCredentialsCmd(opts, "login", "Sign in and print the session token",
		func(ctx context.Context, a *app, username, password string) (models.AuthResult, error) {
			return a.auth.SignIn(ctx, username, password)
		}))
	cmd.AddCommand(newCredentialsCmd(opts, "signup", "Create an account and print the session token",
		func(ctx context.Context, a *app, username, password string) (models.AuthResult, error) {
			return a.auth.SignUp(ctx, username, password)
		}))

	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Invalidate the session token on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if _, err := a.auth.SignOut(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out; remove the token from FLOW_TOKEN or the config file")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				user, err := a.auth.Me(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, timewarrior hook %s)\n", user.Username, user.ID, onOff(user.TimewHook))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "timew-hook <on|off>",
		Short:     "Enable or disable the timewarrior hook for the account",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				got, err := a.auth.SetTimewHook(ctx, enabled)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Timewarrior hook %s\n", onOff(got))
				return nil
			})
		},
	})

	return cmd
}

func newCredentialsCmd(opts *rootOptions, use, short string, authenticate func(ctx context.Context, a *app, username, password string) (models.AuthResult, error)) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = p
			}
			if password == "" {
				return errors.New("password is required")
			}

			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				res, err := authenticate(ctx, a, args[0], password)
				if err != nil {
					return err
				}
				// The token is printed, not persisted; supply it via FLOW_TOKEN or the config file
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", res.User.Username)
				fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", res.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Password (read from stdin when omitted)")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
