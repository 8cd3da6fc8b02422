package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aviravastra/storefront/internal/credentials"
	"github.com/aviravastra/storefront/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var credential string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a Google identity credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Auth.GoogleAuth(cmd.Context(), credential)
			if err != nil {
				return fmt.Errorf("google login failed: %w", err)
			}
			if err := a.session.Login(res.User, res.Token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", res.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&credential, "credential", "", "Google credential (JWT)")
	_ = cmd.MarkFlagRequired("credential")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the customer session",
		Long: `Sign out of the customer session.

With --reset the whole state file is removed: both sessions and the cart.
Use it when the file is unreadable and every login fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset {
				if err := a.store.Reset(); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Signed out and removed %s\n", a.store.Path())
				return nil
			}

			if err := a.session.Logout(); err != nil {
				if errors.Is(err, credentials.ErrCorrupt) {
					return fmt.Errorf("%w (run: storefront logout --reset)", err)
				}
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "remove all local state, including a corrupt state file")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in customer and admin sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			fmt.Fprintf(a.out, "api: %s\n", a.client.BaseURL())

			state, err := a.session.Current()
			switch {
			case errors.Is(err, session.ErrNotLoggedIn):
				fmt.Fprintln(a.out, "customer: not signed in")
			case err != nil:
				return err
			default:
				fmt.Fprintf(a.out, "customer: %s (%s) token %s\n", state.User.Name, state.User.Email, session.CheckTokenStatus(*state.Token, now))
			}

			token, err := a.session.AdminToken()
			switch {
			case errors.Is(err, session.ErrNotLoggedIn):
				fmt.Fprintln(a.out, "admin: not signed in")
			case err != nil:
				return err
			default:
				status := session.CheckTokenStatus(token, now)
				if claims, err := session.ParseClaims(token); err == nil && claims.Email != "" {
					fmt.Fprintf(a.out, "admin: %s token %s\n", claims.Email, status)
				} else {
					fmt.Fprintf(a.out, "admin: token %s\n", status)
				}
			}

			if remote {
				user, err := a.svc.Auth.Me(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "server: %s (%s)\n", user.Name, user.Email)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also ask the server who the customer token belongs to")
	return cmd
}
