package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tempo/internal/auth"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign in, sign out and manage your account",
	}

	cmd.AddCommand(
		newAuthSignUpCmd(app),
		newAuthSignInCmd(app),
		newAuthGoogleCmd(app),
		newAuthSignOutCmd(app),
		newAuthWhoAmICmd(app),
		newAuthResetPasswordCmd(app),
		newAuthConfirmResetCmd(app),
		newAuthProfileCmd(app),
	)

	return cmd
}

func printSignedIn(cmd *cobra.Command, p *auth.Principal) {
	name := domain.CoalesceStr(p.Name, p.Email)
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", formatter.Bold(name), p.Email)
}

func newAuthSignUpCmd(app *App) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account with e-mail and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(app, cmd, "Password: ")
			if err != nil {
				return err
			}
			p, err := app.Auth.SignUp(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			printSignedIn(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "E-mail address")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthSignInCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in with e-mail and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			switch {
			case email == "" && app.interactive():
				if err := signInForm(&email, &password).Run(); err != nil {
					return err
				}
			case email == "":
				return fmt.Errorf("--email is required")
			default:
				var err error
				if password, err = readSecret(app, cmd, "Password: "); err != nil {
					return err
				}
			}

			p, err := app.Auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printSignedIn(cmd, p)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "E-mail address (prompted when omitted)")

	return cmd
}

func newAuthGoogleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "google",
		Short: "Sign in with Google in the browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Waiting for Google sign-in...")
				defer stop()
			}
			p, err := app.Auth.SignInWithGoogle(cmd.Context())
			if err != nil {
				return err
			}
			printSignedIn(cmd, p)
			return nil
		},
	}
}

func newAuthSignOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newAuthWhoAmICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"Name", formatter.Bold(u.Name)},
				{"E-mail", u.Email},
				{"Provider", string(u.Provider)},
				{"Since", formatter.LongDate(u.CreatedAt.In(app.location()), app.Locale)},
			}
			if u.Image != "" {
				rows = append(rows, []string{"Image", formatter.Dim(u.Image)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderBox("Account", formatter.RenderTable(headers, rows)))
			return nil
		},
	}
}

func newAuthResetPasswordCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Issue a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := app.Auth.SendPasswordReset(cmd.Context(), email)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Reset token: %s\n", formatter.Bold(token))
			fmt.Fprintln(out, formatter.Dim("Run `tempo auth confirm-reset --token <token>` within one hour."))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "E-mail address of the account")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthConfirmResetCmd(app *App) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "confirm-reset",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(app, cmd, "New password: ")
			if err != nil {
				return err
			}
			if err := app.Auth.ConfirmPasswordReset(cmd.Context(), strings.TrimSpace(token), password); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password updated. Sign in with `tempo auth signin`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Token from reset-password")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newAuthProfileCmd(app *App) *cobra.Command {
	var req service.ProfileUpdate

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update your name, e-mail or avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if req.Email != "" {
				u, err := app.Auth.CurrentUser(ctx)
				if err != nil {
					return err
				}
				if u.Provider == domain.ProviderPassword && !strings.EqualFold(strings.TrimSpace(req.Email), u.Email) {
					if req.CurrentPassword, err = readSecret(app, cmd, "Current password: "); err != nil {
						return err
					}
				}
			}
			u, err := app.Auth.UpdateProfile(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated: %s <%s>\n", formatter.Bold(u.Name), u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "New display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "New e-mail address (asks for your password)")
	cmd.Flags().StringVar(&req.Image, "image", "", "Avatar URL")

	return cmd
}
