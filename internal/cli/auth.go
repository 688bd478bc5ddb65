package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"salt_portal/internal/model"
	"salt_portal/internal/session"
)

func newLoginCmd(opts *options) *cobra.Command {
	var (
		phone, email, role, code string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a one-time code",
		Long: `Request a verification code for a phone number or email and
exchange it for a session. The code is read from --code or prompted for.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.open(ctx)
			if err != nil {
				return err
			}
			identity := model.Identity{Phone: phone, Email: email}

			res, err := e.ctrl.SignIn(ctx, identity, model.ParseRole(role))
			if err != nil {
				return fmt.Errorf("sign in: %s", describe(err))
			}
			if res.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			}

			if code == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Verification code: ")
				code, err = readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read code: %w", err)
				}
			}

			target, err := e.ctrl.VerifyOTP(ctx, identity, code)
			if err != nil {
				return fmt.Errorf("verify: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Next page: %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&role, "role", "", "LANDOWNER, DISTRIBUTOR, LABORATORY or SALTSOCIETY")
	cmd.Flags().StringVar(&code, "code", "", "verification code (prompted when empty)")
	cmd.MarkFlagsMutuallyExclusive("phone", "email")
	cmd.MarkFlagsOneRequired("phone", "email")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newAdminLoginCmd(opts *options) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "admin-login",
		Short: "Sign in as an administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.open(ctx)
			if err != nil {
				return err
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				password, err = readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}
			target, err := e.ctrl.PasswordLogin(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %s", describe(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Next page: %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

type whoami struct {
	State string      `yaml:"state"`
	User  *model.User `yaml:"user,omitempty"`
	Home  string      `yaml:"home,omitempty"`
}

func newWhoamiCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			snap := e.ctrl.Snapshot()
			out := whoami{State: snap.State().String()}
			if snap.IsAuthenticated && snap.User != nil {
				out.User = snap.User
				out.Home = session.DashboardPath(snap.User.Role)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(out)
		},
	}
}

func newRefreshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the profile; a rejected session is signed out",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.open(ctx)
			if err != nil {
				return err
			}
			if err := e.ctrl.RefreshUser(ctx); err != nil {
				if errors.Is(err, session.ErrInvalidState) {
					return errors.New("not signed in")
				}
				return fmt.Errorf("refresh: %s", describe(err))
			}
			u := e.ctrl.Snapshot().User
			fmt.Fprintf(cmd.OutOrStdout(), "Profile refreshed for %s (%s)\n", u.DisplayName(), u.Role)
			return nil
		},
	}
}

func newLogoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := opts.open(ctx)
			if err != nil {
				return err
			}
			if !e.ctrl.Snapshot().IsAuthenticated {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			}
			e.ctrl.Logout(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// describe pairs the user-facing message with the underlying error.
func describe(err error) string {
	msg := session.UserMessage(err)
	if msg == "" || msg == err.Error() {
		return err.Error()
	}
	return msg + " (" + err.Error() + ")"
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
