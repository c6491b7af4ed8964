package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/session"
)

var errNotLoggedIn = errors.New("not logged in")

// profileFlags binds the editable profile fields to flags. Only flags the user
// actually set end up in the patch.
type profileFlags struct {
	name, email, location, phone, description, picture string
}

func (f *profileFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Display name")
	fs.StringVar(&f.email, "email", "", "Email address")
	fs.StringVar(&f.location, "location", "", "Location")
	fs.StringVar(&f.phone, "phone", "", "Phone number")
	fs.StringVar(&f.description, "description", "", "Short description")
	fs.StringVar(&f.picture, "picture", "", "Profile picture URL")
}

func (f *profileFlags) patch(fs *pflag.FlagSet) domain.UserPatch {
	var p domain.UserPatch
	set := func(flag string, dst **string, v *string) {
		if fs.Changed(flag) {
			*dst = v
		}
	}
	set("name", &p.Name, &f.name)
	set("email", &p.Email, &f.email)
	set("location", &p.Location, &f.location)
	set("phone", &p.Phone, &f.phone)
	set("description", &p.Description, &f.description)
	set("picture", &p.ProfilePicture, &f.picture)
	return p
}

func newLoginCommand(app *App) *cobra.Command {
	var (
		id, role string
		fields   profileFlags
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session, enriching it from the profile API when --id is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := fields.patch(cmd.Flags())
			if cmd.Flags().Changed("id") {
				patch.ID = &id
			}
			if cmd.Flags().Changed("role") {
				r, err := domain.ParseRole(role)
				if err != nil {
					return err
				}
				patch.Role = &r
			}
			return app.run(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				s.Login(ctx, patch)
				return app.print(s.State())
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "User id known to the profile API")
	cmd.Flags().StringVar(&role, "role", "", "Role: Engineer|Approver|Operations|Admin")
	fields.register(cmd.Flags())
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), func(_ context.Context, s *session.Session) error {
				s.Logout()
				return app.print(s.State())
			})
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), func(_ context.Context, s *session.Session) error {
				return app.print(s.State())
			})
		},
	}
}

func newRoleCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "role <Engineer|Approver|Operations|Admin>",
		Short: "Switch the active role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := domain.ParseRole(args[0])
			if err != nil {
				return err
			}
			return app.run(cmd.Context(), func(_ context.Context, s *session.Session) error {
				if err := s.SetRole(role); err != nil {
					return err
				}
				return app.print(s.State())
			})
		},
	}
}

func newUpdateCommand(app *App) *cobra.Command {
	var fields profileFlags
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Edit the current user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patch := fields.patch(cmd.Flags())
			if patch.IsEmpty() {
				return errors.New("nothing to update, pass at least one field flag")
			}
			return app.run(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				if err := s.UpdateUser(ctx, patch); err != nil {
					return err
				}
				return app.print(s.State())
			})
		},
	}
	fields.register(cmd.Flags())
	return cmd
}

func newRefreshCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload the current user from the profile API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd.Context(), func(ctx context.Context, s *session.Session) error {
				st := s.State()
				if !st.Authenticated || st.User.ID == "" {
					return errNotLoggedIn
				}
				s.RefreshUserData(ctx, st.User.ID)
				return app.print(s.State())
			})
		},
	}
}
