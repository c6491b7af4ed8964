// Package cli implements portalctl, a terminal front end for the session
// container. Each command restores the saved session, runs, then waits for
// pending snapshot writes before returning.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
	"github.com/ecsetu/portal/internal/core/session"
	redisdb "github.com/ecsetu/portal/internal/infrastructure/db/redis"
	"github.com/ecsetu/portal/internal/infrastructure/profileclient"
	"github.com/ecsetu/portal/internal/infrastructure/queue"
	"github.com/ecsetu/portal/internal/infrastructure/storage/file"
	"github.com/ecsetu/portal/internal/infrastructure/storage/memory"
	"github.com/ecsetu/portal/internal/pkg/config"
)

const flushTimeout = 10 * time.Second

// App carries what every command needs.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Out    io.Writer
	// Store, when set, replaces the store selected by PORTAL_STORE.
	Store ports.SnapshotStore
	// Profiles, when set, replaces the HTTP profile client.
	Profiles ports.ProfileClient

	format string
}

// NewRootCommand assembles the portalctl command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Manage the local EC-SETU portal session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&app.Config.Client.APIURL, "api-url", app.Config.Client.APIURL, "Base URL of the profile API (env PORTAL_API_URL)")
	root.PersistentFlags().StringVar(&app.Config.Client.Store, "store", app.Config.Client.Store, "Session store: file|memory|redis (env PORTAL_STORE)")
	root.PersistentFlags().StringVar(&app.format, "out", "text", "Output format: text|json")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newRoleCommand(app),
		newUpdateCommand(app),
		newRefreshCommand(app),
	)
	return root
}

// run restores a session, hands it to fn and drains the snapshot queue.
func (a *App) run(ctx context.Context, fn func(ctx context.Context, s *session.Session) error) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	q := queue.NewSnapshotQueue(store, a.Log)
	q.Start(ctx)
	defer q.Close()

	profiles := a.Profiles
	if profiles == nil {
		profiles = profileclient.New(a.Config.Client.APIURL, nil)
	}

	s := session.New(profiles, q, a.Log)
	s.Restore(ctx)
	<-s.Ready()
	s.Wait()

	runErr := fn(ctx, s)

	s.Wait()
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	if err := q.Flush(flushCtx); err != nil {
		a.Log.Warn().Err(err).Msg("session state may not be saved")
	}
	return runErr
}

func (a *App) openStore(ctx context.Context) (ports.SnapshotStore, func(), error) {
	if a.Store != nil {
		return a.Store, func() {}, nil
	}

	cc := a.Config.Client
	switch cc.Store {
	case "file", "":
		return file.New(cc.StatePath()), func() {}, nil
	case "memory":
		return memory.New(cc.StateKey), func() {}, nil
	case "redis":
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     a.Config.Redis.Addr,
			Password: a.Config.Redis.Password,
			DB:       a.Config.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		return redisdb.NewSnapshotStore(client, cc.StateKey), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q (want file, memory or redis)", cc.Store)
	}
}

type stateView struct {
	Authenticated bool        `json:"isAuthenticated"`
	Role          domain.Role `json:"currentRole"`
	User          domain.User `json:"currentUser"`
}

func (a *App) print(st session.State) error {
	if a.format == "json" {
		b, err := json.MarshalIndent(stateView{Authenticated: st.Authenticated, Role: st.Role, User: st.User}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.Out, string(b))
		return err
	}

	if !st.Authenticated {
		_, err := fmt.Fprintln(a.Out, "not logged in")
		return err
	}
	u := st.User
	fmt.Fprintf(a.Out, "user:  %s <%s>\n", u.Name, u.Email)
	if u.ID != "" {
		fmt.Fprintf(a.Out, "id:    %s\n", u.ID)
	}
	fmt.Fprintf(a.Out, "role:  %s\n", st.Role)
	for _, f := range []struct{ label, value string }{
		{"location", u.Location},
		{"phone", u.Phone},
		{"about", u.Description},
	} {
		if f.value != "" {
			fmt.Fprintf(a.Out, "%s: %s\n", f.label, f.value)
		}
	}
	return nil
}
