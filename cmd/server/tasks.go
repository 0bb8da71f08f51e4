package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/client"
	"github.com/diewo77/go-stages/internal/db"
	"github.com/diewo77/go-stages/internal/models"
	"github.com/diewo77/go-stages/internal/notify"
	"github.com/spf13/cobra"
)

func newMigrateCmd(e *env) *cobra.Command {
	var sqlFiles bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sqlFiles {
				if e.cfg.Database.Driver == "sqlite" {
					return fmt.Errorf("--sql requires the postgres driver")
				}
				if err := db.MigrateSQL(db.ToURLDSN(db.NormalizeDSN(e.cfg.Database.DSN()))); err != nil {
					return err
				}
			} else {
				gdb, err := e.openDB()
				if err != nil {
					return err
				}
				defer e.closeDB(gdb)
				if err := db.Migrate(gdb); err != nil {
					return err
				}
			}
			e.log.Info("migrations completed", "sql", sqlFiles)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sqlFiles, "sql", false, "apply the versioned SQL migrations instead of AutoMigrate")
	return cmd
}

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed profiles and demo data, then print a bearer token per demo user",
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := e.openDB()
			if err != nil {
				return err
			}
			defer e.closeDB(gdb)
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			demo, err := db.Seed(gdb)
			if err != nil {
				return err
			}
			users := make([]models.User, 0, len(demo.Users))
			for _, u := range demo.Users {
				users = append(users, u)
			}
			sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tROLE\tEMAIL\tTOKEN")
			for _, u := range users {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Role, u.Email, auth.Token(u.ID))
			}
			fmt.Fprintf(tw, "\nentente %d, candidature %d\n", demo.Entente.ID, demo.Candidature.ID)
			return tw.Flush()
		},
	}
}

func newNotificationsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Client-side notification tools",
	}

	var (
		baseURL string
		token   string
		lang    string
	)
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the unread notifications of a user whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = os.Getenv("STAGES_TOKEN")
			}
			if token == "" {
				return fmt.Errorf("--token or STAGES_TOKEN is required")
			}
			c := client.New(baseURL, token)
			c.Lang = lang
			out := cmd.OutOrStdout()
			d := notify.NewDeduplicator(c,
				notify.WithInterval(e.cfg.Notifications.RefreshInterval),
				notify.WithLogger(e.log),
				notify.OnChange(func(list []models.Notification) {
					fmt.Fprintf(out, "%d unread\n", len(list))
					for _, n := range list {
						fmt.Fprintf(out, "  #%d %s %v\n", n.ID, n.Cle, map[string]string(n.Params))
					}
				}),
			)
			if err := d.Run(cmd.Context()); err != nil && cmd.Context().Err() == nil {
				return err
			}
			return nil
		},
	}
	watch.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "API base URL")
	watch.Flags().StringVar(&token, "token", "", "bearer token (default: STAGES_TOKEN)")
	watch.Flags().StringVar(&lang, "lang", "", "message language")

	cmd.AddCommand(watch)
	return cmd
}
