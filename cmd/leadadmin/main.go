// Command leadadmin manages the administrator allow-list and encrypted
// database backups.
//
//	leadadmin add -email owner@example.com -password secret
//	leadadmin remove -email owner@example.com
//	leadadmin list
//	leadadmin backup
//	leadadmin restore -key prod/leadline-20260301T100000Z.db.enc -out restored.db
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dukerupert/leadline/internal/backup"
	"github.com/dukerupert/leadline/internal/config"
	"github.com/dukerupert/leadline/internal/database"
	"github.com/dukerupert/leadline/internal/identity"
	"github.com/dukerupert/leadline/internal/store"
)

const usage = `usage: leadadmin <command> [flags]

commands:
  add -email E -password P   create or update a user and allow-list it
  remove -email E            remove E from the allow-list (the user is kept)
  list                       print the allow-list
  backup                     upload an encrypted snapshot of the database
  backups                    list uploaded snapshots
  restore -key K -out F      download snapshot K and write it to the new file F
  prune -keep N              delete all but the newest N snapshots

backup and restore read the passphrase from -passphrase or
LEADLINE_BACKUP_PASSPHRASE.
`

// backupService is the part of backup.Manager the commands use.
type backupService interface {
	Run(ctx context.Context, passphrase string) (backup.Object, error)
	List(ctx context.Context) ([]backup.Object, error)
	Restore(ctx context.Context, key, passphrase, dst string) error
	Prune(ctx context.Context, keep int) (int, error)
}

type app struct {
	db      *sql.DB
	backups backupService // nil when no bucket is configured
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "leadadmin:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	a := &app{db: db}
	s3cfg := backup.S3Config{
		Endpoint:  cfg.BackupEndpoint,
		Bucket:    cfg.BackupBucket,
		Region:    cfg.BackupRegion,
		AccessKey: cfg.BackupAccessKey,
		SecretKey: cfg.BackupSecretKey,
		Prefix:    cfg.BackupPrefix,
	}
	if s3cfg.Configured() {
		a.backups = backup.NewManager(backup.NewS3Client(s3cfg), s3cfg.Bucket, s3cfg.Prefix, db)
	}

	return dispatch(ctx, a, args, out)
}

func dispatch(ctx context.Context, a *app, args []string, out io.Writer) error {
	db := a.db
	admins := store.NewAdminStore(db)

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		email := fs.String("email", "", "administrator email")
		password := fs.String("password", "", "login password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		provider := identity.NewProvider(store.NewUserStore(db), store.NewSessionStore(db), 0)
		user, err := provider.Register(ctx, *email, *password)
		if err != nil {
			return err
		}
		if err := admins.Add(ctx, user.Email); err != nil {
			return err
		}
		fmt.Fprintf(out, "added %s\n", user.Email)

	case "remove":
		fs := flag.NewFlagSet("remove", flag.ContinueOnError)
		email := fs.String("email", "", "administrator email")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := admins.Remove(ctx, *email); errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%s is not an administrator", *email)
		} else if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %s\n", *email)

	case "list":
		list, err := admins.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "EMAIL\tADDED")
		for _, a := range list {
			fmt.Fprintf(tw, "%s\t%s\n", a.Email, a.CreatedAt.Format("2006-01-02 15:04"))
		}
		return tw.Flush()

	case "backup", "backups", "restore", "prune":
		if a.backups == nil {
			return errors.New("backups are not configured: set LEADLINE_BACKUP_BUCKET and credentials")
		}
		return dispatchBackup(ctx, a.backups, args, out)

	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func dispatchBackup(ctx context.Context, backups backupService, args []string, out io.Writer) error {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	passphrase := fs.String("passphrase", os.Getenv("LEADLINE_BACKUP_PASSPHRASE"), "archive passphrase")
	key := fs.String("key", "", "snapshot key (restore)")
	dst := fs.String("out", "", "file to write (restore)")
	keep := fs.Int("keep", 7, "snapshots to keep (prune)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch args[0] {
	case "backup":
		if *passphrase == "" {
			return errors.New("a passphrase is required")
		}
		obj, err := backups.Run(ctx, *passphrase)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "uploaded %s (%d bytes)\n", obj.Key, obj.Size)

	case "backups":
		list, err := backups.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSIZE\tCREATED")
		for _, o := range list {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Key, o.Size, o.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()

	case "restore":
		if *key == "" || *dst == "" {
			return errors.New("restore needs -key and -out")
		}
		if err := backups.Restore(ctx, *key, *passphrase, *dst); err != nil {
			return err
		}
		fmt.Fprintf(out, "restored %s to %s\n", *key, *dst)

	case "prune":
		n, err := backups.Prune(ctx, *keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d snapshots\n", n)
	}
	return nil
}
