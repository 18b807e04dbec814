// Command arenactl inspects matches recorded by arena clients.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustline/arena/internal/config"
	"github.com/dustline/arena/internal/database"
	"github.com/dustline/arena/internal/logging"
	pgstorage "github.com/dustline/arena/internal/storage/postgres"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

const usage = `usage: arenactl [flags] <command> [args]

commands:
  standings <code>     scoreboard of a match
  kills <code>         kill feed of a match, oldest first
  export <code>        write the match export to --out
  show <file>          standings of an export file
  merge <dir>          merge the sqlite backups in dir into the database

flags:
`

func main() {
	configDir := pflag.String("config", ".", "directory containing arena.cfg.json")
	dbPath := pflag.String("db", "", "read a sqlite database file instead of postgres")
	out := pflag.String("out", "./matches", "export output directory")
	compress := pflag.Bool("gzip", true, "gzip exports")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) < 2 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := config.Load(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "using defaults: %v\n", err)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cmd, arg := strings.ToLower(args[0]), args[1]
	if cmd == "show" {
		exit(showExport(os.Stdout, arg))
		return
	}

	db, err := openDB(log, *dbPath)
	if err != nil {
		exit(err)
	}

	if cmd == "merge" {
		exit(mergeBackups(log, db, arg))
		return
	}

	backend := pgstorage.New(pgstorage.Dependencies{DB: db, LogManager: logging.NewSlogManager()})
	if err := backend.Init(); err != nil {
		exit(err)
	}

	switch cmd {
	case "standings":
		err = printStandings(os.Stdout, backend, arg)
	case "kills":
		err = printKills(os.Stdout, backend, arg)
	case "export":
		var path string
		path, err = exportMatch(backend, arg, *out, *compress)
		if err == nil {
			fmt.Println(path)
		}
	default:
		err = fmt.Errorf("unknown command %q", cmd)
	}
	exit(errors.Join(err, backend.Close()))
}

// openDB opens the sqlite file at path, or postgres when path is empty.
func openDB(log zerolog.Logger, path string) (*gorm.DB, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return database.GetSqliteDBStandalone(path)
	}

	m := database.NewManager(log)
	if err := m.Connect(); err != nil {
		return nil, err
	}
	if m.ShouldSaveLocal {
		return nil, fmt.Errorf("postgres is unavailable, pass --db to read a sqlite file")
	}
	return m.DB, nil
}

func exit(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "arenactl: %v\n", err)
		os.Exit(1)
	}
}
