package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustline/arena/internal/combat"
	"github.com/dustline/arena/internal/database"
	"github.com/dustline/arena/internal/scoreboard"
	"github.com/dustline/arena/internal/storage"
	"github.com/dustline/arena/pkg/core"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func teamOf(code string) scoreboard.TeamOf {
	return func(name string) core.Team {
		return combat.TeamFor(code, name)
	}
}

func printStandings(w io.Writer, backend storage.Backend, code string) error {
	m, err := backend.GetMatch(code)
	if err != nil {
		return fmt.Errorf("match %s: %w", code, err)
	}
	kills, err := backend.ListKills(code)
	if err != nil {
		return err
	}
	writeStandings(w, m, scoreboard.Compute(kills, teamOf(code)))
	return nil
}

func writeStandings(w io.Writer, m core.MatchRecord, s scoreboard.Standings) {
	fmt.Fprintf(w, "%s (%s) %s on %s, %s\n", m.Name, m.Code, m.Mode, m.Map, m.Status)
	fmt.Fprintf(w, "%s %d - %d %s", core.TeamAlpha, s.Teams[core.TeamAlpha], s.Teams[core.TeamBravo], core.TeamBravo)
	if m.ScoreLimit > 0 {
		fmt.Fprintf(w, " (limit %d)", m.ScoreLimit)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tTEAM\tK\tD\tHS\tTK\tK/D")
	for _, p := range s.Players {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.2f\n", p.Name, p.Team, p.Kills, p.Deaths, p.Headshots, p.TeamKills, p.Ratio())
	}
	tw.Flush()
}

func printKills(w io.Writer, backend storage.Backend, code string) error {
	kills, err := backend.ListKills(code)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tATTACKER\tVICTIM\tWEAPON\tHEADSHOT")
	for _, k := range kills {
		attacker := k.AttackerName
		if attacker == "" {
			attacker = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", k.CreatedAt.UTC().Format(time.TimeOnly), attacker, k.VictimName, k.Weapon, k.Headshot)
	}
	return tw.Flush()
}

// exportMatch builds the export of a stored match. The end time is the last
// recorded event.
func exportMatch(backend storage.Backend, code, dir string, compress bool) (string, error) {
	m, err := backend.GetMatch(code)
	if err != nil {
		return "", fmt.Errorf("match %s: %w", code, err)
	}
	kills, err := backend.ListKills(code)
	if err != nil {
		return "", err
	}
	samples, err := backend.ListPresence(code)
	if err != nil {
		return "", err
	}

	endedAt := m.CreatedAt
	names := make(map[string]bool)
	for _, k := range kills {
		if k.CreatedAt.After(endedAt) {
			endedAt = k.CreatedAt
		}
		names[k.AttackerName] = true
		names[k.VictimName] = true
	}
	for _, s := range samples {
		if s.Time.After(endedAt) {
			endedAt = s.Time
		}
		names[s.Snapshot.Name] = true
	}

	var loadouts []core.LoadoutRecord
	for name := range names {
		if name == "" {
			continue
		}
		if l, err := backend.GetLoadout(name); err == nil {
			loadouts = append(loadouts, l)
		}
	}

	return storage.WriteExport(dir, compress, storage.BuildExport(m, endedAt, kills, samples, loadouts))
}

func showExport(w io.Writer, path string) error {
	export, err := storage.ReadExport(path)
	if err != nil {
		return err
	}
	writeStandings(w, export.Match, scoreboard.Compute(export.Kills, teamOf(export.Match.Code)))
	fmt.Fprintf(w, "%d presence samples, %.0fs\n", len(export.Presence), export.DurationSecs)
	return nil
}

// mergeBackups merges every sqlite backup in dir into db and renames the
// merged files so they are not merged twice.
func mergeBackups(log zerolog.Logger, db *gorm.DB, dir string) error {
	paths, err := database.GetBackupDBPaths(dir)
	if err != nil {
		return fmt.Errorf("error getting backup database paths: %w", err)
	}

	merged := 0
	for _, path := range paths {
		src, err := database.GetSqliteDBStandalone(path)
		if err != nil {
			return fmt.Errorf("error opening %s: %w", path, err)
		}
		counts, err := database.MergeBackup(src, db)
		if sqlDB, dbErr := src.DB(); dbErr == nil {
			sqlDB.Close()
		}
		if err != nil {
			return fmt.Errorf("error merging %s: %w", path, err)
		}

		log.Info().Str("path", path).
			Int("matches", counts.Matches).
			Int("kills", counts.Kills).
			Int("presence", counts.Presence).
			Msg("Merged backup")
		if err := os.Rename(path, path+".merged"); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Error renaming merged backup")
		}
		merged++
	}

	log.Info().Int("count", merged).Msg("Finished merging backups")
	return nil
}
