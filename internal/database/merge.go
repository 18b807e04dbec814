package database

import (
	"fmt"

	"github.com/dustline/arena/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MergeCounts reports how many rows of each table a merge read.
type MergeCounts struct {
	Matches  int
	Loadouts int
	Kills    int
	Presence int
}

// MergeBackup copies a local backup database into dst in one transaction.
// Matches and loadouts already in dst win; kills and presence samples get
// fresh IDs.
func MergeBackup(src, dst *gorm.DB) (MergeCounts, error) {
	var counts MergeCounts
	if err := Migrate(dst); err != nil {
		return counts, err
	}

	err := dst.Transaction(func(tx *gorm.DB) error {
		var err error
		counts.Matches, err = mergeTable(src, tx, func(m *model.Match) { m.ID = 0 },
			clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true})
		if err != nil {
			return fmt.Errorf("error merging matches: %w", err)
		}
		counts.Loadouts, err = mergeTable(src, tx, func(*model.Loadout) {},
			clause.OnConflict{DoNothing: true})
		if err != nil {
			return fmt.Errorf("error merging loadouts: %w", err)
		}
		counts.Kills, err = mergeTable(src, tx, func(k *model.Kill) { k.ID = 0 },
			clause.OnConflict{DoNothing: true})
		if err != nil {
			return fmt.Errorf("error merging kills: %w", err)
		}
		counts.Presence, err = mergeTable(src, tx, func(p *model.PresenceSample) { p.ID = 0 },
			clause.OnConflict{DoNothing: true})
		if err != nil {
			return fmt.Errorf("error merging presence samples: %w", err)
		}
		return nil
	})
	return counts, err
}

func mergeTable[M any](src, tx *gorm.DB, reset func(*M), conflict clause.OnConflict) (int, error) {
	var rows []M
	if err := src.Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	for i := range rows {
		reset(&rows[i])
	}
	if err := tx.Clauses(conflict).CreateInBatches(&rows, 1000).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}
