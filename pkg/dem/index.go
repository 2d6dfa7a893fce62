/*****************************************************************************************************************/

//	@package	github.com/terrainscope/terrainscope/pkg/dem

/*****************************************************************************************************************/

package dem

/*****************************************************************************************************************/

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*****************************************************************************************************************/

// missingCell is the gorm model backing TileIndex: a whole-degree cell
// known to have no DTED tile on disk, so later lookups can skip the
// filesystem entirely instead of re-stat'ing a directory of files.
type missingCell struct {
	LatFloor int `gorm:"primaryKey;autoIncrement:false"`
	LonFloor int `gorm:"primaryKey;autoIncrement:false"`
}

/*****************************************************************************************************************/

// TileIndex persists the set of known-missing DEM cells across renders of
// the same terrain folder, mirroring the query-backend-wrapping shape of a
// catalog service: callers ask a yes/no question and the index answers it
// from SQLite instead of the filesystem.
type TileIndex struct {
	db *gorm.DB
}

/*****************************************************************************************************************/

// OpenTileIndex opens (creating if necessary) a SQLite-backed tile index at
// path. Use ":memory:" for a process-local, non-persistent index.
func OpenTileIndex(path string) (*TileIndex, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&missingCell{}); err != nil {
		return nil, err
	}
	return &TileIndex{db: db}, nil
}

/*****************************************************************************************************************/

// IsKnownMissing reports whether (latFloor, lonFloor) was previously marked
// as having no tile on disk.
func (idx *TileIndex) IsKnownMissing(latFloor, lonFloor int) bool {
	var count int64
	idx.db.Model(&missingCell{}).
		Where("lat_floor = ? AND lon_floor = ?", latFloor, lonFloor).
		Count(&count)
	return count > 0
}

/*****************************************************************************************************************/

// MarkMissing records that (latFloor, lonFloor) has no tile on disk.
func (idx *TileIndex) MarkMissing(latFloor, lonFloor int) {
	// Best-effort: a duplicate insert from a racing lookup is harmless and
	// its error is intentionally discarded.
	idx.db.Create(&missingCell{LatFloor: latFloor, LonFloor: lonFloor})
}

/*****************************************************************************************************************/

// Close releases the underlying database handle.
func (idx *TileIndex) Close() error {
	sqlDB, err := idx.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
