package database

// migrationsSQL contains all database migrations.
// Migrations are applied in order by version number.
var migrationsSQL = map[int]string{
	1: migrationV1Sanctorale,
	2: migrationV2Snapshots,
}

// migrationV1Sanctorale creates the fixed-cycle table.
//
// Ranks and colors are stored as their text keys ("lesser_feast", "red") so
// the table stays readable from the sqlite3 shell.
const migrationV1Sanctorale = `
CREATE TABLE IF NOT EXISTS sanctoral_days (
    id TEXT PRIMARY KEY,
    month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
    -- For moveable entries this is a placeholder; moveable_rule picks the date.
    day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 31),
    name TEXT NOT NULL,
    rank TEXT NOT NULL CHECK (rank IN (
        'commemoration',
        'lesser_feast',
        'apostle',
        'evangelist',
        'feast',
        'principal_feast'
    )),
    color TEXT NOT NULL CHECK (color IN ('white', 'red', 'violet', 'black', 'green')),
    moveable_rule TEXT NOT NULL DEFAULT '',
    proper_id TEXT NOT NULL DEFAULT '',
    is_custom INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    updated_at TEXT NOT NULL DEFAULT (datetime('now')),

    UNIQUE (month, day, name)
);

-- Primary lookup: fixed entries for a month/day
CREATE INDEX IF NOT EXISTS idx_sanctoral_days_month_day
    ON sanctoral_days(month, day);

-- Moveable entries are fetched for the whole month
CREATE INDEX IF NOT EXISTS idx_sanctoral_days_moveable
    ON sanctoral_days(month)
    WHERE moveable_rule <> '';
`

// migrationV2Snapshots creates the tables the snapshot job writes.
//
// Both are derived data: a snapshot for a year can be rebuilt at any time,
// so writes replace whatever is there.
const migrationV2Snapshots = `
CREATE TABLE IF NOT EXISTS holy_days (
    year INTEGER NOT NULL,
    name TEXT NOT NULL,
    date TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('static', 'moveable')),
    created_at TEXT NOT NULL DEFAULT (datetime('now')),

    PRIMARY KEY (year, name)
);

CREATE TABLE IF NOT EXISTS resolved_days (
    date TEXT PRIMARY KEY,
    primary_name TEXT NOT NULL,
    primary_source TEXT NOT NULL CHECK (primary_source IN ('temporal', 'sanctoral')),
    primary_rank TEXT NOT NULL,
    primary_proper_id TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL,
    season TEXT NOT NULL,
    week_of_season INTEGER NOT NULL DEFAULT 0,
    rule TEXT NOT NULL,
    note TEXT NOT NULL DEFAULT '',
    -- JSON array of commemorated observances
    commemorations TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_resolved_days_rank
    ON resolved_days(primary_rank);
`
