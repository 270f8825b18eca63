package store

type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered schema history. Append only.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create forward rules",
		SQL: `
			CREATE TABLE forward_rules (
				id          TEXT PRIMARY KEY,
				origin_id   TEXT NOT NULL,
				destination TEXT NOT NULL,
				show_author INTEGER NOT NULL DEFAULT 1,
				created_at  TEXT NOT NULL DEFAULT (datetime('now')),
				UNIQUE (origin_id, destination)
			);

			CREATE INDEX idx_forward_rules_origin ON forward_rules (origin_id);
		`,
	},
	{
		Version: 2,
		Name:    "track rule removals",
		SQL: `
			CREATE TABLE rule_removals (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				origin_id   TEXT NOT NULL,
				destination TEXT NOT NULL,
				reason      TEXT NOT NULL DEFAULT '',
				removed_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_rule_removals_origin ON rule_removals (origin_id, id);
		`,
	},
}
