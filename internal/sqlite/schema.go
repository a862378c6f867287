package sqlite

// Schema DDL. Every kind shares one table; the kind column keeps the
// namespaces apart.
const (
	createEntities = `CREATE TABLE entities (
    kind TEXT NOT NULL,
    key TEXT NOT NULL,
    attrs TEXT NOT NULL,
    PRIMARY KEY (kind, key)
);`

	idxEntitiesKind = `CREATE INDEX idx_entities_kind ON entities(kind);`
)

// Statements used by namespace.
const (
	selectAttrs = `SELECT attrs FROM entities WHERE kind = ? AND key = ?`
	upsertAttrs = `INSERT INTO entities (kind, key, attrs) VALUES (?, ?, ?)
ON CONFLICT (kind, key) DO UPDATE SET attrs = excluded.attrs`
	deleteEntity = `DELETE FROM entities WHERE kind = ? AND key = ?`
	selectKeys   = `SELECT key FROM entities WHERE kind = ?`
	countKeys    = `SELECT COUNT(*) FROM entities WHERE kind = ?`
)

// schemaDDL lists the statements run on Attach, in order.
var schemaDDL = []string{
	createEntities,
	idxEntitiesKind,
}
