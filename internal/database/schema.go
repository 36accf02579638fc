package database

import "embed"

// SchemaVersion is the schema version this binary was built against. It is
// compared against the catalog's info.schema_version to decide which
// migration_<n>[.sql] files still need to run.
const SchemaVersion = 1

// ProjectVersion is recorded alongside the schema version in the info row.
const ProjectVersion = "dev"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS
