package migrations

import _ "embed"

//go:embed 20251001000001_create_core_tables.up.sql
var createCoreTablesSQL string

//go:embed 20251001000001_create_core_tables.down.sql
var dropCoreTablesSQL string

func init() {
	Migrations.MustRegister(execSQL(createCoreTablesSQL), execSQL(dropCoreTablesSQL))
}
