package migrations

// At most one in-progress attempt per (student, quiz).
const createOpenAttemptIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS uq_quiz_attempts_open
    ON quiz_attempts (student_id, quiz_id)
    WHERE status = 'in_progress'`

const dropOpenAttemptIndexSQL = `DROP INDEX IF EXISTS uq_quiz_attempts_open`

func init() {
	Migrations.MustRegister(execSQL(createOpenAttemptIndexSQL), execSQL(dropOpenAttemptIndexSQL))
}
