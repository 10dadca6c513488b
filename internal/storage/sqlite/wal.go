package sqlite

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// walFiles names a database file and the journal files WAL mode keeps next to it.
type walFiles struct {
	db  string
	shm string
	wal string
}

// walFilesFor resolves the files behind dsn. Both plain paths and file: URIs
// are accepted, with any ?query stripped. ok is false for in-memory
// databases, which have nothing on disk to recover.
func walFilesFor(dsn string) (walFiles, bool) {
	path := strings.TrimPrefix(dsn, "file:")
	path, query, _ := strings.Cut(path, "?")
	if path == "" || path == ":memory:" || strings.Contains(query, "mode=memory") {
		return walFiles{}, false
	}
	return walFiles{db: path, shm: path + "-shm", wal: path + "-wal"}, true
}

// orphaned reports whether journal files exist and no process holds any of
// the database files open. Without lsof it cannot tell, and answers false.
func (f walFiles) orphaned() bool {
	if !exists(f.shm) && !exists(f.wal) {
		return false
	}

	lsof, err := exec.LookPath("lsof")
	if err != nil {
		return false
	}
	out, err := exec.Command(lsof, "-t", f.db, f.shm, f.wal).Output()
	if err != nil {
		// lsof exits 1 when nothing has the files open.
		return true
	}
	return strings.TrimSpace(string(out)) == ""
}

func (f walFiles) remove(logger *zap.Logger) {
	for _, path := range []string{f.shm, f.wal} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("sqlite: failed to remove stale WAL file", zap.String("path", path), zap.Error(err))
		}
	}
}

// staleWALSymptom reports whether err is an I/O or busy error, the two ways
// opening a database with journal files from a crashed process fails.
func staleWALSymptom(err error) bool {
	var sqlErr *moderncsqlite.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	switch sqlErr.Code() & 0xff {
	case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_BUSY:
		return true
	}
	return false
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
