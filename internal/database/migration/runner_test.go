package migration

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
)

func TestLoadMigrations_OrdersAndSkipsOthers(t *testing.T) {
	fsys := fstest.MapFS{
		"V10__careers.sql":   {Data: []byte("CREATE TABLE careers ();")},
		"V2__reference.sql":  {Data: []byte("  CREATE TABLE skills ();\n")},
		"README.md":          {Data: []byte("docs")},
		"V3_missing_sep.sql": {Data: []byte("SELECT 1;")},
		"sub/V4__nested.sql": {Data: []byte("SELECT 1;")},
	}

	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) != 2 || migs[0].Version != 2 || migs[1].Version != 10 {
		t.Fatalf("unexpected migrations %+v", migs)
	}
	if migs[0].SQL != "CREATE TABLE skills ();" || migs[0].Name != "reference" || len(migs[0].Checksum) != 64 {
		t.Fatalf("unexpected first migration %+v", migs[0])
	}
}

func TestLoadMigrations_Rejects(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"empty file": {"V1__a.sql": {Data: []byte("   ")}},
		"duplicate":  {"V1__a.sql": {Data: []byte("SELECT 1;")}, "V1__b.sql": {Data: []byte("SELECT 2;")}},
	}
	for name, fsys := range cases {
		if _, err := loadMigrations(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEmbeddedMigrationsLoad(t *testing.T) {
	fsys, err := Runner{}.source()
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	migs, err := loadMigrations(fsys)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(migs) == 0 || migs[0].Version != 1 {
		t.Fatalf("expected embedded migrations starting at V1, got %d", len(migs))
	}
	for _, m := range migs {
		if !strings.Contains(strings.ToUpper(m.SQL), "CREATE") {
			t.Fatalf("%s does not create anything", m.Filename)
		}
	}
}

// recordingConnector hands out numbered connections and records which one
// each statement ran on.
type recordingConnector struct {
	mu     sync.Mutex
	opened int
	stmts  []recordedStmt
}

type recordedStmt struct {
	conn  int
	query string
}

func (c *recordingConnector) Connect(context.Context) (driver.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opened++
	return &recordingConn{id: c.opened, owner: c}, nil
}

func (c *recordingConnector) Driver() driver.Driver { return recordingDriver{c} }

type recordingDriver struct{ c *recordingConnector }

func (d recordingDriver) Open(string) (driver.Conn, error) { return d.c.Connect(context.Background()) }

func (c *recordingConnector) record(conn int, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stmts = append(c.stmts, recordedStmt{conn: conn, query: strings.TrimSpace(query)})
}

type recordingConn struct {
	id    int
	owner *recordingConnector
}

func (c *recordingConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *recordingConn) Close() error              { return nil }
func (c *recordingConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

func (c *recordingConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.owner.record(c.id, query)
	return driver.RowsAffected(1), nil
}

func (c *recordingConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	c.owner.record(c.id, query)
	return emptyRows{}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type emptyRows struct{}

func (emptyRows) Columns() []string         { return []string{"version", "checksum"} }
func (emptyRows) Close() error              { return nil }
func (emptyRows) Next([]driver.Value) error { return io.EOF }

func TestRun_LockAndUnlockShareOneSession(t *testing.T) {
	rec := &recordingConnector{}
	db := sql.OpenDB(rec)
	defer db.Close()
	// without idle connections every unpinned statement would open a new one
	db.SetMaxIdleConns(0)

	if err := (Runner{}).Run(context.Background(), db); err != nil {
		t.Fatalf("run: %v", err)
	}

	var locked, unlocked, inserts int
	for _, st := range rec.stmts {
		if st.conn != rec.stmts[0].conn {
			t.Fatalf("statement %q ran on connection %d, want %d", st.query, st.conn, rec.stmts[0].conn)
		}
		switch {
		case strings.Contains(st.query, "pg_advisory_lock"):
			locked++
		case strings.Contains(st.query, "pg_advisory_unlock"):
			unlocked++
		case strings.HasPrefix(st.query, "INSERT INTO schema_migrations"):
			inserts++
		}
	}
	if locked != 1 || unlocked != 1 {
		t.Fatalf("locked=%d unlocked=%d, want 1 each", locked, unlocked)
	}
	fsys, _ := Runner{}.source()
	migs, _ := loadMigrations(fsys)
	if inserts != len(migs) {
		t.Fatalf("recorded %d applied migrations, want %d", inserts, len(migs))
	}
}
