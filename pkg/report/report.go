// Package report collects per-file conversion results and optionally logs
// them to a database table.
package report

import (
	"database/sql"
	"fmt"
	"io"
	re "regexp"
	"sort"
	s "strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

type Result struct {
	Source string
	Target string
	Err    error
}

func (r Result) OK() bool { return r.Err == nil }

// Report is safe for concurrent Add calls.
type Report struct {
	mu       sync.Mutex
	results  []Result
	recorder Recorder
}

// Recorder persists results as they arrive.
type Recorder interface {
	Record(r Result) error
}

func New(rec Recorder) *Report {
	return &Report{recorder: rec}
}

func (rpt *Report) Add(r Result) {
	rpt.mu.Lock()
	rpt.results = append(rpt.results, r)
	rpt.mu.Unlock()

	if rpt.recorder == nil {
		return
	}
	if err := rpt.recorder.Record(r); err != nil {
		log.Warnf("record %s: %v", r.Source, err)
	}
}

// Results returns a copy sorted by source name.
func (rpt *Report) Results() []Result {
	rpt.mu.Lock()
	out := make([]Result, len(rpt.results))
	copy(out, rpt.results)
	rpt.mu.Unlock()

	sort.Slice(out, func(a, b int) bool { return out[a].Source < out[b].Source })
	return out
}

func (rpt *Report) Failed() []Result {
	var failed []Result
	for _, r := range rpt.Results() {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

func (rpt *Report) Succeeded() int {
	return len(rpt.Results()) - len(rpt.Failed())
}

// Summary prints the end-of-run block.
func (rpt *Report) Summary(w io.Writer) {
	total := len(rpt.Results())
	failed := rpt.Failed()

	fmt.Fprintf(w, "\n%s\n", s.Repeat("=", 60))
	fmt.Fprintln(w, "Conversion complete!")
	fmt.Fprintf(w, "Successfully converted: %d/%d files\n", total-len(failed), total)
	if len(failed) > 0 {
		fmt.Fprintln(w, "\nFailed to convert:")
		for _, r := range failed {
			fmt.Fprintf(w, "  - %s\n", r.Source)
		}
	}
}

var reIdent = re.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// DBRecorder inserts one row per result into a table with columns
// (source, target, ok, reason, converted_at).
type DBRecorder struct {
	stmt *sql.Stmt
}

// DbConnect opens the database named by the config's database section,
// or returns nil when no driver type is configured.
func DbConnect(dbconfig map[string]string) (*sql.DB, error) {
	if len(dbconfig["type"]) == 0 {
		return nil, nil
	}
	dbh, err := sql.Open(dbconfig["type"], dsn(dbconfig))
	if err != nil {
		return nil, fmt.Errorf("sql.Open(): %w", err)
	}
	return dbh, nil
}

func dsn(dbconfig map[string]string) string {
	return dbconfig["type"] + "://" + dbconfig["username"] + ":" +
		dbconfig["password"] + "@" + dbconfig["host"] + "/" +
		dbconfig["name"] + dbconfig["connect_opts"]
}

func NewDBRecorder(dbh *sql.DB, table string) (*DBRecorder, error) {
	if len(table) == 0 {
		table = "conversions"
	}
	if !reIdent.MatchString(table) {
		return nil, fmt.Errorf("invalid table name '%s'", table)
	}
	stmt, err := dbh.Prepare(insertQuery(table))
	if err != nil {
		return nil, fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	return &DBRecorder{stmt: stmt}, nil
}

func insertQuery(table string) string {
	return `insert into ` + table + ` (source, target, ok, reason, converted_at) values ($1, $2, $3, $4, $5)`
}

func (d *DBRecorder) Record(r Result) error {
	reason := ""
	if r.Err != nil {
		reason = r.Err.Error()
	}
	res, err := d.stmt.Exec(r.Source, r.Target, r.OK(), reason, time.Now())
	if err != nil {
		return err
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get # rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%d rows affected", ra)
	}
	return nil
}

func (d *DBRecorder) Close() error {
	return d.stmt.Close()
}
