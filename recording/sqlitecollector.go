package recording

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// An SQLiteCollector stores flushed spike records in an SQLite database. Each
// record is unpacked into one row per (tick, buffer, source) so that spike
// trains can be queried directly. Rows are buffered and written in batches.
type SQLiteCollector struct {
	db *sql.DB

	mu        sync.Mutex
	rows      []spikeRow
	batchSize int
}

type spikeRow struct {
	Tick   uint32
	Buffer uint32
	Source uint32
}

// NewSQLiteCollector creates a collector writing to path + ".sqlite3". An
// empty path generates a unique default name. The file must not already
// exist.
func NewSQLiteCollector(path string) *SQLiteCollector {
	if path == "" {
		path = "spikesim_recording_" + xid.New().String()
	}

	filename := path + ".sqlite3"

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	c := NewSQLiteCollectorWithDB(db)

	return c
}

// NewSQLiteCollectorWithDB creates a collector over an existing database
// connection.
func NewSQLiteCollectorWithDB(db *sql.DB) *SQLiteCollector {
	c := &SQLiteCollector{
		db:        db,
		batchSize: 100000,
	}

	c.mustExecute(`CREATE TABLE spikes (
	Tick,
	Buffer,
	Source
);`)

	atexit.Register(func() { c.Flush() })

	return c
}

// DB returns the underlying database connection.
func (c *SQLiteCollector) DB() *sql.DB {
	return c.db
}

// Collect unpacks the record into rows asynchronously and signals completion
// once the record content has been taken over.
func (c *SQLiteCollector) Collect(rec Record, done func()) {
	go func() {
		c.insertRecord(rec)
		done()
	}()
}

func (c *SQLiteCollector) insertRecord(rec Record) {
	wordsPerBuffer := len(rec.Words) / int(rec.BufferCount)

	c.mu.Lock()
	for b := uint32(0); b < rec.BufferCount; b++ {
		bitset := rec.Words[int(b)*wordsPerBuffer : int(b+1)*wordsPerBuffer]
		for w, word := range bitset {
			for bit := 0; word != 0; bit++ {
				if word&1 != 0 {
					c.rows = append(c.rows, spikeRow{
						Tick:   rec.Tick,
						Buffer: b,
						Source: uint32(w*32 + bit),
					})
				}
				word >>= 1
			}
		}
	}
	mustFlush := len(c.rows) >= c.batchSize
	c.mu.Unlock()

	if mustFlush {
		c.Flush()
	}
}

// Flush writes all buffered rows to the database in one transaction.
func (c *SQLiteCollector) Flush() {
	c.mu.Lock()
	rows := c.rows
	c.rows = nil
	c.mu.Unlock()

	if len(rows) == 0 {
		return
	}

	c.mustExecute("BEGIN TRANSACTION")
	defer c.mustExecute("COMMIT TRANSACTION")

	stmt, err := c.db.Prepare("INSERT INTO spikes VALUES (?, ?, ?)")
	if err != nil {
		panic(err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(row.Tick, row.Buffer, row.Source)
		if err != nil {
			panic(err)
		}
	}
}

func (c *SQLiteCollector) mustExecute(query string) sql.Result {
	res, err := c.db.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
