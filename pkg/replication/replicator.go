// Package replication copies a cleaned speech dataset into Postgres.
package replication

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"speech-corpus/pkg/db"
)

const (
	defaultBatchSize = 100
	defaultWorkers   = 5
)

// Config wires the replication dependencies.
type Config struct {
	// Rows are cleaned dataset rows with English keys, as loaded by
	// dataset.LoadRaw.
	Rows []map[string]interface{}

	Postgres db.DBProvider

	// BatchSize and Workers tune the parallel batch writer. Zero values
	// pick the defaults.
	BatchSize int
	Workers   int
}

// Replicator copies cleaned speech rows into the Postgres speech table.
//
// This is a one-shot, "copy everything" flow: ids already present in
// Postgres are skipped, the rest are inserted in parallel batches.
type Replicator struct {
	rows      []speechRow
	pg        db.DBProvider
	batchSize int
	workers   int
}

// speechRow is the subset of a cleaned dataset row that maps onto the
// Postgres speech table. Speakers is carried as its JSON encoding.
type speechRow struct {
	ID           string
	Title        string
	URL          string
	DeliveryDate string
	DocumentType string
	Speakers     string
	Text         string
	Source       string
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Replicator{
		rows:      decodeRows(cfg.Rows),
		pg:        cfg.Postgres,
		batchSize: batchSize,
		workers:   workers,
	}, nil
}

// ReplicateSpeechesToPostgres writes all configured rows into the Postgres
// speech table, creating the table first if needed. Rows whose id already
// exists are skipped, so re-running over the same dataset is safe.
func (r *Replicator) ReplicateSpeechesToPostgres(ctx context.Context) error {
	if err := r.ensureSpeechSchema(ctx); err != nil {
		return err
	}

	log.Printf("Replicating %d speeches to Postgres in batches...", len(r.rows))

	totalProcessed, totalInserted, err := r.processBatches(ctx)
	if err != nil {
		return err
	}

	log.Printf("Replication complete: processed %d speeches, inserted %d new speeches", totalProcessed, totalInserted)
	return nil
}

// processBatches runs all batches through a small worker pool and returns
// total processed and inserted counts.
func (r *Replicator) processBatches(ctx context.Context) (int, int, error) {
	type batchJob struct {
		batch []speechRow
		start int
		end   int
	}

	type batchResult struct {
		processed int
		inserted  int
		err       error
	}

	numBatches := (len(r.rows) + r.batchSize - 1) / r.batchSize
	jobs := make(chan batchJob, numBatches)
	results := make(chan batchResult, numBatches)

	for start := 0; start < len(r.rows); start += r.batchSize {
		end := start + r.batchSize
		if end > len(r.rows) {
			end = len(r.rows)
		}
		jobs <- batchJob{batch: r.rows[start:end], start: start, end: end}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				inserted, err := r.processBatch(ctx, job.batch, job.start, job.end)
				results <- batchResult{
					processed: len(job.batch),
					inserted:  inserted,
					err:       err,
				}
			}
		}()
	}

	// Close results channel when all workers are done
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results and fail fast on error. The results channel has room
	// for every batch, so returning early never blocks a worker.
	totalProcessed := 0
	totalInserted := 0
	for result := range results {
		if result.err != nil {
			return totalProcessed, totalInserted, result.err
		}

		totalProcessed += result.processed
		totalInserted += result.inserted
		if totalProcessed%1000 == 0 {
			log.Printf("Progress: processed %d/%d speeches, inserted %d new", totalProcessed, len(r.rows), totalInserted)
		}
	}

	return totalProcessed, totalInserted, nil
}

// processBatch checks which ids in the batch already exist in Postgres,
// filters them out, and inserts the rest inside one transaction.
func (r *Replicator) processBatch(ctx context.Context, batch []speechRow, start, end int) (int, error) {
	log.Printf("Processing batch [%d:%d] (%d speeches)...", start, end, len(batch))

	existing, err := r.checkIDsExistInPostgres(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("check existing ids for batch [%d:%d]: %w", start, end, err)
	}

	toInsert := r.filterNewSpeechesByID(batch, existing)
	if len(toInsert) == 0 {
		return 0, nil
	}

	if err := r.insertSpeechesTx(ctx, toInsert); err != nil {
		return 0, fmt.Errorf("insert batch [%d:%d]: %w", start, end, err)
	}

	return len(toInsert), nil
}

func (r *Replicator) ensureSpeechSchema(ctx context.Context) error {
	if r.pg.DB() == nil {
		return fmt.Errorf("postgres DB not connected")
	}

	// id is the catalog id and the primary key, which also gives uniqueness.
	// Everything is TEXT: delivery dates keep their YYYY-MM-DD form and the
	// speakers list is stored as its JSON encoding.
	const ddl = `
CREATE TABLE IF NOT EXISTS speech (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  delivery_date TEXT NOT NULL DEFAULT '',
  document_type TEXT NOT NULL DEFAULT '',
  speakers TEXT NOT NULL DEFAULT '',
  text TEXT NOT NULL DEFAULT '',
  source TEXT NOT NULL DEFAULT ''
);`

	if _, err := r.pg.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create speech table: %w", err)
	}
	return nil
}

// checkIDsExistInPostgres checks which ids from the given batch already
// exist in Postgres. Working batch by batch avoids loading every stored id
// into memory at once.
func (r *Replicator) checkIDsExistInPostgres(ctx context.Context, batch []speechRow) (map[string]bool, error) {
	if r.pg.DB() == nil {
		return nil, fmt.Errorf("postgres DB not connected")
	}
	if len(batch) == 0 {
		return map[string]bool{}, nil
	}

	ids := make([]interface{}, 0, len(batch))
	for _, row := range batch {
		if row.ID != "" {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}

	query, args := r.buildIDInQuery(ids)
	return r.executeIDQuery(ctx, query, args)
}

// buildIDInQuery builds a SELECT with an IN clause over the batch ids.
// A leading comment derived from the batch makes each query string unique,
// which keeps pgx from sharing cached prepared statements across parallel
// batch workers.
func (r *Replicator) buildIDInQuery(ids []interface{}) (string, []interface{}) {
	var hashSuffix string
	if idStr, ok := ids[0].(string); ok {
		hash := md5.Sum([]byte(idStr))
		hashSuffix = fmt.Sprintf("%x", hash[:4])
	}
	query := fmt.Sprintf(`/* q_%d_%s */ SELECT id FROM speech WHERE id IN (`, len(ids), hashSuffix)
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query += ")"
	return query, args
}

// executeIDQuery executes an id query and returns the results as a set.
func (r *Replicator) executeIDQuery(ctx context.Context, query string, args []interface{}) (map[string]bool, error) {
	rows, err := r.pg.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		if id != "" {
			set[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return set, nil
}

func (r *Replicator) filterNewSpeechesByID(all []speechRow, existing map[string]bool) []speechRow {
	if existing == nil {
		existing = map[string]bool{}
	}

	out := make([]speechRow, 0, len(all))
	for _, row := range all {
		if row.ID == "" {
			continue
		}
		if existing[row.ID] {
			continue
		}
		out = append(out, row)
	}
	return out
}

// insertSpeechesTx inserts a batch of speeches within a transaction.
func (r *Replicator) insertSpeechesTx(ctx context.Context, batch []speechRow) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.executeBatchInsert(ctx, tx, batch); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// executeBatchInsert executes the insert statements for a batch of speeches.
func (r *Replicator) executeBatchInsert(ctx context.Context, tx *sql.Tx, batch []speechRow) error {
	const insertQuery = `
INSERT INTO speech (id, title, url, delivery_date, document_type, speakers, text, source)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range batch {
		if row.ID == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, row.ID, row.Title, row.URL, row.DeliveryDate, row.DocumentType, row.Speakers, row.Text, row.Source); err != nil {
			return fmt.Errorf("insert speech id=%q: %w", row.ID, err)
		}
	}

	return nil
}

// decodeRows converts generic dataset rows into speechRows, skipping rows
// without an id.
func decodeRows(rows []map[string]interface{}) []speechRow {
	out := make([]speechRow, 0, len(rows))
	for _, row := range rows {
		decoded := speechRow{
			ID:           stringField(row, "id"),
			Title:        stringField(row, "title"),
			URL:          stringField(row, "url"),
			DeliveryDate: stringField(row, "delivery_date"),
			DocumentType: stringField(row, "document_type"),
			Speakers:     encodeSpeakers(row["speakers"]),
			Text:         stringField(row, "text"),
			Source:       stringField(row, "source"),
		}
		if decoded.ID == "" {
			continue
		}
		out = append(out, decoded)
	}
	return out
}

func stringField(row map[string]interface{}, key string) string {
	s, _ := row[key].(string)
	return s
}

func encodeSpeakers(value interface{}) string {
	if value == nil {
		return ""
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
