package replication

import (
	"database/sql"
	"strings"
	"testing"
)

type stubProvider struct{}

func (stubProvider) DB() *sql.DB { return nil }

func TestNewReplicatorRequiresPostgres(t *testing.T) {
	if _, err := NewReplicator(Config{}); err == nil {
		t.Error("Expected an error when no Postgres client is configured")
	}
}

func TestNewReplicatorDefaults(t *testing.T) {
	r, err := NewReplicator(Config{Postgres: stubProvider{}})
	if err != nil {
		t.Fatalf("NewReplicator failed: %v", err)
	}
	if r.batchSize != defaultBatchSize {
		t.Errorf("Expected batch size %d, got %d", defaultBatchSize, r.batchSize)
	}
	if r.workers != defaultWorkers {
		t.Errorf("Expected %d workers, got %d", defaultWorkers, r.workers)
	}
}

func TestDecodeRows(t *testing.T) {
	rows := []map[string]interface{}{
		{
			"id":            "vp1",
			"title":         "Déclaration",
			"url":           "https://www.vie-publique.fr/discours/vp1",
			"delivery_date": "2005-06-01",
			"document_type": "Déclaration",
			"speakers": []interface{}{
				map[string]interface{}{"name": "Jacques Chirac", "role": "Président"},
			},
			"text":   "Mesdames, Messieurs.",
			"source": "France Inter",
		},
		{"title": "Sans id", "text": "Texte."},
	}

	decoded := decodeRows(rows)

	if len(decoded) != 1 {
		t.Fatalf("Expected 1 decoded row, rows without id skipped, got %d", len(decoded))
	}
	row := decoded[0]
	if row.ID != "vp1" || row.Title != "Déclaration" || row.DeliveryDate != "2005-06-01" {
		t.Errorf("Unexpected decoded row: %+v", row)
	}
	if !strings.Contains(row.Speakers, "Jacques Chirac") || !strings.Contains(row.Speakers, "role") {
		t.Errorf("Expected speakers kept as JSON, got %q", row.Speakers)
	}
	if row.Text != "Mesdames, Messieurs." || row.Source != "France Inter" {
		t.Errorf("Unexpected text or source: %+v", row)
	}
}

func TestEncodeSpeakers(t *testing.T) {
	if got := encodeSpeakers(nil); got != "" {
		t.Errorf("Expected empty encoding for nil, got %q", got)
	}

	got := encodeSpeakers([]interface{}{map[string]interface{}{"name": "Simone Veil"}})
	if got != `[{"name":"Simone Veil"}]` {
		t.Errorf("Unexpected encoding: %q", got)
	}
}

func TestBuildIDInQuery(t *testing.T) {
	r := &Replicator{}
	ids := []interface{}{"a", "b", "c"}

	query, args := r.buildIDInQuery(ids)

	if !strings.Contains(query, "SELECT id FROM speech WHERE id IN ($1, $2, $3)") {
		t.Errorf("Unexpected query: %q", query)
	}
	if len(args) != 3 || args[0] != "a" || args[2] != "c" {
		t.Errorf("Unexpected args: %v", args)
	}

	other, _ := r.buildIDInQuery([]interface{}{"different", "b", "c"})
	if other == query {
		t.Error("Expected queries for different batches to differ")
	}
}

func TestFilterNewSpeechesByID(t *testing.T) {
	r := &Replicator{}
	batch := []speechRow{{ID: "a"}, {ID: "b"}, {ID: ""}, {ID: "c"}}

	out := r.filterNewSpeechesByID(batch, map[string]bool{"b": true})

	if len(out) != 2 {
		t.Fatalf("Expected 2 new speeches, got %d", len(out))
	}
	if out[0].ID != "a" || out[1].ID != "c" {
		t.Errorf("Expected ids [a c], got [%s %s]", out[0].ID, out[1].ID)
	}

	all := r.filterNewSpeechesByID(batch, nil)
	if len(all) != 3 {
		t.Errorf("Expected 3 speeches with no existing set, got %d", len(all))
	}
}
