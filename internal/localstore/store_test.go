package localstore

import (
	"path/filepath"
	"testing"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func waterRecord(id string, ml int) record.Record {
	return record.Record{
		ID:        id,
		UserID:    "u-1",
		Kind:      record.KindWater,
		CreatedAt: 1000,
		Water:     &record.WaterLog{AmountML: ml},
	}
}

func TestAppendAndReadAll(t *testing.T) {
	db := testDB(t)

	if err := db.Append("water", "u-1", waterRecord("local-1-0", 250)); err != nil {
		t.Fatal(err)
	}
	if err := db.Append("water", "u-1", waterRecord("local-2-0", 500)); err != nil {
		t.Fatal(err)
	}

	recs, err := db.ReadAll("water", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].Water == nil || recs[0].Water.AmountML != 250 {
		t.Errorf("first record = %+v, want 250ml water", recs[0])
	}
}

func TestReadAllMissingKey(t *testing.T) {
	db := testDB(t)

	recs, err := db.ReadAll("mood", "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Errorf("got %d records for missing key, want 0", len(recs))
	}
}

func TestNamespaceIsolation(t *testing.T) {
	db := testDB(t)

	rec := waterRecord("local-1-0", 250)
	if err := db.Append("water", "u-1", rec); err != nil {
		t.Fatal(err)
	}

	// Different user, same collection.
	other, err := db.ReadAll("water", "u-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("u-2 sees %d of u-1's records", len(other))
	}

	// Same user, different collection.
	other, err = db.ReadAll("mood", "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("mood collection sees %d water records", len(other))
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	db := testDB(t)

	bad := record.Record{ID: "x", UserID: "u-1", Kind: record.KindWater}
	if err := db.Append("water", "u-1", bad); err == nil {
		t.Error("Append() accepted record with missing payload")
	}
}

func TestRemove(t *testing.T) {
	db := testDB(t)

	_ = db.Append("water", "u-1", waterRecord("local-1-0", 250))
	_ = db.Append("water", "u-1", waterRecord("local-2-0", 500))

	removed, err := db.Remove("water", "u-1", "local-1-0")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("Remove() = false, want true")
	}

	recs, _ := db.ReadAll("water", "u-1")
	if len(recs) != 1 || recs[0].ID != "local-2-0" {
		t.Errorf("after remove got %+v, want only local-2-0", recs)
	}

	// Removing an absent id is a no-op, not an error.
	removed, err = db.Remove("water", "u-1", "local-1-0")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("second Remove() = true, want false")
	}
}

func TestClear(t *testing.T) {
	db := testDB(t)

	_ = db.Append("water", "u-1", waterRecord("local-1-0", 250))
	if err := db.Clear("water", "u-1"); err != nil {
		t.Fatal(err)
	}

	recs, _ := db.ReadAll("water", "u-1")
	if len(recs) != 0 {
		t.Errorf("got %d records after Clear, want 0", len(recs))
	}
}

func TestMetaRoundTrip(t *testing.T) {
	db := testDB(t)

	v, err := db.GetMeta("last_online")
	if err != nil {
		t.Fatal(err)
	}
	if v != "" {
		t.Errorf("missing meta key = %q, want empty", v)
	}

	if err := db.SetMeta("last_online", "true"); err != nil {
		t.Fatal(err)
	}
	if err := db.SetMeta("last_online", "false"); err != nil {
		t.Fatal(err)
	}

	v, err = db.GetMeta("last_online")
	if err != nil {
		t.Fatal(err)
	}
	if v != "false" {
		t.Errorf("meta = %q, want false (last write wins)", v)
	}
}
