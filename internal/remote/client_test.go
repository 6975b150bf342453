package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/record"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, nil)
}

func waterRecord(id string) record.Record {
	return record.Record{
		ID:        id,
		UserID:    "u-1",
		Kind:      record.KindWater,
		CreatedAt: 1000,
		Water:     &record.WaterLog{AmountML: 250},
	}
}

func TestPing(t *testing.T) {
	var gotPath string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() = %v", err)
	}
	if gotPath != "/healthz" {
		t.Errorf("probe path = %q", gotPath)
	}
}

func TestPingFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping() = nil on 500")
	}
}

func TestCreateAssignsID(t *testing.T) {
	var received record.Record
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u-1/water" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		_ = json.NewEncoder(w).Encode(received)
	})

	rec := waterRecord("")
	stored, err := c.Create(context.Background(), "u-1", "water", rec)
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID == "" {
		t.Error("stored record has no id")
	}
	if received.ID != stored.ID {
		t.Errorf("id sent = %q, returned = %q", received.ID, stored.ID)
	}
	if record.IsLocalID(stored.ID) {
		t.Errorf("online create produced local id %q", stored.ID)
	}
}

func TestCreateKeepsExistingID(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var rec record.Record
		_ = json.NewDecoder(r.Body).Decode(&rec)
		_ = json.NewEncoder(w).Encode(rec)
	})

	stored, err := c.Create(context.Background(), "u-1", "water", waterRecord("local-1000-0"))
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != "local-1000-0" {
		t.Errorf("id = %q, want preserved local id", stored.ID)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	called := false
	c := testClient(t, func(_ http.ResponseWriter, _ *http.Request) { called = true })

	rec := waterRecord("")
	rec.Water = nil
	if _, err := c.Create(context.Background(), "u-1", "water", rec); err == nil {
		t.Error("invalid record accepted")
	}
	if called {
		t.Error("invalid record reached the backend")
	}
}

func TestList(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"records": []record.Record{waterRecord("r-1"), waterRecord("r-2")},
		})
	})

	recs, err := c.List(context.Background(), "u-1", "water")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].ID != "r-1" {
		t.Errorf("recs = %+v", recs)
	}
}

func TestDeleteNotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := c.Delete(context.Background(), "u-1", "water", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStatusError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	_, err := c.List(context.Background(), "u-1", "water")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want StatusError", err)
	}
	if se.Code != http.StatusTooManyRequests || se.Message != "quota exceeded" {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestBatchCreate(t *testing.T) {
	var gotPath string
	var gotCount int
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Records []record.Record `json:"records"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotCount = len(body.Records)
	})

	recs := []record.Record{waterRecord("r-1"), waterRecord("r-2")}
	if err := c.BatchCreate(context.Background(), "u-1", "water", recs); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v1/users/u-1/water:batch" {
		t.Errorf("path = %q", gotPath)
	}
	if gotCount != 2 {
		t.Errorf("batch carried %d records", gotCount)
	}
}

func TestBatchCreateTooLarge(t *testing.T) {
	called := false
	c := testClient(t, func(_ http.ResponseWriter, _ *http.Request) { called = true })

	recs := make([]record.Record, MaxBatchSize+1)
	for i := range recs {
		recs[i] = waterRecord("r")
	}
	err := c.BatchCreate(context.Background(), "u-1", "water", recs)
	if !errors.Is(err, ErrBatchTooLarge) {
		t.Errorf("err = %v, want ErrBatchTooLarge", err)
	}
	if called {
		t.Error("oversized batch reached the backend")
	}
}

func TestProfileRoundTrip(t *testing.T) {
	var saved record.Profile
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users/u-1/profile" {
			t.Errorf("path = %q", r.URL.Path)
		}
		switch r.Method {
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&saved)
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(saved)
		}
	})

	p := record.Profile{UserID: "u-1", DisplayName: "Sam", HeightCM: 170, WeightKG: 65, Age: 30, ActivityLevel: "moderate"}
	if err := c.PutProfile(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetProfile(context.Background(), "u-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Errorf("profile = %+v, want %+v", got, p)
	}
}
