package evalclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchEvaluateBoundsConcurrency(t *testing.T) {
	stubSleep(t)
	stubResources(t, 10, 10)

	var current, peak int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt32(&current, 1)
		defer atomic.AddInt32(&current, -1)

		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}

		time.Sleep(20 * time.Millisecond)
		w.Write([]byte(evaluationResponse("radiology", 3)))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	requests := make([]BatchRequest, 0, 12)
	for i := 0; i < 12; i++ {
		requests = append(requests, BatchRequest{
			Category:     fmt.Sprintf("category-%d", i),
			CandidateIDs: manyIDs(3),
		})
	}

	results := c.BatchEvaluate(context.Background(), requests, 99)

	if len(results) != 12 {
		t.Fatalf("expected 12 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Err != nil {
			t.Fatalf("unexpected error for %s: %v", result.Category, result.Err)
		}
		if result.Category != requests[i].Category {
			t.Fatalf("result order broken at %d: %s", i, result.Category)
		}
	}

	if peak > maxPoolWidth {
		t.Fatalf("expected at most %d concurrent requests, observed %d", maxPoolWidth, peak)
	}
}

func TestBatchEvaluateIsolatesFailures(t *testing.T) {
	stubSleep(t)
	stubResources(t, 10, 10)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request: %v", err)
		}

		if strings.Contains(string(body), "broken-category") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(evaluationResponse("radiology", 3)))
	}))
	defer server.Close()

	c := newTestClient(server.URL)

	results := c.BatchEvaluate(context.Background(), []BatchRequest{
		{Category: "radiology", CandidateIDs: manyIDs(3)},
		{Category: "broken-category", CandidateIDs: manyIDs(3)},
		{Category: "oncology", CandidateIDs: manyIDs(3)},
	}, 2)

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected siblings to succeed: %v / %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatal("expected failure for broken category")
	}
	if results[0].Result == nil || results[0].Result.AverageFinalScore != 0.82 {
		t.Fatalf("unexpected sibling result: %+v", results[0].Result)
	}
}
