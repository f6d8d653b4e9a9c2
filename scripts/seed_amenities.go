// seed_amenities.go loads a JSON amenity list into Vicinity's Postgres source through the admin API.
//
// Usage:
//
//	go run scripts/seed_amenities.go -file amenities.json -api http://localhost:8700 -token $VICINITY_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type amenityItem struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Label    string  `json:"label,omitempty"`
}

type upsertResponse struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}

func main() {
	filePath := flag.String("file", "amenities.json", "path to a JSON array of amenities")
	apiURL := flag.String("api", "http://localhost:8700", "Vicinity API base URL")
	token := flag.String("token", os.Getenv("VICINITY_ADMIN_TOKEN"), "admin bearer token")
	batchSize := flag.Int("batch", 500, "amenities per request")
	dryRun := flag.Bool("dry-run", false, "print a per-category summary without posting")
	flag.Parse()

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read %s: %v", *filePath, err)
	}

	var items []amenityItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.Fatalf("parse %s: %v", *filePath, err)
	}

	perCategory := make(map[string]int)
	valid := items[:0]
	for _, it := range items {
		it.Category = strings.ToLower(strings.TrimSpace(it.Category))
		if it.Name == "" || it.Category == "" {
			log.Printf("skip entry without name or category: %+v", it)
			continue
		}
		perCategory[it.Category]++
		valid = append(valid, it)
	}
	log.Printf("parsed %d amenities from %s", len(valid), *filePath)

	if *dryRun {
		for cat, n := range perCategory {
			fmt.Printf("%s: %d\n", cat, n)
		}
		return
	}
	if *batchSize <= 0 {
		log.Fatalf("batch must be positive, got %d", *batchSize)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	inserted, failed := 0, 0
	for start := 0; start < len(valid); start += *batchSize {
		end := start + *batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		body, _ := json.Marshal(map[string]interface{}{"amenities": batch})
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/admin/amenities", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("batch %d-%d: %v", start, end, err)
			failed += len(batch)
			continue
		}
		var out upsertResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			log.Printf("batch %d-%d: status %d", start, end, resp.StatusCode)
			failed += len(batch)
			continue
		}
		inserted += out.Inserted
	}

	log.Printf("done: %d inserted, %d already present, %d failed", inserted, len(valid)-inserted-failed, failed)
}
