// Package qdrant caches section and skill embeddings keyed by a
// deterministic text fingerprint. The same resume is usually scored against
// many job descriptions, so repeat attempts skip the embedding backend for
// unchanged texts. Cache failures degrade to a miss, never to a failed
// attempt.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var pointNamespace = uuid.MustParse("8d6a2c3e-5f41-4b9a-9a07-3f64d20c51aa")

// PointID derives a stable cache key from the embedding model and the exact
// normalized text. A model change invalidates every cached vector.
func PointID(model, text string) string {
	return uuid.NewSHA1(pointNamespace, []byte(model+"\x00"+text)).String()
}

type Cache struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func NewCache(baseURL, collection string) *Cache {
	return &Cache{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Cache) Put(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids/vectors mismatch")
	}

	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID     string    `json:"id"`
		Vector []float32 `json:"vector"`
	}

	points := make([]point, 0, len(ids))
	for i := range ids {
		points = append(points, point{ID: ids[i], Vector: vectors[i]})
	}

	body, err := json.Marshal(map[string]any{"points": points})
	if err != nil {
		return fmt.Errorf("marshal upsert body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant upsert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status: %s", resp.Status)
	}
	return nil
}

// Get returns the cached vectors for the requested IDs. Missing IDs are
// simply absent from the result map.
func (c *Cache) Get(ctx context.Context, ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}

	body, err := json.Marshal(map[string]any{
		"ids":          ids,
		"with_vector":  true,
		"with_payload": false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal retrieve body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create retrieve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant retrieve request: %w", err)
	}
	defer resp.Body.Close()

	// A missing collection means nothing has been cached yet.
	if resp.StatusCode == http.StatusNotFound {
		return map[string][]float32{}, nil
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant retrieve status: %s", resp.Status)
	}

	var retrieveResp struct {
		Result []struct {
			ID     string    `json:"id"`
			Vector []float32 `json:"vector"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&retrieveResp); err != nil {
		return nil, fmt.Errorf("decode retrieve response: %w", err)
	}

	out := make(map[string][]float32, len(retrieveResp.Result))
	for _, r := range retrieveResp.Result {
		if len(r.Vector) == 0 {
			continue
		}
		out[r.ID] = r.Vector
	}
	return out, nil
}

func (c *Cache) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	body, err := json.Marshal(map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal create collection body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create collection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant ensure collection request: %w", err)
	}
	defer resp.Body.Close()

	// 200/201 for create, 409 if already exists (depends on version/config).
	if resp.StatusCode == http.StatusConflict {
		c.markCollectionEnsured(vectorSize)
		return nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(body)); msg != "" {
			return fmt.Errorf("qdrant ensure collection status: %s: %s", resp.Status, msg)
		}
		return fmt.Errorf("qdrant ensure collection status: %s", resp.Status)
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Cache) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}
