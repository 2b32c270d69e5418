package bucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/resumeforge/reconcile/internal/types"
)

// SupabaseStore talks to a Supabase storage bucket over its REST surface.
// Only the three calls the pipeline needs are implemented: list, download,
// delete.
type SupabaseStore struct {
	baseURL    string
	bucketName string
	apiKey     string
	client     *http.Client
}

var _ Store = (*SupabaseStore)(nil)

// NewSupabaseStore creates a client for one bucket. baseURL is the project
// URL (https://xyz.supabase.co); apiKey is the service-role or anon key.
func NewSupabaseStore(baseURL, bucketName, apiKey string) (*SupabaseStore, error) {
	if baseURL == "" || bucketName == "" || apiKey == "" {
		return nil, fmt.Errorf("%w: base URL, bucket name and API key are required", types.ErrInvalidArgument)
	}
	return &SupabaseStore{
		baseURL:    baseURL,
		bucketName: bucketName,
		apiKey:     apiKey,
		client:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// listEntry is the storage API's object shape. Timestamps arrive RFC3339.
type listEntry struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Metadata  struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List returns supported documents under prefix, paging until exhausted.
func (s *SupabaseStore) List(ctx context.Context, prefix string) ([]Object, error) {
	const pageSize = 100

	var objects []Object
	for offset := 0; ; offset += pageSize {
		body, err := json.Marshal(map[string]any{
			"prefix": prefix,
			"limit":  pageSize,
			"offset": offset,
			"sortBy": map[string]string{"column": "name", "order": "asc"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode list request: %w", err)
		}

		endpoint := fmt.Sprintf("%s/storage/v1/object/list/%s", s.baseURL, s.bucketName)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build list request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		s.authorize(req)

		var entries []listEntry
		if err := s.do(req, &entries); err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", s.bucketName, err)
		}

		for _, e := range entries {
			if !SupportedDocument(e.Name) {
				continue
			}
			objects = append(objects, Object{
				Name:      e.Name,
				Size:      e.Metadata.Size,
				CreatedAt: e.CreatedAt,
			})
		}

		if len(entries) < pageSize {
			return objects, nil
		}
	}
}

// Get downloads one object's bytes.
func (s *SupabaseStore) Get(ctx context.Context, name string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.objectURL(name), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: downloading %s: %v", types.ErrStorage, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: object %s", types.ErrNotFound, name)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: downloading %s: status %d", types.ErrStorage, name, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrStorage, name, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: object %s is empty", types.ErrStorage, name)
	}
	return data, nil
}

// Delete removes one object.
func (s *SupabaseStore) Delete(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(name), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	s.authorize(req)
	return s.do(req, nil)
}

func (s *SupabaseStore) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucketName, url.PathEscape(name))
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
}

// do executes a request and decodes a JSON response into out (if non-nil).
func (s *SupabaseStore) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrStorage, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", types.ErrNotFound, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", types.ErrStorage, resp.StatusCode, snippet)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", types.ErrStorage, err)
	}
	return nil
}
