package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	app "github.com/oksasatya/go-ddd-social/internal/application"
	"github.com/oksasatya/go-ddd-social/internal/domain/entity"
	"github.com/oksasatya/go-ddd-social/pkg/helpers"
)

const requestTimeout = 3 * time.Second

// UserIndex mirrors public profile fields into an Elasticsearch index.
// Passwords and relationship sets are never indexed.
type UserIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, IndexName: index}
}

var _ app.UserIndexer = (*UserIndex)(nil)

// userMapping makes the boosted fields prefix-searchable for bool_prefix queries.
const userMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "username":    {"type": "search_as_you_type"},
      "full_name":   {"type": "search_as_you_type"},
      "email":       {"type": "search_as_you_type"},
      "bio":         {"type": "text"},
      "profile_img": {"type": "keyword", "index": false},
      "created_at":  {"type": "date"},
      "updated_at":  {"type": "date"}
    }
  }
}`

// EnsureIndex creates the index with its mapping on first start.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	if !x.enabled() {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return helpers.EnsureIndex(c, x.ES, x.IndexName, userMapping)
}

func (x *UserIndex) enabled() bool {
	return x != nil && x.ES != nil && x.IndexName != ""
}

func userDocument(u *entity.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"username":    u.Username,
		"full_name":   u.FullName,
		"email":       u.Email,
		"bio":         u.Bio,
		"profile_img": u.ProfileImg,
		"created_at":  u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":  u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	if !x.enabled() {
		return nil
	}
	b, err := json.Marshal(userDocument(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func searchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"type":   "bool_prefix",
				"fields": []string{"username^3", "full_name^2", "email"},
			},
		},
		"_source": []string{"id", "username", "full_name", "profile_img", "bio"},
		"size":    size,
	}
}

// Search runs a prefix-friendly multi_match over username, full name and email.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !x.enabled() {
		return []map[string]any{}, nil
	}
	b, err := json.Marshal(searchQuery(q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		if h.Source == nil {
			h.Source = map[string]any{}
		}
		if _, ok := h.Source["id"]; !ok {
			h.Source["id"] = h.ID
		}
		out = append(out, h.Source)
	}
	return out, nil
}
