// Package search indexes the product catalog into Elasticsearch and serves
// fuzzy full-text queries over it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/stylehub/storefront/internal/models"
)

type Service struct {
	ES    *elasticsearch.Client
	Index string
}

func New(es *elasticsearch.Client, index string) *Service {
	return &Service{ES: es, Index: index}
}

func (s *Service) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return r.Hits.Total.Value, products, nil
}

// IndexProduct upserts the document keyed by the product id.
func (s *Service) IndexProduct(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("index product: %w", err)
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithDocumentID(strconv.Itoa(p.ID)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	res, err := s.ES.Delete(
		s.Index,
		strconv.Itoa(id),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	// 404 just means the document was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete product %d: %s", id, res.Status())
	}
	return nil
}
