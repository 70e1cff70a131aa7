package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"salonbook/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Config describes the catalog index connection
type Config struct {
	Enabled    bool
	URL        string
	Index      string
	Username   string
	Password   string
	MaxRetries int
	// Timeout bounds index creation at startup
	Timeout time.Duration
}

// ElasticsearchClient индексирует каталог услуг для полнотекстового поиска
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config Config
}

// NewElasticsearchClient создает новый клиент Elasticsearch
func NewElasticsearchClient(cfg Config) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(indexMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// Service names are mostly Thai, so name gets the built-in thai analyzer
func indexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"name": map[string]interface{}{
					"type":     "text",
					"analyzer": "thai",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
						"standard": map[string]interface{}{
							"type":     "text",
							"analyzer": "standard",
						},
					},
				},
				"price": map[string]interface{}{
					"type":           "scaled_float",
					"scaling_factor": 100,
				},
				"deposit": map[string]interface{}{
					"type":           "scaled_float",
					"scaling_factor": 100,
				},
				"duration_mins": map[string]interface{}{
					"type": "integer",
				},
				"is_active": map[string]interface{}{
					"type": "boolean",
				},
				"image_url": map[string]interface{}{
					"type":  "keyword",
					"index": false,
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
				"updated_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}
}

// SearchServices ищет активные услуги по названию
func (c *ElasticsearchClient) SearchServices(ctx context.Context, query string, limit int) ([]models.Service, error) {
	if limit <= 0 {
		limit = 20
	}

	searchJSON, err := json.Marshal(map[string]interface{}{
		"query": buildSearchQuery(query),
		"sort":  buildSortQuery(query),
		"size":  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.Service `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	services := make([]models.Service, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		services[i] = hit.Source
	}

	return services, nil
}

func buildSearchQuery(query string) map[string]interface{} {
	filter := []map[string]interface{}{
		{"term": map[string]interface{}{"is_active": true}},
	}

	if strings.TrimSpace(query) == "" {
		return map[string]interface{}{
			"bool": map[string]interface{}{"filter": filter},
		}
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": filter,
			"must": []map[string]interface{}{
				{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"name^2", "name.standard"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
	}
}

func buildSortQuery(query string) []map[string]interface{} {
	if strings.TrimSpace(query) != "" {
		return []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"name.keyword": map[string]interface{}{"order": "asc"}},
		}
	}

	return []map[string]interface{}{
		{"name.keyword": map[string]interface{}{"order": "asc"}},
	}
}

// IndexService индексирует услугу
func (c *ElasticsearchClient) IndexService(ctx context.Context, service *models.Service) error {
	if service.UpdatedAt.IsZero() {
		service.UpdatedAt = time.Now()
	}

	serviceJSON, err := json.Marshal(service)
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: service.ID.String(),
		Body:       bytes.NewReader(serviceJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index service: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// BulkIndex переиндексирует каталог одним запросом
func (c *ElasticsearchClient) BulkIndex(ctx context.Context, services []models.Service) error {
	if len(services) == 0 {
		return nil
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for i := range services {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": c.config.Index, "_id": services[i].ID.String()},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode bulk meta: %w", err)
		}
		if err := enc.Encode(services[i]); err != nil {
			return fmt.Errorf("failed to encode service: %w", err)
		}
	}

	req := esapi.BulkRequest{
		Body:    &body,
		Refresh: "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.String())
	}

	var response struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if response.Errors {
		return fmt.Errorf("bulk indexing reported item errors")
	}

	return nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
