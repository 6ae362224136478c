package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"campscout/models"
)

const defaultPageSize = 100

// APIExtractor pulls sessions from a JSON endpoint, following page
// parameters until a short or empty page.
type APIExtractor struct {
	spec   *models.APIExtractionSpec
	client *http.Client
}

func NewAPIExtractor(spec *models.APIExtractionSpec, client *http.Client) *APIExtractor {
	return &APIExtractor{spec: spec, client: client}
}

func (e *APIExtractor) Type() models.ExtractionType {
	return models.ExtractionAPI
}

func (e *APIExtractor) Extract(ctx context.Context, source *models.ScrapeSource) ([]models.RawSession, error) {
	pageSize := e.spec.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []models.RawSession
	for page := 1; ; page++ {
		items, err := e.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if raw := e.rawFromItem(item); raw != nil {
				all = append(all, *raw)
			}
		}
		log.Printf("API: page %d: %d items (total: %d)", page, len(items), len(all))

		if e.spec.PageParam == "" || len(items) < pageSize {
			break
		}
	}
	return all, nil
}

func (e *APIExtractor) fetchPage(ctx context.Context, page int) ([]map[string]interface{}, error) {
	method := e.spec.Method
	if method == "" {
		method = "GET"
	}

	endpoint := e.spec.Endpoint
	if e.spec.PageParam != "" {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint = endpoint + sep + e.spec.PageParam + "=" + strconv.Itoa(page)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return itemsAtPath(payload, e.spec.ItemsPath)
}

// itemsAtPath walks a dot path ("data.sessions") into the decoded payload
// and returns the array of objects found there. An empty path means the
// payload itself is the array.
func itemsAtPath(payload interface{}, path string) ([]map[string]interface{}, error) {
	node := payload
	if path != "" {
		for _, key := range strings.Split(path, ".") {
			obj, ok := node.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("items path %q: not an object at %q", path, key)
			}
			node = obj[key]
		}
	}

	arr, ok := node.([]interface{})
	if !ok {
		return nil, fmt.Errorf("items path %q: not an array", path)
	}

	items := make([]map[string]interface{}, 0, len(arr))
	for _, el := range arr {
		if obj, ok := el.(map[string]interface{}); ok {
			items = append(items, obj)
		}
	}
	return items, nil
}

func (e *APIExtractor) rawFromItem(item map[string]interface{}) *models.RawSession {
	fields := make(map[string]string, len(e.spec.Fields))
	for field, path := range e.spec.Fields {
		fields[field] = stringAtPath(item, path)
	}

	raw := rawFromFields(fields)
	if raw == nil {
		return nil
	}
	raw.Data, _ = json.Marshal(item)
	return raw
}

func stringAtPath(item map[string]interface{}, path string) string {
	var node interface{} = item
	for _, key := range strings.Split(path, ".") {
		obj, ok := node.(map[string]interface{})
		if !ok {
			return ""
		}
		node = obj[key]
	}

	switch v := node.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
