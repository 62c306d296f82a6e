package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lsdops/slashreport/internal/domain"
	"go.uber.org/zap"
)

// createdAtLayout фиксированный формат дат GitLab API (ISO-8601 с миллисекундами)
const createdAtLayout = "2006-01-02T15:04:05.000Z"

// Client клиент GitLab REST API. Таймаута на исходящие запросы нет:
// отложенная работа не отменяется после запуска.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{},
		log:     log,
	}
}

// WithToken возвращает копию клиента, привязанную к токену конкретного запроса.
// Пустой токен означает неавторизованные запросы.
func (c *Client) WithToken(token string) *Client {
	bound := *c
	bound.token = token
	return &bound
}

// SearchGroups ищет группы по имени. Поиск подстрочный, поэтому результат
// может содержать слабо совпадающие группы; точную фильтрацию делает вызывающий.
func (c *Client) SearchGroups(ctx context.Context, name string, skipIDs []int64) ([]domain.Group, error) {
	query := url.Values{}
	query.Set("search", name)
	for _, id := range skipIDs {
		query.Add("skip_groups[]", strconv.FormatInt(id, 10))
	}

	var payload []groupPayload
	if err := c.get(ctx, c.baseURL+"/groups?"+query.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("search groups %q: %w", name, err)
	}

	groups := make([]domain.Group, 0, len(payload))
	for _, g := range payload {
		groups = append(groups, domain.Group{Id: g.Id, Name: g.Name})
	}
	return groups, nil
}

func (c *Client) GroupProjects(ctx context.Context, groupID int64) ([]domain.Project, error) {
	var payload []projectPayload
	path := fmt.Sprintf("%s/groups/%d/projects", c.baseURL, groupID)
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("list group %d projects: %w", groupID, err)
	}

	projects := make([]domain.Project, 0, len(payload))
	for _, p := range payload {
		projects = append(projects, domain.Project{Id: p.Id})
	}
	return projects, nil
}

func (c *Client) OpenItems(ctx context.Context, projectID int64, kind domain.ItemKind) ([]domain.OpenItem, error) {
	var payload []itemPayload
	path := fmt.Sprintf("%s/projects/%d/%s?state=opened", c.baseURL, projectID, kind)
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, fmt.Errorf("list project %d open %s: %w", projectID, kind, err)
	}

	items := make([]domain.OpenItem, 0, len(payload))
	for _, it := range payload {
		createdAt, err := time.Parse(createdAtLayout, it.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", it.CreatedAt, err)
		}
		items = append(items, domain.OpenItem{
			Title:     it.Title,
			WebURL:    it.WebURL,
			Upvotes:   it.Upvotes,
			Downvotes: it.Downvotes,
			CreatedAt: createdAt,
		})
	}
	return items, nil
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Private-Token", c.token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gitlab request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		c.log.Warn("gitlab request failed",
			zap.String("url", req.URL.Path),
			zap.Int("status", res.StatusCode),
		)
		return fmt.Errorf("gitlab status %d: %s", res.StatusCode, string(body))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gitlab response: %w", err)
	}
	return nil
}

type groupPayload struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type projectPayload struct {
	Id int64 `json:"id"`
}

type itemPayload struct {
	Title     string `json:"title"`
	WebURL    string `json:"web_url"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	CreatedAt string `json:"created_at"`
}
