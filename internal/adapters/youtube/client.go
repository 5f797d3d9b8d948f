package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"song-queue-bot/internal/domain"
	"song-queue-bot/internal/infra/metrics"
)

const (
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	playlistPageSize = 50
	playlistMaxPages = 4
)

// Client реализует domain.MediaProvider поверх YouTube Data API v3.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

var _ domain.MediaProvider = (*Client)(nil)

// NewClient создаёт клиента API.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// LookupByID возвращает метаданные видео.
func (c *Client) LookupByID(ctx context.Context, videoID string) (domain.MediaInfo, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,status")
	params.Set("id", videoID)
	var resp videosResponse
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return domain.MediaInfo{}, err
	}
	if len(resp.Items) == 0 {
		return domain.MediaInfo{}, domain.ErrMediaNotFound
	}
	item := resp.Items[0]
	return domain.MediaInfo{
		VideoID:        item.ID,
		Title:          item.Snippet.Title,
		DurationCode:   item.ContentDetails.Duration,
		Embeddable:     item.Status.Embeddable,
		AllowedRegions: item.ContentDetails.RegionRestriction.Allowed,
	}, nil
}

// Search возвращает до limit кандидатов по поисковой фразе. У
// результатов-каналов идентификатор видео пуст.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	var resp searchResponse
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Items))
	for _, item := range resp.Items {
		results = append(results, domain.SearchResult{
			VideoID: item.ID.VideoID,
			Title:   item.Snippet.Title,
		})
	}
	return results, nil
}

// PlaylistItems возвращает идентификаторы видео плейлиста, постранично,
// но не больше playlistMaxPages страниц.
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]string, error) {
	var (
		ids       []string
		pageToken string
	)
	for page := 0; page < playlistMaxPages; page++ {
		params := url.Values{}
		params.Set("part", "contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", strconv.Itoa(playlistPageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp playlistItemsResponse
		if err := c.get(ctx, "playlistItems", params, &resp); err != nil {
			return nil, err
		}
		for _, item := range resp.Items {
			if item.ContentDetails.VideoID != "" {
				ids = append(ids, item.ContentDetails.VideoID)
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	if len(ids) == 0 {
		return nil, domain.ErrMediaNotFound
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	if c.apiKey == "" {
		return fmt.Errorf("youtube: api key is empty")
	}
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/" + resource + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("youtube: build request: %w", err)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveNetworkRequest("youtube", resource, resource, start, err)
		return fmt.Errorf("youtube: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveNetworkRequest("youtube", resource, resource, start, err)
		return fmt.Errorf("youtube: read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		metrics.ObserveNetworkRequest("youtube", resource, resource, start, nil)
		return domain.ErrMediaNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr apiErrorResponse
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			err = fmt.Errorf("youtube: %s", apiErr.Error.Message)
		} else {
			err = fmt.Errorf("youtube: unexpected status %d", resp.StatusCode)
		}
		metrics.ObserveNetworkRequest("youtube", resource, resource, start, err)
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.ObserveNetworkRequest("youtube", resource, resource, start, err)
		return fmt.Errorf("youtube: decode response: %w", err)
	}
	metrics.ObserveNetworkRequest("youtube", resource, resource, start, nil)
	return nil
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration          string `json:"duration"`
			RegionRestriction struct {
				Allowed []string `json:"allowed"`
				Blocked []string `json:"blocked"`
			} `json:"regionRestriction"`
		} `json:"contentDetails"`
		Status struct {
			Embeddable bool `json:"embeddable"`
		} `json:"status"`
	} `json:"items"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
