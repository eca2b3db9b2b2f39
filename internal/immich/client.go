// Package immich talks to an Immich server: asset upload and albums.
package immich

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/imroc/req/v3"
)

const (
	apiAssets      = "/api/assets"
	apiAlbums      = "/api/albums"
	apiAlbumAssets = "/api/albums/{id}/assets"

	headerAPIKey = "x-api-key"
	deviceID     = "phonesync"
)

type Status int

const (
	Created Status = iota
	Duplicate
)

func (s Status) String() string {
	if s == Duplicate {
		return "duplicate"
	}
	return "created"
}

type Asset struct {
	ID     string
	Status Status
}

type Client struct {
	client *req.Client

	mu     sync.Mutex
	albums map[string]string
}

func New(serverURL, apiKey string) *Client {
	client := req.C().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetCommonHeader(headerAPIKey, apiKey).
		SetCommonHeader("Accept", "application/json").
		SetCommonRetryCount(2).
		SetCommonRetryFixedInterval(time.Second).
		SetTimeout(10 * time.Minute).
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Client{
		client: client,
		albums: make(map[string]string),
	}
}

type uploadResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Upload sends one file. The server answers 201 for a new asset and 200
// with status "duplicate" for content it already has; anything else is an
// error.
func (c *Client) Upload(ctx context.Context, path string) (Asset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, err
	}
	mtime := info.ModTime()
	stamp := mtime.Format(time.RFC3339)

	var body uploadResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetRetryCount(0).
		SetFile("assetData", path).
		SetFormData(map[string]string{
			"deviceAssetId":  fmt.Sprintf("%s-%d", path, mtime.Unix()),
			"deviceId":       deviceID,
			"fileCreatedAt":  stamp,
			"fileModifiedAt": stamp,
			"isFavorite":     "false",
		}).
		SetSuccessResult(&body).
		Post(apiAssets)
	if err != nil {
		return Asset{}, fmt.Errorf("http request error: upload %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusCreated && body.ID != "":
		return Asset{ID: body.ID, Status: Created}, nil
	case resp.StatusCode == http.StatusOK && body.Status == "duplicate":
		return Asset{ID: body.ID, Status: Duplicate}, nil
	}

	return Asset{}, &ErrUploadFailed{
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       resp.String(),
	}
}

type album struct {
	ID        string `json:"id"`
	AlbumName string `json:"albumName"`
}

// Album returns the id of the named album, creating it when the server
// has none by that name. Ids are cached for the life of the client.
func (c *Client) Album(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.albums[name]; ok {
		return id, nil
	}

	var albums []album
	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&albums).
		Get(apiAlbums)
	if err := handleAPIError(resp, err, "list albums"); err != nil {
		return "", err
	}
	for _, a := range albums {
		c.albums[a.AlbumName] = a.ID
	}
	if id, ok := c.albums[name]; ok {
		return id, nil
	}

	var created album
	resp, err = c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"albumName": name}).
		SetSuccessResult(&created).
		Post(apiAlbums)
	if err := handleAPIError(resp, err, "create album"); err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated || created.ID == "" {
		return "", fmt.Errorf("create album %s: unexpected status %d", name, resp.StatusCode)
	}

	c.albums[name] = created.ID
	return created.ID, nil
}

// AddAssets adds the assets to the album.
func (c *Client) AddAssets(ctx context.Context, albumID string, assetIDs ...string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", albumID).
		SetBody(map[string][]string{"ids": assetIDs}).
		Put(apiAlbumAssets)

	return handleAPIError(resp, err, "add to album")
}

// AddToAlbum resolves the album by name and adds the asset to it.
func (c *Client) AddToAlbum(ctx context.Context, name, assetID string) error {
	id, err := c.Album(ctx, name)
	if err != nil {
		return err
	}
	return c.AddAssets(ctx, id, assetID)
}

func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return &ErrAPI{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       resp.String(),
		}
	}
	return nil
}
