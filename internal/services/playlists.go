package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/desertthunder/melody/internal/models"
)

// PlaylistAPI wraps the playlist endpoints of the resource domain.
type PlaylistAPI struct {
	client *Client
}

// NewPlaylistAPI creates a [PlaylistAPI] on top of the resource [Client].
func NewPlaylistAPI(client *Client) *PlaylistAPI {
	return &PlaylistAPI{client: client}
}

// List fetches the signed-in user's playlists.
//
// Calls GET /playlists under the client's base path.
func (a *PlaylistAPI) List(ctx context.Context) (Result[[]models.Playlist], error) {
	return Call[[]models.Playlist](ctx, a.client, http.MethodGet, "/playlists", nil, nil)
}

// Delete removes a playlist. The response payload is not required.
func (a *PlaylistAPI) Delete(ctx context.Context, id int64) (Result[json.RawMessage], error) {
	return Call[json.RawMessage](ctx, a.client, http.MethodDelete, "/playlists/"+strconv.FormatInt(id, 10), nil, nil)
}
