// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storyblok is a client for the spaces and components endpoints of the
// Storyblok management API.
package storyblok

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	json "github.com/goccy/go-json"

	"github.com/bartekus/devflow/internal/schema"
	"github.com/bartekus/devflow/internal/transport"
)

// DefaultBaseURL is the management API root.
const DefaultBaseURL = "https://mapi.storyblok.com/v1"

// Space is a remote space.
type Space struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RemoteComponent is a component as stored remotely. Raw keeps every attribute
// the API returned, in order.
type RemoteComponent struct {
	ID   int64
	Name string
	Raw  *schema.Object
}

// Client issues management API calls through a shared transport.
type Client struct {
	baseURL string
	token   string
	tr      *transport.Transport
}

// NewClient returns a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string, tr *transport.Transport) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tr == nil {
		tr = transport.New()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, tr: tr}
}

// ListSpaces returns the spaces visible to the token.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	body, err := c.call(ctx, http.MethodGet, "/spaces/", nil)
	if err != nil {
		return nil, err
	}
	var spaces []Space
	if err := json.Unmarshal(envelope(body, "spaces"), &spaces); err != nil {
		return nil, fmt.Errorf("decoding spaces: %w", err)
	}
	return spaces, nil
}

// CreateSpace creates a space named name.
func (c *Client) CreateSpace(ctx context.Context, name string) (Space, error) {
	payload, err := json.Marshal(map[string]any{"space": map[string]string{"name": name}})
	if err != nil {
		return Space{}, err
	}
	body, err := c.call(ctx, http.MethodPost, "/spaces/", payload)
	if err != nil {
		return Space{}, err
	}
	var s Space
	if err := json.Unmarshal(envelope(body, "space"), &s); err != nil {
		return Space{}, fmt.Errorf("decoding space: %w", err)
	}
	return s, nil
}

// ListComponents returns every component of a space.
func (c *Client) ListComponents(ctx context.Context, spaceID string) ([]RemoteComponent, error) {
	body, err := c.call(ctx, http.MethodGet, componentsPath(spaceID), nil)
	if err != nil {
		return nil, err
	}

	list := envelope(body, "components")
	if len(list) == 0 || string(list) == "null" {
		return []RemoteComponent{}, nil
	}
	var (
		out     = []RemoteComponent{}
		itemErr error
	)
	_, err = jsonparser.ArrayEach(list, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if itemErr != nil {
			return
		}
		if dataType != jsonparser.Object {
			itemErr = fmt.Errorf("component entry is %s, not an object", dataType)
			return
		}
		rc, err := decodeComponent(value)
		if err != nil {
			itemErr = err
			return
		}
		out = append(out, rc)
	})
	if err != nil {
		return nil, fmt.Errorf("decoding components: %w", err)
	}
	if itemErr != nil {
		return nil, fmt.Errorf("decoding components: %w", itemErr)
	}
	return out, nil
}

// CreateComponent creates comp in a space.
func (c *Client) CreateComponent(ctx context.Context, spaceID string, comp schema.Component) (RemoteComponent, error) {
	return c.writeComponent(ctx, http.MethodPost, componentsPath(spaceID), comp)
}

// UpdateComponent replaces the component with remote id.
func (c *Client) UpdateComponent(ctx context.Context, spaceID string, id int64, comp schema.Component) (RemoteComponent, error) {
	path := componentsPath(spaceID) + strconv.FormatInt(id, 10)
	return c.writeComponent(ctx, http.MethodPut, path, comp)
}

func (c *Client) writeComponent(ctx context.Context, method, path string, comp schema.Component) (RemoteComponent, error) {
	if err := schema.Validate(comp); err != nil {
		return RemoteComponent{}, err
	}
	payload, err := json.Marshal(struct {
		Component schema.Component `json:"component"`
	}{comp})
	if err != nil {
		return RemoteComponent{}, fmt.Errorf("encoding component %q: %w", comp.Name, err)
	}
	body, err := c.call(ctx, method, path, payload)
	if err != nil {
		return RemoteComponent{}, err
	}
	rc, err := decodeComponent(envelope(body, "component"))
	if err != nil {
		return RemoteComponent{}, fmt.Errorf("decoding component %q: %w", comp.Name, err)
	}
	return rc, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	header := http.Header{}
	header.Set("Authorization", c.token)
	header.Set("Accept", "application/json")
	if payload != nil {
		header.Set("Content-Type", "application/json")
	}
	resp, err := c.tr.Do(ctx, transport.Request{
		Method: method,
		URL:    c.baseURL + path,
		Body:   payload,
		Header: header,
	})
	if err != nil {
		return nil, Classify(err, payload)
	}
	return resp.Body, nil
}

func componentsPath(spaceID string) string {
	return "/spaces/" + url.PathEscape(spaceID) + "/components/"
}

// envelope returns body[key] when present, otherwise body itself.
func envelope(body []byte, key string) []byte {
	v, dt, _, err := jsonparser.Get(body, key)
	if err != nil || dt == jsonparser.NotExist || dt == jsonparser.Null {
		return body
	}
	return v
}

func decodeComponent(data []byte) (RemoteComponent, error) {
	obj, err := schema.ParseObject(data)
	if err != nil {
		return RemoteComponent{}, err
	}
	rc := RemoteComponent{Raw: obj}
	rc.Name, _ = obj.String("name")
	if id, err := jsonparser.GetInt(data, "id"); err == nil {
		rc.ID = id
	}
	return rc, nil
}
