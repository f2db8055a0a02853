package netbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

const (
	pluginPath = "/api/plugins/floorplan"
	dcimPath   = "/api/dcim"
)

// Client talks to the floorplan plugin and the dcim api of a netbox instance.
type Client struct {
	log     *zap.SugaredLogger
	client  *retryablehttp.Client
	baseURL string
	token   string
}

// New creates a netbox client. Requests failing with a connection error or a
// server error are retried up to retryMax times.
func New(log *zap.SugaredLogger, baseURL, token string, retryMax int) *Client {
	c := retryablehttp.NewClient()
	c.Logger = leveledLogger{log: log}
	c.RetryMax = retryMax
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 2 * time.Second
	c.HTTPClient.Timeout = 30 * time.Second
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		log:     log,
		client:  c,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
	}
}

type ref struct {
	ID      int    `json:"id"`
	Name    string `json:"name,omitempty"`
	Display string `json:"display,omitempty"`
}

type image struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	File        *string `json:"file"`
	ExternalURL *string `json:"external_url"`
	Filename    string  `json:"filename"`
	Comments    string  `json:"comments"`
}

type floorplanResource struct {
	ID              int                 `json:"id"`
	Display         string              `json:"display"`
	Site            *ref                `json:"site"`
	Location        *ref                `json:"location"`
	AssignedImage   *image              `json:"assigned_image"`
	Width           *float64            `json:"width"`
	Height          *float64            `json:"height"`
	MeasurementUnit floorplan.Unit      `json:"measurement_unit"`
	Canvas          floorplan.RawCanvas `json:"canvas"`
	Created         *time.Time          `json:"created"`
	LastUpdated     *time.Time          `json:"last_updated"`
}

type floorplanList struct {
	Count   int                 `json:"count"`
	Results []floorplanResource `json:"results"`
}

type deviceResource struct {
	floorplan.Device
	Role *floorplan.Role `json:"role"`
	Rack *ref            `json:"rack"`
}

// FindFloorplan returns the floorplan with the given id.
func (c *Client) FindFloorplan(ctx context.Context, id string) (*floorplan.Floorplan, error) {
	var list floorplanList
	err := c.do(ctx, http.MethodGet, pluginPath+"/floorplans/?id="+url.QueryEscape(id), nil, &list)
	if err != nil {
		return nil, err
	}
	if len(list.Results) == 0 {
		return nil, floorplan.NotFound("Floorplan not found")
	}

	res := list.Results[0]
	f := &floorplan.Floorplan{
		Base: floorplan.Base{
			ID:   strconv.Itoa(res.ID),
			Name: res.Display,
		},
		Width:           res.Width,
		Height:          res.Height,
		MeasurementUnit: res.MeasurementUnit,
		Canvas:          res.Canvas,
	}
	if res.Created != nil {
		f.Created = *res.Created
	}
	if res.LastUpdated != nil {
		f.Changed = *res.LastUpdated
	}
	if res.Site != nil {
		f.SiteID = strconv.Itoa(res.Site.ID)
	}
	if res.Location != nil {
		f.LocationID = strconv.Itoa(res.Location.ID)
	}
	if res.AssignedImage != nil {
		img := toImage(res.AssignedImage)
		f.AssignedImageID = &img.ID
		f.AssignedImage = img
	}

	return f, nil
}

// PatchFloorplan writes the canvas, the dimensions and the background image.
// The plugin has no fields for the scale settings, they are kept in the canvas envelope.
func (c *Client) PatchFloorplan(ctx context.Context, id string, patch *floorplan.FloorplanPatch) error {
	payload := map[string]any{}
	if patch.Canvas != nil {
		payload["canvas"] = patch.Canvas
	}
	if patch.Dimensions != nil {
		payload["width"] = patch.Dimensions.Width
		payload["height"] = patch.Dimensions.Height
		payload["measurement_unit"] = patch.Dimensions.Unit
	}
	if patch.Background != nil {
		if patch.Background.ImageID == nil {
			payload["assigned_image"] = nil
		} else {
			imageID, err := strconv.Atoi(*patch.Background.ImageID)
			if err != nil {
				return fmt.Errorf("image id %q is not numeric: %w", *patch.Background.ImageID, err)
			}
			payload["assigned_image"] = imageID
		}
	}
	if len(payload) == 0 {
		return nil
	}

	return c.do(ctx, http.MethodPatch, pluginPath+"/floorplans/"+url.PathEscape(id)+"/", payload, nil)
}

// FindRack returns the rack with the given id.
func (c *Client) FindRack(ctx context.Context, id int) (*floorplan.Rack, error) {
	var rack floorplan.Rack
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/racks/%d/", dcimPath, id), nil, &rack)
	if err != nil {
		return nil, err
	}
	return &rack, nil
}

// FindDevice returns the device with the given id.
func (c *Client) FindDevice(ctx context.Context, id int) (*floorplan.Device, error) {
	var res deviceResource
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/devices/%d/", dcimPath, id), nil, &res)
	if err != nil {
		return nil, err
	}

	device := res.Device
	if device.DeviceRole == nil {
		device.DeviceRole = res.Role
	}
	if res.Rack != nil {
		rackID := res.Rack.ID
		device.RackID = &rackID
	}
	return &device, nil
}

// Health checks if netbox answers its status endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/status/", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, result any) error {
	var raw any
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		raw = data
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, raw)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debugw("netbox request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("netbox request %s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return floorplan.NotFound("%s %s not found", method, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("netbox returned %d for %s %s: %s", resp.StatusCode, method, path, string(data))
	}

	if result == nil {
		return nil
	}
	err = json.Unmarshal(data, result)
	if err != nil {
		return fmt.Errorf("cannot decode netbox response of %s %s: %w", method, path, err)
	}
	return nil
}

func toImage(i *image) *floorplan.Image {
	img := &floorplan.Image{
		Base: floorplan.Base{
			ID:   strconv.Itoa(i.ID),
			Name: i.Name,
		},
		Filename: i.Filename,
		Comments: i.Comments,
	}
	if i.File != nil {
		img.File = *i.File
	}
	if i.ExternalURL != nil {
		img.ExternalURL = *i.ExternalURL
	}
	return img
}

type leveledLogger struct {
	log *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnw(msg, keysAndValues...)
}
