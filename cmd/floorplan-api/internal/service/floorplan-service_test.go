package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	restful "github.com/emicklei/go-restful/v3"
	"github.com/metal-stack/metal-lib/httperrors"
	"github.com/metal-stack/metal-lib/pkg/pointer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/datastore"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
	v1 "github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/service/v1"
	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/testdata"
)

type memBackend struct {
	floorplans map[string]floorplan.Floorplan
	patches    []*floorplan.FloorplanPatch
	patchErr   error
}

func newMemBackend(fs ...floorplan.Floorplan) *memBackend {
	b := &memBackend{floorplans: map[string]floorplan.Floorplan{}}
	for _, f := range fs {
		b.floorplans[f.ID] = f
	}
	return b
}

func (b *memBackend) FindFloorplan(_ context.Context, id string) (*floorplan.Floorplan, error) {
	f, ok := b.floorplans[id]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (b *memBackend) PatchFloorplan(_ context.Context, id string, patch *floorplan.FloorplanPatch) error {
	if b.patchErr != nil {
		return b.patchErr
	}
	b.patches = append(b.patches, patch)
	patched, err := patch.Apply(b.floorplans[id])
	if err != nil {
		return err
	}
	b.floorplans[id] = patched
	return nil
}

func (b *memBackend) storedObjects(t *testing.T, id string) floorplan.Objects {
	c, err := b.floorplans[id].Canvas.Decode()
	require.NoError(t, err)
	return c.Objects
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []floorplan.FloorplanEvent
}

func (p *recordingPublisher) Publish(topic string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, data.(floorplan.FloorplanEvent))
	return nil
}

type recordingUploader struct {
	keys         []string
	contentTypes []string
	data         [][]byte
}

func (u *recordingUploader) Upload(_ context.Context, key, contentType string, data []byte) error {
	u.keys = append(u.keys, key)
	u.contentTypes = append(u.contentTypes, contentType)
	u.data = append(u.data, data)
	return nil
}

func serve(t *testing.T, ws *restful.WebService, method, path string, body any) *httptest.ResponseRecorder {
	container := restful.NewContainer().Add(ws)

	var req *http.Request
	if body != nil {
		js, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewBuffer(js))
		req.Header.Add("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	container.ServeHTTP(w, req)
	return w
}

func decodeFloorplan(t *testing.T, w *httptest.ResponseRecorder) v1.FloorplanResponse {
	var result v1.FloorplanResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	return result
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httperrors.HTTPErrorResponse {
	var result httperrors.HTTPErrorResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	return result
}

func findObject(objects floorplan.Objects, id string) floorplan.Object {
	for _, o := range objects {
		if o.Base().ID == id {
			return o
		}
	}
	return nil
}

func TestGetFloorplan(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/1", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)

	require.Equal(t, testdata.Fp1.ID, result.ID)
	require.Equal(t, testdata.Fp1.Name, *result.Name)
	require.Equal(t, testdata.Fp1.SiteID, *result.SiteID)
	require.Equal(t, "6.0.0", result.Version)
	require.Len(t, result.Objects, 4)
	require.Equal(t, &v1.CanvasExtent{Width: 2000, Height: 1000}, result.Boundary)
	require.Equal(t, "1:100", result.Scale.Label)
	require.True(t, result.Scale.Standard)
	require.Equal(t, float64(100), result.Scale.GridSize)
	require.NotNil(t, result.AssignedImage)
	require.Equal(t, testdata.Img1.ID, result.AssignedImage.ID)
	require.Equal(t, testdata.Img1.File, *result.AssignedImage.File)
}

func TestGetFloorplanStringCanvas(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/2", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)

	require.Equal(t, floorplan.UnitFeet, result.MeasurementUnit)
	require.Equal(t, "5.3.0", result.Version)
	require.Nil(t, result.Boundary)
	require.Len(t, result.Objects, 1)
	label, ok := result.Objects[0].(*floorplan.LabelObject)
	require.True(t, ok)
	require.Equal(t, "Entrance", label.Text)
}

func TestGetFloorplanMalformedCanvas(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/3", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Empty(t, result.Objects)
	require.Equal(t, floorplan.UnitMeters, result.MeasurementUnit)
}

func TestGetFloorplanNotFound(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/999", nil)

	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	result := decodeError(t, w)
	require.Equal(t, http.StatusNotFound, result.StatusCode)
	require.Contains(t, result.Message, "Failed to load floorplan")
	require.Contains(t, result.Message, "999")
}

func TestGetFloorplanBackendError(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/404", nil)

	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	result := decodeError(t, w)
	require.Contains(t, result.Message, "Failed to load floorplan")
}

func TestSaveFloorplan(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, publisher, nil)
	wall := floorplan.NewWall()
	w := serve(t, service, "POST", "/v1/floorplan/1", v1.FloorplanSaveRequest{
		Objects: floorplan.Objects{wall},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Len(t, result.Objects, 1)

	stored := backend.storedObjects(t, "1")
	require.Len(t, stored, 1)
	require.Equal(t, wall.ID, stored[0].Base().ID)

	require.Len(t, backend.patches, 1)
	require.NotNil(t, backend.patches[0].Scale)
	require.NotNil(t, backend.patches[0].Dimensions)

	require.Equal(t, []string{"floorplan"}, publisher.topics)
	require.Equal(t, floorplan.EventSaved, publisher.events[0].Type)
	require.Equal(t, "1", publisher.events[0].FloorplanID)
	require.Equal(t, 1, publisher.events[0].Objects[floorplan.TypeWall])
	require.NotEmpty(t, publisher.events[0].ID)
}

func TestSaveFloorplanFails(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	backend.patchErr = floorplan.Conflict("floorplan was changed")

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1", v1.FloorplanSaveRequest{})

	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	result := decodeError(t, w)
	require.Contains(t, result.Message, "Failed to save floorplan")
}

func TestUpdateDimensions(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, publisher, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/dimensions", v1.FloorplanDimensionsRequest{
		Width:  30,
		Height: 20,
		Unit:   floorplan.UnitMeters,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Equal(t, 30.0, *result.Width)
	require.Equal(t, 20.0, *result.Height)
	require.Equal(t, &v1.CanvasExtent{Width: 3000, Height: 2000}, result.Boundary)

	stored := backend.floorplans["1"]
	require.Equal(t, 30.0, *stored.Width)
	require.Equal(t, 20.0, *stored.Height)

	boundary, ok := findObject(backend.storedObjects(t, "1"), floorplan.BoundaryID).(*floorplan.BoundaryObject)
	require.True(t, ok)
	require.Equal(t, 3000.0, boundary.Width)
	require.Equal(t, 2000.0, boundary.Height)

	require.Len(t, publisher.events, 1)
	require.Equal(t, floorplan.EventDimensions, publisher.events[0].Type)
}

func TestUpdateDimensionsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload v1.FloorplanDimensionsRequest
	}{
		{
			name:    "zero width",
			payload: v1.FloorplanDimensionsRequest{Width: 0, Height: 10, Unit: floorplan.UnitMeters},
		},
		{
			name:    "negative height",
			payload: v1.FloorplanDimensionsRequest{Width: 10, Height: -1, Unit: floorplan.UnitMeters},
		},
		{
			name:    "unknown unit",
			payload: v1.FloorplanDimensionsRequest{Width: 10, Height: 10, Unit: "yd"},
		},
		{
			name:    "huge width",
			payload: v1.FloorplanDimensionsRequest{Width: 1e300, Height: 10, Unit: floorplan.UnitMeters},
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend(testdata.Fp1)
			service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

			w := serve(t, service, "POST", "/v1/floorplan/1/dimensions", tt.payload)

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.Empty(t, backend.patches)
		})
	}
}

func TestUpdateDimensionsFails(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	backend.patchErr = errors.New("connection reset")

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/dimensions", v1.FloorplanDimensionsRequest{
		Width:  30,
		Height: 20,
		Unit:   floorplan.UnitMeters,
	})

	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	result := decodeError(t, w)
	require.Contains(t, result.Message, "Failed to update dimensions")
	require.Equal(t, 20.0, *backend.floorplans["1"].Width)
}

func TestChangeScale(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, publisher, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/scale", v1.FloorplanScaleRequest{
		ScaleFactor:     200,
		RackScaleFactor: pointer.Pointer(50.0),
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Equal(t, 200.0, result.Scale.ScaleFactor)
	require.Equal(t, 50.0, result.Scale.RackScaleFactor)
	require.Equal(t, 100.0, result.Scale.DeviceScaleFactor)
	require.Equal(t, 50.0, result.Scale.DisplayScale)
	require.Equal(t, &v1.CanvasExtent{Width: 1000, Height: 500}, result.Boundary)

	wall := findObject(result.Objects, "wall_1")
	require.NotNil(t, wall)
	require.Equal(t, 100.0, wall.Base().X)
	require.Equal(t, 150.0, wall.Base().Y)

	stored := backend.floorplans["1"]
	require.Equal(t, 200.0, stored.ScaleFactor)
	require.Equal(t, 50.0, stored.RackScaleFactor)

	boundary, ok := findObject(backend.storedObjects(t, "1"), floorplan.BoundaryID).(*floorplan.BoundaryObject)
	require.True(t, ok)
	require.Equal(t, 1000.0, boundary.Width)
	require.Equal(t, 0.0, boundary.X)

	require.Len(t, publisher.events, 1)
	require.Equal(t, floorplan.EventRescaled, publisher.events[0].Type)
	require.Equal(t, 200.0, publisher.events[0].ScaleFactor)
}

func TestChangeScaleInvalid(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/scale", v1.FloorplanScaleRequest{ScaleFactor: 0})

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Empty(t, backend.patches)

	w = serve(t, service, "POST", "/v1/floorplan/1/scale", v1.FloorplanScaleRequest{ScaleFactor: 100, DeviceScaleFactor: pointer.Pointer(-1.0)})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Empty(t, backend.patches)
}

func TestUpdateBackground(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, publisher, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/background", v1.FloorplanBackgroundRequest{ImageID: pointer.Pointer("2")})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Equal(t, "2", *result.AssignedImageID)
	require.Equal(t, "2", *backend.floorplans["1"].AssignedImageID)
	require.Len(t, result.Objects, 4)

	w = serve(t, service, "POST", "/v1/floorplan/1/background", v1.FloorplanBackgroundRequest{})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeFloorplan(t, w)
	require.Nil(t, result.AssignedImageID)
	require.Nil(t, backend.floorplans["1"].AssignedImageID)

	require.Len(t, publisher.events, 2)
	require.Equal(t, floorplan.EventBackground, publisher.events[1].Type)
}

func TestUpdateBackgroundFails(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	backend.patchErr = errors.New("bad gateway")

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/background", v1.FloorplanBackgroundRequest{})

	require.Equal(t, http.StatusInternalServerError, w.Code, w.Body.String())
	result := decodeError(t, w)
	require.Contains(t, result.Message, "Failed to update background")
}

func TestAddObject(t *testing.T) {
	tests := []struct {
		name     string
		payload  v1.ObjectCreateRequest
		wantType floorplan.ObjectType
	}{
		{
			name:     "wall",
			payload:  v1.ObjectCreateRequest{Type: floorplan.TypeWall},
			wantType: floorplan.TypeWall,
		},
		{
			name:     "area",
			payload:  v1.ObjectCreateRequest{Type: floorplan.TypeArea},
			wantType: floorplan.TypeArea,
		},
		{
			name:     "label",
			payload:  v1.ObjectCreateRequest{Type: floorplan.TypeLabel, Text: pointer.Pointer("Cold aisle"), Color: pointer.Pointer("#0000ff")},
			wantType: floorplan.TypeLabel,
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			backend := newMemBackend(testdata.Fp1)
			service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

			w := serve(t, service, "PUT", "/v1/floorplan/1/object", tt.payload)

			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			result := decodeFloorplan(t, w)
			require.Len(t, result.Objects, 5)

			added := result.Objects[4]
			require.Equal(t, tt.wantType, added.Base().Type)
			if label, ok := added.(*floorplan.LabelObject); ok {
				require.Equal(t, "Cold aisle", label.Text)
				require.Equal(t, "#0000ff", label.Fill)
			}
			require.Len(t, backend.storedObjects(t, "1"), 5)
		})
	}
}

func TestAddObjectInvalidType(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "PUT", "/v1/floorplan/1/object", v1.ObjectCreateRequest{Type: floorplan.TypeRack})

	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	require.Empty(t, backend.patches)
}

func TestPlaceRacks(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, ds, nil, nil)
	w := serve(t, service, "PUT", "/v1/floorplan/1/rack", v1.AssetPlaceRequest{IDs: []int{1, 2}, Advanced: true})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Len(t, result.Objects, 6)

	first, ok := result.Objects[4].(*floorplan.RackObject)
	require.True(t, ok)
	require.Equal(t, testdata.Rack1.ID, first.RackID)
	require.Equal(t, 60.0, first.Width)
	require.Equal(t, 100.0, first.Height)
	require.NotNil(t, first.Labels.Tenant)
	require.Equal(t, "acme", *first.Labels.Tenant)

	second, ok := result.Objects[5].(*floorplan.RackObject)
	require.True(t, ok)
	require.Equal(t, testdata.Rack2.ID, second.RackID)
	require.Equal(t, 80.0, second.Height)
}

func TestPlaceRacksNotFound(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, ds, nil, nil)
	w := serve(t, service, "PUT", "/v1/floorplan/1/rack", v1.AssetPlaceRequest{IDs: []int{1, 999}})

	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	require.Empty(t, backend.patches)

	w = serve(t, service, "PUT", "/v1/floorplan/1/rack", v1.AssetPlaceRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestPlaceDevices(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, ds, nil, nil)
	w := serve(t, service, "PUT", "/v1/floorplan/1/device", v1.AssetPlaceRequest{IDs: []int{2}, Color: pointer.Pointer("#ff00ff")})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Len(t, result.Objects, 5)

	device, ok := result.Objects[4].(*floorplan.DeviceObject)
	require.True(t, ok)
	require.Equal(t, testdata.Device2.ID, device.DeviceID)
	require.Equal(t, "#ff00ff", device.Fill)
	require.InDelta(t, 48.26, device.Width, 1e-9)
	require.Equal(t, 60.0, device.Height)
}

func TestUpdateObject(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "POST", "/v1/floorplan/1/object/wall_1", floorplan.Patch{X: pointer.Pointer(10.0), Width: pointer.Pointer(20.0)})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	wall, ok := findObject(backend.storedObjects(t, "1"), "wall_1").(*floorplan.WallObject)
	require.True(t, ok)
	require.Equal(t, 10.0, wall.X)
	require.Equal(t, 300.0, wall.Y)
	require.Equal(t, 20.0, wall.Width)

	w = serve(t, service, "POST", "/v1/floorplan/1/object/unknown", floorplan.Patch{X: pointer.Pointer(10.0)})
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	require.Len(t, backend.patches, 1)
}

func TestDeleteObject(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "DELETE", "/v1/floorplan/1/object/rack_1", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeFloorplan(t, w)
	require.Len(t, result.Objects, 3)
	require.Nil(t, findObject(backend.storedObjects(t, "1"), "rack_1"))

	w = serve(t, service, "DELETE", "/v1/floorplan/1/object/rack_1", nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestMappedAssets(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/1/mapped", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result v1.MappedAssetsResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Equal(t, []int{1}, result.RackIDs)
	require.Equal(t, []int{1}, result.DeviceIDs)
}

func TestRuler(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/1/ruler", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result floorplan.Ruler
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)

	require.Len(t, result.Horizontal, 11)
	require.Equal(t, floorplan.Tick{Position: 2000, Label: "20m"}, result.Horizontal[10])
	require.Len(t, result.Vertical, 6)
	require.Equal(t, floorplan.Tick{Position: 1000, Label: "10m"}, result.Vertical[5])
}

func TestRulerWithStoredHugeDimensions(t *testing.T) {
	fp := testdata.Fp1
	fp.Width = pointer.Pointer(1e300)
	fp.Height = pointer.Pointer(-10.0)
	backend := newMemBackend(fp)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "GET", "/v1/floorplan/1/ruler", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result floorplan.Ruler
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)

	require.Len(t, result.Horizontal, floorplan.MaxRulerTicks)
	require.Len(t, result.Vertical, 51)
}

func TestExport(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)
	uploader := &recordingUploader{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, uploader)
	w := serve(t, service, "POST", "/v1/floorplan/1/export", v1.ExportRequest{
		ExportOptions: floorplan.ExportOptions{
			Format:   floorplan.FormatPDF,
			Filename: "hall-a",
		},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result v1.ExportResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)

	require.Equal(t, "hall-a.pdf", result.Options.Filename)
	require.Equal(t, floorplan.PaperA4, result.Options.PaperSize)
	require.Equal(t, floorplan.Landscape, result.Options.Orientation)
	require.Equal(t, floorplan.BoundingBox{X: 0, Y: 0, Width: 2000, Height: 1000}, result.Region)
	require.NotNil(t, result.Page)
	require.Equal(t, 297.0, result.Page.PageWidth)
	require.Equal(t, 210.0, result.Page.PageHeight)
	require.NotEmpty(t, result.SnapshotID)
	require.NotEmpty(t, result.Size)
	require.Equal(t, "application/pdf", result.ContentType)

	require.NotNil(t, result.Key)
	require.Equal(t, "netbox-floorplan/3_hall-a.pdf.json", *result.Key)
	require.Equal(t, []string{"netbox-floorplan/3_hall-a.pdf.json"}, uploader.keys)
	require.Equal(t, []string{"application/json"}, uploader.contentTypes)

	var snapshot exportSnapshot
	err = json.Unmarshal(uploader.data[0], &snapshot)
	require.NoError(t, err)
	require.Equal(t, result.SnapshotID, snapshot.ID)
	require.Equal(t, "1", snapshot.FloorplanID)
	require.Len(t, snapshot.Objects, 4)
}

func TestExportWithoutUploader(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)
	w := serve(t, service, "POST", "/v1/floorplan/1/export", v1.ExportRequest{
		ExportOptions: floorplan.ExportOptions{Format: floorplan.FormatPNG},
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result v1.ExportResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Nil(t, result.Key)
	require.Nil(t, result.Page)
	require.Equal(t, 2.0, result.Options.Scale)
	require.Equal(t, "image/png", result.ContentType)
}

func TestExportInvalid(t *testing.T) {
	empty := floorplan.Floorplan{Base: floorplan.Base{ID: "5"}}
	backend := newMemBackend(testdata.Fp1, empty)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "POST", "/v1/floorplan/1/export", v1.ExportRequest{
		ExportOptions: floorplan.ExportOptions{Format: "svg"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = serve(t, service, "POST", "/v1/floorplan/5/export", v1.ExportRequest{
		ExportOptions: floorplan.ExportOptions{Format: floorplan.FormatPNG},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = serve(t, service, "POST", "/v1/floorplan/5/export", v1.ExportRequest{
		ExportOptions: floorplan.ExportOptions{Format: floorplan.FormatPNG},
		StageWidth:    800,
		StageHeight:   600,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func objectGauge(t *testing.T, floorplanID string, objectType floorplan.ObjectType) float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "floorplan_canvas_objects" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["floorplan"] == floorplanID && labels["type"] == string(objectType) {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("no object gauge for floorplan %q and type %q", floorplanID, objectType)
	return 0
}

func TestObjectGaugesFollowCanvasChanges(t *testing.T) {
	fp := testdata.Fp1
	fp.ID = "gauge-1"
	backend := newMemBackend(fp)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "GET", "/v1/floorplan/gauge-1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 1.0, objectGauge(t, "gauge-1", floorplan.TypeWall))
	require.Equal(t, 1.0, objectGauge(t, "gauge-1", floorplan.TypeRack))

	w = serve(t, service, "PUT", "/v1/floorplan/gauge-1/object", v1.ObjectCreateRequest{Type: floorplan.TypeWall})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, 2.0, objectGauge(t, "gauge-1", floorplan.TypeWall))

	w = serve(t, service, "DELETE", "/v1/floorplan/gauge-1/object/rack_1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, 0.0, objectGauge(t, "gauge-1", floorplan.TypeRack))
}

func TestListFloorplans(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)

	w := serve(t, service, "GET", "/v1/floorplan", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result []v1.FloorplanSummaryResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Len(t, result, len(testdata.TestFloorplans))
	require.Equal(t, testdata.Fp1.ID, result[0].ID)
	require.Equal(t, testdata.Fp1.Name, *result[0].Name)
	require.Equal(t, 20.0, *result[0].Width)

	w = serve(t, service, "GET", "/v1/floorplan?site=3", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = nil
	err = json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Len(t, result, 2)
	for _, f := range result {
		require.Equal(t, "3", *f.SiteID)
	}
}

func TestFloorplanRegistryNeedsRegistryBackend(t *testing.T) {
	backend := newMemBackend(testdata.Fp1)

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), backend, nil, nil, nil)

	w := serve(t, service, "GET", "/v1/floorplan", nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestCreateFloorplan(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, publisher, nil)
	w := serve(t, service, "PUT", "/v1/floorplan", v1.FloorplanCreateRequest{
		Describable: v1.Describable{Name: pointer.Pointer("hall-c")},
		ID:          "10",
		SiteID:      pointer.Pointer("3"),
		Width:       pointer.Pointer(20.0),
		Height:      pointer.Pointer(10.0),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result v1.FloorplanSummaryResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Equal(t, "10", result.ID)
	require.Equal(t, "hall-c", *result.Name)
	require.Equal(t, "3", *result.SiteID)
	require.Equal(t, floorplan.UnitMeters, result.MeasurementUnit)
	require.Equal(t, float64(floorplan.DefaultScaleFactor), result.ScaleFactor)

	require.Len(t, publisher.events, 1)
	require.Equal(t, floorplan.EventCreated, publisher.events[0].Type)
	require.Equal(t, "10", publisher.events[0].FloorplanID)
	require.Equal(t, 1, publisher.events[0].Objects[floorplan.TypeBoundary])
}

func TestCreateFloorplanInvalid(t *testing.T) {
	tests := []struct {
		name    string
		payload v1.FloorplanCreateRequest
	}{
		{
			name:    "width without height",
			payload: v1.FloorplanCreateRequest{Width: pointer.Pointer(10.0)},
		},
		{
			name:    "negative height",
			payload: v1.FloorplanCreateRequest{Width: pointer.Pointer(10.0), Height: pointer.Pointer(-1.0)},
		},
		{
			name:    "huge width",
			payload: v1.FloorplanCreateRequest{Width: pointer.Pointer(1e300), Height: pointer.Pointer(10.0)},
		},
		{
			name:    "unknown unit",
			payload: v1.FloorplanCreateRequest{Unit: pointer.Pointer(floorplan.Unit("yd"))},
		},
	}
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			ds, mock := datastore.InitMockDB(t)
			testdata.InitMockDBData(mock)

			service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, nil, nil)
			w := serve(t, service, "PUT", "/v1/floorplan", tt.payload)

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDeleteFloorplan(t *testing.T) {
	ds, mock := datastore.InitMockDB(t)
	testdata.InitMockDBData(mock)
	publisher := &recordingPublisher{}

	service := NewFloorplan(zaptest.NewLogger(t).Sugar(), ds, ds, publisher, nil)

	w := serve(t, service, "DELETE", "/v1/floorplan/1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result v1.FloorplanSummaryResponse
	err := json.NewDecoder(w.Result().Body).Decode(&result)
	require.NoError(t, err)
	require.Equal(t, testdata.Fp1.ID, result.ID)
	require.Len(t, publisher.events, 1)
	require.Equal(t, floorplan.EventDeleted, publisher.events[0].Type)

	w = serve(t, service, "DELETE", "/v1/floorplan/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
