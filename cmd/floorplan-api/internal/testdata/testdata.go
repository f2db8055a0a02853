package testdata

import (
	"fmt"

	"github.com/metal-stack/metal-lib/pkg/pointer"
	r "gopkg.in/rethinkdb/rethinkdb-go.v6"

	"github.com/metal-stack/floorplan-api/cmd/floorplan-api/internal/floorplan"
)

// If you want to add some Test Data, add it also to the following places:
// -- To the Mocks, ==> eof
// -- To the corresponding lists,

var (
	// Floorplans
	Fp1 = floorplan.Floorplan{
		Base: floorplan.Base{
			ID:   "1",
			Name: "hall-a",
		},
		SiteID:            "3",
		AssignedImageID:   pointer.Pointer("1"),
		Width:             pointer.Pointer(20.0),
		Height:            pointer.Pointer(10.0),
		MeasurementUnit:   floorplan.UnitMeters,
		ScaleFactor:       100,
		RackScaleFactor:   100,
		DeviceScaleFactor: 100,
		Canvas:            Fp1Canvas,
	}
	Fp2 = floorplan.Floorplan{
		Base: floorplan.Base{
			ID:   "2",
			Name: "hall-b",
		},
		SiteID:          "3",
		LocationID:      "7",
		MeasurementUnit: floorplan.UnitFeet,
		Canvas:          `"{\"version\":\"5.3.0\",\"objects\":[{\"id\":\"label_1\",\"type\":\"label\",\"x\":10,\"y\":10,\"text\":\"Entrance\",\"fontSize\":16,\"fill\":\"#000000\",\"fontFamily\":\"Arial\",\"draggable\":true}]}"`,
	}
	Fp3 = floorplan.Floorplan{
		Base: floorplan.Base{
			ID:   "3",
			Name: "broken",
		},
		Width:  pointer.Pointer(50.0),
		Height: pointer.Pointer(30.0),
		Canvas: `"{not valid json"`,
	}
	Fp1Canvas = floorplan.RawCanvas(`{"version":"6.0.0","objects":[` +
		`{"id":"floorplan_boundary","type":"floorplan_boundary","x":0,"y":0,"draggable":true,"width":2000,"height":1000,"fill":"transparent","stroke":"#dee2e6","strokeWidth":2},` +
		`{"id":"wall_1","type":"wall","x":200,"y":300,"draggable":true,"width":10,"height":100,"fill":"#6c757d","stroke":"#000000","strokeWidth":1},` +
		`{"id":"rack_1","type":"rack","x":400,"y":100,"draggable":true,"width":60,"height":100,"fill":"#28a745","stroke":"#000000","strokeWidth":2,"rackId":1,"rackName":"rack-01","rackData":{"id":1,"name":"rack-01"},"labels":{"name":"rack-01"}},` +
		`{"id":"device_1","type":"device","x":500,"y":100,"draggable":true,"width":48.26,"height":60,"fill":"#17a2b8","stroke":"#000000","strokeWidth":2,"deviceId":1,"deviceName":"sw-01","deviceData":{"id":1,"name":"sw-01"},"labels":{"name":"sw-01"}}` +
		`]}`)

	// Images
	Img1 = floorplan.Image{
		Base: floorplan.Base{
			ID:   "1",
			Name: "hall-a.png",
		},
		File:     "/media/floorplan/hall-a.png",
		Filename: "hall-a.png",
	}
	Img2 = floorplan.Image{
		Base: floorplan.Base{
			ID:   "2",
			Name: "hall-b.png",
		},
		ExternalURL: "https://example.com/hall-b.png",
	}

	// Racks
	Rack1 = floorplan.Rack{
		ID:         1,
		Name:       "rack-01",
		Status:     &floorplan.Status{Value: "active", Label: "Active"},
		Role:       &floorplan.Role{ID: 1, Name: "compute"},
		Tenant:     &floorplan.Tenant{ID: 1, Name: "acme"},
		Width:      19,
		OuterWidth: pointer.Pointer(600.0),
		OuterDepth: pointer.Pointer(1000.0),
		UHeight:    42,
	}
	Rack2 = floorplan.Rack{
		ID:      2,
		Name:    "rack-02",
		Status:  &floorplan.Status{Value: "planned", Label: "Planned"},
		Width:   19,
		UHeight: 48,
	}

	// Devices
	Device1 = floorplan.Device{
		ID:         1,
		Name:       "sw-01",
		Status:     &floorplan.Status{Value: "active", Label: "Active"},
		DeviceRole: &floorplan.Role{ID: 4, Name: "leaf"},
		RackID:     pointer.Pointer(1),
	}
	Device2 = floorplan.Device{
		ID:     2,
		Status: &floorplan.Status{Value: "offline", Label: "Offline"},
	}

	// All Floorplans
	TestFloorplans = floorplan.Floorplans{
		Fp1, Fp2, Fp3,
	}

	// All Images
	TestImages = []floorplan.Image{
		Img1, Img2,
	}

	// All Racks
	TestRacks = floorplan.Racks{
		Rack1, Rack2,
	}

	// All Devices
	TestDevices = floorplan.Devices{
		Device1, Device2,
	}

	EmptyResult = map[string]interface{}{}
)

/*
InitMockDBData ...

Description:
This Function initializes the Data of a mocked rethinkDB.
If there need to be additional mocks added, they should be added before default mocks, which contain "r.MockAnything()"

Parameter:
- Mock 			// The Mock endpoint (Used for mocks)
*/
func InitMockDBData(mock *r.Mock) {

	// X.Get(i)
	mock.On(r.DB("mockdb").Table("floorplan").Get("1")).Return(Fp1, nil)
	mock.On(r.DB("mockdb").Table("floorplan").Get("2")).Return(Fp2, nil)
	mock.On(r.DB("mockdb").Table("floorplan").Get("3")).Return(Fp3, nil)
	mock.On(r.DB("mockdb").Table("floorplan").Get("404")).Return(nil, fmt.Errorf("Test Error"))
	mock.On(r.DB("mockdb").Table("floorplan").Get("999")).Return(nil, nil)
	mock.On(r.DB("mockdb").Table("image").Get("1")).Return(Img1, nil)
	mock.On(r.DB("mockdb").Table("image").Get("2")).Return(Img2, nil)
	mock.On(r.DB("mockdb").Table("image").Get("404")).Return(nil, fmt.Errorf("Test Error"))
	mock.On(r.DB("mockdb").Table("image").Get("999")).Return(nil, nil)
	mock.On(r.DB("mockdb").Table("rack").Get(1)).Return(Rack1, nil)
	mock.On(r.DB("mockdb").Table("rack").Get(2)).Return(Rack2, nil)
	mock.On(r.DB("mockdb").Table("rack").Get(404)).Return(nil, fmt.Errorf("Test Error"))
	mock.On(r.DB("mockdb").Table("rack").Get(999)).Return(nil, nil)
	mock.On(r.DB("mockdb").Table("device").Get(1)).Return(Device1, nil)
	mock.On(r.DB("mockdb").Table("device").Get(2)).Return(Device2, nil)
	mock.On(r.DB("mockdb").Table("device").Get(404)).Return(nil, fmt.Errorf("Test Error"))
	mock.On(r.DB("mockdb").Table("device").Get(999)).Return(nil, nil)

	mock.On(r.DB("mockdb").Table("floorplan").GetAllByIndex("site_id", "3")).Return(floorplan.Floorplans{Fp1, Fp2}, nil)

	// X.GetTable
	mock.On(r.DB("mockdb").Table("floorplan")).Return(TestFloorplans, nil)
	mock.On(r.DB("mockdb").Table("image")).Return(TestImages, nil)
	mock.On(r.DB("mockdb").Table("rack")).Return(TestRacks, nil)
	mock.On(r.DB("mockdb").Table("device")).Return(TestDevices, nil)

	// X.Delete
	mock.On(r.DB("mockdb").Table("floorplan").Get(r.MockAnything()).Delete()).Return(EmptyResult, nil)
	mock.On(r.DB("mockdb").Table("image").Get(r.MockAnything()).Delete()).Return(EmptyResult, nil)

	// X.Get.Replace
	mock.On(r.DB("mockdb").Table("floorplan").Get(r.MockAnything()).Replace(r.MockAnything())).Return(EmptyResult, nil)

	// X.insert
	mock.On(r.DB("mockdb").Table("floorplan").Insert(r.MockAnything())).Return(EmptyResult, nil)
	mock.On(r.DB("mockdb").Table("image").Insert(r.MockAnything())).Return(EmptyResult, nil)

	mock.On(r.DB("mockdb").Table("rack").Insert(r.MockAnything(), r.InsertOpts{
		Conflict: "replace",
	})).Return(EmptyResult, nil)
	mock.On(r.DB("mockdb").Table("device").Insert(r.MockAnything(), r.InsertOpts{
		Conflict: "replace",
	})).Return(EmptyResult, nil)
}
