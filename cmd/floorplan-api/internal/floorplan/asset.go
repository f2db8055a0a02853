package floorplan

// Status is the status of a rack or device as reported by the asset inventory.
type Status struct {
	Value string `json:"value" rethinkdb:"value"`
	Label string `json:"label" rethinkdb:"label"`
}

// Role is a rack or device role.
type Role struct {
	ID      int    `json:"id" rethinkdb:"id"`
	Name    string `json:"name" rethinkdb:"name"`
	Slug    string `json:"slug,omitempty" rethinkdb:"slug"`
	Color   string `json:"color,omitempty" rethinkdb:"color"`
	Display string `json:"display,omitempty" rethinkdb:"display"`
}

// Tenant owns racks and devices.
type Tenant struct {
	ID      int    `json:"id" rethinkdb:"id"`
	Name    string `json:"name" rethinkdb:"name"`
	Slug    string `json:"slug,omitempty" rethinkdb:"slug"`
	Display string `json:"display,omitempty" rethinkdb:"display"`
}

// Manufacturer of a device type.
type Manufacturer struct {
	ID   int    `json:"id" rethinkdb:"id"`
	Name string `json:"name" rethinkdb:"name"`
	Slug string `json:"slug,omitempty" rethinkdb:"slug"`
}

// DeviceType describes the model of a device.
type DeviceType struct {
	ID           int          `json:"id" rethinkdb:"id"`
	Model        string       `json:"model" rethinkdb:"model"`
	Slug         string       `json:"slug,omitempty" rethinkdb:"slug"`
	Display      string       `json:"display,omitempty" rethinkdb:"display"`
	Manufacturer Manufacturer `json:"manufacturer" rethinkdb:"manufacturer"`
	UHeight      float64      `json:"u_height" rethinkdb:"u_height"`
	IsFullDepth  bool         `json:"is_full_depth" rethinkdb:"is_full_depth"`
}

// Rack is a denormalized copy of a rack record of the asset inventory.
// Dimensions are given in millimeters.
type Rack struct {
	ID         int      `json:"id" rethinkdb:"id"`
	Name       string   `json:"name" rethinkdb:"name"`
	URL        string   `json:"url,omitempty" rethinkdb:"url"`
	Display    string   `json:"display,omitempty" rethinkdb:"display"`
	Status     *Status  `json:"status" rethinkdb:"status"`
	Role       *Role    `json:"role" rethinkdb:"role"`
	Tenant     *Tenant  `json:"tenant" rethinkdb:"tenant"`
	Width      float64  `json:"width" rethinkdb:"width"`
	OuterWidth *float64 `json:"outer_width" rethinkdb:"outer_width"`
	OuterDepth *float64 `json:"outer_depth" rethinkdb:"outer_depth"`
	UHeight    float64  `json:"u_height" rethinkdb:"u_height"`
}

// Device is a denormalized copy of a device record of the asset inventory.
type Device struct {
	ID         int         `json:"id" rethinkdb:"id"`
	Name       string      `json:"name" rethinkdb:"name"`
	URL        string      `json:"url,omitempty" rethinkdb:"url"`
	Display    string      `json:"display,omitempty" rethinkdb:"display"`
	Status     *Status     `json:"status" rethinkdb:"status"`
	DeviceType *DeviceType `json:"device_type" rethinkdb:"device_type"`
	DeviceRole *Role       `json:"device_role" rethinkdb:"device_role"`
	Tenant     *Tenant     `json:"tenant" rethinkdb:"tenant"`
	RackID     *int        `json:"rack_id,omitempty" rethinkdb:"rack_id"`
	Position   *float64    `json:"position,omitempty" rethinkdb:"position"`
	Face       *string     `json:"face,omitempty" rethinkdb:"face"`
}

// Racks is a list of racks.
type Racks []Rack

// Devices is a list of devices.
type Devices []Device

// Clone returns a copy of the rack which shares no memory with the original.
func (r Rack) Clone() Rack {
	r.Status = clonePointer(r.Status)
	r.Role = clonePointer(r.Role)
	r.Tenant = clonePointer(r.Tenant)
	r.OuterWidth = clonePointer(r.OuterWidth)
	r.OuterDepth = clonePointer(r.OuterDepth)
	return r
}

// Clone returns a copy of the device which shares no memory with the original.
func (d Device) Clone() Device {
	d.Status = clonePointer(d.Status)
	d.DeviceType = clonePointer(d.DeviceType)
	d.DeviceRole = clonePointer(d.DeviceRole)
	d.Tenant = clonePointer(d.Tenant)
	d.RackID = clonePointer(d.RackID)
	d.Position = clonePointer(d.Position)
	d.Face = clonePointer(d.Face)
	return d
}

func clonePointer[T any](p *T) *T {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func (s *Status) value() string {
	if s == nil {
		return ""
	}
	return s.Value
}

func (s *Status) label() *string {
	if s == nil {
		return nil
	}
	l := s.Label
	return &l
}

func (r *Role) name() *string {
	if r == nil {
		return nil
	}
	n := r.Name
	return &n
}

func (t *Tenant) name() *string {
	if t == nil {
		return nil
	}
	n := t.Name
	return &n
}
