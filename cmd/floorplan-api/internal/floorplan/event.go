package floorplan

import "time"

// EventType is the type for event types.
type EventType string

// NSQTopic is a topic floorplan events are published to.
type NSQTopic string

// Some enums.
const (
	EventSaved      EventType = "saved"
	EventRescaled   EventType = "rescaled"
	EventDimensions EventType = "dimensions"
	EventBackground EventType = "background"
	EventCreated    EventType = "created"
	EventDeleted    EventType = "deleted"

	TopicFloorplan NSQTopic = "floorplan"
)

// Topics is a list of topics of which the floorplan-api is a producer.
// floorplan-api will make sure these topics exist when it is started.
var Topics = []NSQTopic{
	TopicFloorplan,
}

// FloorplanEvent is published whenever a floorplan was written.
type FloorplanEvent struct {
	ID          string             `json:"id"`
	Type        EventType          `json:"type"`
	FloorplanID string             `json:"floorplan_id"`
	Objects     map[ObjectType]int `json:"objects"`
	ScaleFactor float64            `json:"scale_factor"`
	Time        time.Time          `json:"time"`
}
