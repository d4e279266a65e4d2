package data

import "fmt"

// RoadWidth decides which connectors may attach to a segment.
type RoadWidth int

const (
	WidthSmall RoadWidth = iota
	WidthMedium
	WidthLarge

	widthCount
)

var widthNames = [widthCount]string{"small", "medium", "large"}

// RoadWidths lists every width in order.
func RoadWidths() []RoadWidth {
	return []RoadWidth{WidthSmall, WidthMedium, WidthLarge}
}

func (w RoadWidth) Valid() bool { return w >= 0 && w < widthCount }

func (w RoadWidth) String() string {
	if !w.Valid() {
		return fmt.Sprintf("RoadWidth(%d)", int(w))
	}
	return widthNames[w]
}

func (w RoadWidth) MarshalText() ([]byte, error) {
	if !w.Valid() {
		return nil, fmt.Errorf("invalid road width %d", int(w))
	}
	return []byte(w.String()), nil
}

func (w *RoadWidth) UnmarshalText(b []byte) error {
	v, err := ParseRoadWidth(string(b))
	if err != nil {
		return err
	}
	*w = v
	return nil
}

func ParseRoadWidth(s string) (RoadWidth, error) {
	for i, name := range widthNames {
		if name == s {
			return RoadWidth(i), nil
		}
	}
	return 0, fmt.Errorf("unknown road width %q", s)
}

// ConnectorType identifies a physical connector piece.
type ConnectorType int

const (
	ConnectorEntry ConnectorType = iota
	ConnectorStraightSmall
	ConnectorStraightMedium
	ConnectorStraightLarge
	ConnectorSmallToMedium
	ConnectorMediumToSmall
	ConnectorMediumToLarge
	ConnectorLargeToMedium
	ConnectorRotatingCylinder
	ConnectorSplit
	ConnectorTightrope

	connectorTypeCount
)

var connectorNames = [connectorTypeCount]string{
	"entry",
	"straight_small",
	"straight_medium",
	"straight_large",
	"small_to_medium",
	"medium_to_small",
	"medium_to_large",
	"large_to_medium",
	"rotating_cylinder",
	"split",
	"tightrope",
}

func (t ConnectorType) Valid() bool { return t >= 0 && t < connectorTypeCount }

func (t ConnectorType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ConnectorType(%d)", int(t))
	}
	return connectorNames[t]
}

func (t ConnectorType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid connector type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ConnectorType) UnmarshalText(b []byte) error {
	v, err := ParseConnectorType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func ParseConnectorType(s string) (ConnectorType, error) {
	for i, name := range connectorNames {
		if name == s {
			return ConnectorType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown connector type %q", s)
}
