package eventconf

import "autoprotocol/internal/blocktext"

// Point block markers and keys.
const (
	PointStart = "%POINT_START%"
	PointEnd   = "%POINT_END%"

	KeyPointID = "POINT_ID"
)

// Point identifies the checkpoint this device records at.
type Point struct {
	ID int
}

var pointSchema = schema[Point]{
	record: "point configuration",
	start:  PointStart,
	end:    PointEnd,
	fields: []field[Point]{
		intField(KeyPointID, func(p *Point) *int { return &p.ID }),
	},
}

// DefaultPoint returns point zero.
func DefaultPoint() Point {
	return Point{}
}

// Set assigns one field by key.
func (p *Point) Set(key, value string) error {
	return pointSchema.set(p, key, value)
}

// Pairs returns the fields in their canonical order.
func (p Point) Pairs() []blocktext.Pair {
	return pointSchema.pairs(p)
}

// EncodePoint renders p as a marker delimited block.
func EncodePoint(p Point) string {
	return pointSchema.encode(p)
}

// DecodePoint reads the point block from text.
func DecodePoint(text string) (Point, error) {
	return pointSchema.decode(text, DefaultPoint())
}
