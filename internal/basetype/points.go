package basetype

// GeomPoint is a planar (Euclidean) point, optionally with a Z coordinate.
// Per spec.md §1 the core treats points as opaque coordinate tuples plus an
// SRID integer: no projection, no WKT/geometry-library integration lives
// here, only the coordinate data the algebra needs.
type GeomPoint struct {
	X, Y, Z float64
	HasZ    bool
	SRID    int32
}

// GeogPoint is a point on the sphere (longitude/latitude in degrees),
// optionally with an elevation. Distance between two GeogPoints is a
// great-circle distance in meters (haversine), a deliberately simple
// stand-in for the external geometry library's geodesic routines.
type GeogPoint struct {
	Lon, Lat, Z float64
	HasZ        bool
	SRID        int32
}

// NPoint is a network-constrained point: a position along a route in a
// caller-supplied route network, expressed as a fraction of the route's
// length. Grounded on original_source mobilitydb/src/npoint/tnpoint_boxops.c.
type NPoint struct {
	RouteID int64
	Pos     float64 // in [0, 1]
}

// NSegment is a contiguous sub-range of a route.
type NSegment struct {
	RouteID            int64
	PosStart, PosEnd   float64 // PosStart <= PosEnd, both in [0, 1]
}

// CBuffer is a circular buffer base value: a disc described by its center
// and radius. Grounded on original_source mobilitydb/src/cbuffer/cbuffer.c.
type CBuffer struct {
	Center GeomPoint
	Radius float64
}

// RouteResolver maps a route id to a 2-D polyline geometry, used only to
// derive bounding boxes for npoint/nsegment values (spec.md §1 treats the
// geometry library itself as an external collaborator; this is the thin
// seam the core needs to stay agnostic of it). Implementations are
// supplied by the embedder.
type RouteResolver interface {
	// RouteBBox returns the 2-D bounding box (xmin, ymin, xmax, ymax) of
	// the sub-segment of route id covering [posStart, posEnd].
	RouteBBox(routeID int64, posStart, posEnd float64) (xmin, ymin, xmax, ymax float64, err error)
}
