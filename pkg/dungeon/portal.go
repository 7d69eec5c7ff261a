package dungeon

import "github.com/dungenlab/dungen/pkg/geom"

// Portal is a directed, positioned link from one map to another.
//
// A portal is not inherently bidirectional: a valid graph may contain a
// portal A→B with no matching B→A edge. The ReciprocatePortals generator
// synthesizes the missing return edges. Until then TargetPos and
// TargetFacing describe where an entity re-entering through this portal
// arrives on the target map, and default to the zero values.
type Portal struct {
	// LocalPos is the tile the portal occupies on the owning map.
	LocalPos geom.Point
	// Facing is the direction the portal opens toward on the owning map.
	Facing geom.Direction
	// Target identifies the map the portal leads to.
	Target Handle
	// TargetPos is the arrival tile on the target map.
	TargetPos geom.Point
	// TargetFacing is the arrival facing on the target map.
	TargetFacing geom.Direction
}

// SubMap embeds a target map at an offset within the owner's coordinate
// space. The embedded map's own content is not copied or altered; a SubMap
// is a positioned reference, used to materialize a flattened view of a
// portal-linked subgraph without destroying the original graph.
type SubMap struct {
	Offset geom.Point
	Target Handle
}
