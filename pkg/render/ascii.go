package render

import (
	"strings"

	"github.com/dungenlab/dungen/pkg/dungeon"
	"github.com/dungenlab/dungen/pkg/geom"
)

// ASCII renders a single map as plain text, one row per line.
// Tiles use their canonical runes: '.' floor, '#' wall, '+' portal,
// and ' ' for void.
func ASCII(m *dungeon.Map) string {
	size := m.Size()
	var sb strings.Builder
	sb.Grow((size.Width + 1) * size.Height)
	for y := 0; y < size.Height; y++ {
		for x := 0; x < size.Width; x++ {
			sb.WriteRune(m.TileAt(geom.Pt(x, y)).Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ASCIIFlat renders a dungeon rooted at h as a single composite image,
// overlaying every sub-map embed at its recorded offset. Each reachable
// map is drawn once, so cyclic embed graphs terminate. Non-void tiles
// from later embeds overwrite earlier ones.
func ASCIIFlat(r *dungeon.Registry, h dungeon.Handle) string {
	tiles := map[geom.Point]dungeon.TileType{}
	visited := map[dungeon.Handle]bool{}
	flatten(r, h, geom.Pt(0, 0), tiles, visited)

	if len(tiles) == 0 {
		return ""
	}

	min, max := bounds(tiles)
	var sb strings.Builder
	for y := min.Y; y <= max.Y; y++ {
		for x := min.X; x <= max.X; x++ {
			sb.WriteRune(tiles[geom.Pt(x, y)].Rune())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func flatten(r *dungeon.Registry, h dungeon.Handle, at geom.Point, tiles map[geom.Point]dungeon.TileType, visited map[dungeon.Handle]bool) {
	if visited[h] {
		return
	}
	visited[h] = true

	var subs []dungeon.SubMap
	r.Read(h, func(m *dungeon.Map) {
		size := m.Size()
		for y := 0; y < size.Height; y++ {
			for x := 0; x < size.Width; x++ {
				if t := m.TileAt(geom.Pt(x, y)); t != dungeon.TileVoid {
					tiles[at.Add(geom.Pt(x, y))] = t
				}
			}
		}
		subs = m.SubMaps()
	})

	for _, s := range subs {
		flatten(r, s.Target, at.Add(s.Offset), tiles, visited)
	}
}

func bounds(tiles map[geom.Point]dungeon.TileType) (min, max geom.Point) {
	first := true
	for p := range tiles {
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}
