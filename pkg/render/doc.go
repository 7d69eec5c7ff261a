// Package render turns generated dungeons into human-readable outputs.
//
// # Overview
//
// Three output surfaces are provided:
//
//   - ASCII art of a single map, or of a whole dungeon flattened through
//     its sub-map embeds ([ASCII], [ASCIIFlat])
//   - Styled terminal output with per-tile coloring ([Styled])
//   - Graphviz node-link diagrams of the portal graph ([ToDOT],
//     [RenderSVG], [RenderPNG])
//
// JSON serialization of a dungeon lives here too ([MarshalDungeon],
// [ReadDungeon]) so generated output can be stored, diffed, or served
// over an API and re-imported with round-trip fidelity.
package render
