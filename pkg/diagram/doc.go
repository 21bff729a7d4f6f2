// Package diagram turns OCIF documents into laid-out node/connector diagrams.
//
// # Overview
//
// Layout happens in three steps, each usable on its own:
//
//  1. [Build] normalizes document nodes into positioned shapes with resolved
//     text and style, and collects relations that still reference node ids.
//  2. [ResolveRelations] looks up both endpoints of every relation and
//     computes its connector path. Relations with a missing endpoint are
//     dropped and reported as warnings.
//  3. [ComputeBounds] sizes the canvas around all nodes.
//
// [Layout] runs all three:
//
//	d := diagram.Layout(doc, diagram.DefaultOptions())
//	for _, w := range d.Warnings {
//	    logger.Warn(w)
//	}
//
// # Placement
//
// Nodes without an explicit position are placed on a three-column grid:
//
//	x = padding + (i mod 3) * (width + spacing)
//	y = padding + (i / 3)   * (height + spacing)
//
// where i is the node's index in the document. Padding and spacing default
// to 100.
//
// # Connectors
//
// [ConnectorStraight] clips the center-to-center segment at both shape
// boundaries: rectangles are intersected against the nearest side, ovals
// against their inscribed ellipse. [ConnectorCurved] draws a cubic Bézier
// between the centers with horizontally offset control points.
//
// All functions are pure and safe for concurrent use.
package diagram
