// Package pkg provides the core libraries for Verdant garden planning.
//
// # Overview
//
// Verdant searches for plant placements that maximize long-term growth in a
// bounded garden where plants of different species exchange nutrients. The
// pkg directory is organized into five main areas:
//
//  1. [garden] / [sim] - Domain model and the growth engine
//  2. [search] - Placement search (candidates, scoring, controller, governor)
//  3. [cache] / [store] - Simulation trace caching and result persistence
//  4. [render] / [api] - Visualization and the HTTP surface
//  5. [layout] / [nursery] - Serialized layouts and variety catalogs
//
// # Architecture
//
// The typical data flow through Verdant:
//
//	Variety Catalog (nursery)
//	         ↓
//	Placement Search (search) ←→ Growth Engine (sim, cached)
//	         ↓
//	Layout (layout) → Render (render) / Serve (api) / Persist (store)
//
// The search package owns the authoritative garden and drives the phase
// machine; everything downstream consumes the immutable layout it emits.
package pkg
