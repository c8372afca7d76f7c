// Package tableau is the spatial card-canvas engine behind a visual
// deck-building tool, built on [Ebitengine].
//
// It lays a large card library out on an infinite zoomable grid, streams
// appropriately-sized card images as the viewport moves, and turns raw
// pointer input into selection, dragging, stacking, and box-select gestures.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	cache := tableau.NewTextureCache(&tableau.DirLoader{Root: "assets/cards"}, 0)
//	stage := tableau.NewStage(cache)
//	stage.SetCards(cards)
//	tableau.Run(stage, tableau.RunConfig{Title: "Deck Builder", Width: 1280, Height: 800})
//
// For full control, implement [ebiten.Game] yourself, call [Stage.Init] once
// the surface is ready, and drive [Stage.ProcessInput], [Stage.Update], and
// [Stage.Draw] each frame.
//
// # Layout
//
// [CalculateLayout] deterministically positions every card: one column per
// elemental threshold group, stacked type buckets sorted by cost inside each
// column, and a separate avatar block on the right. All positions are
// multiples of [GridUnit]; cards dropped on the same cell form a stacking
// bucket rendered with centered fan-out offsets.
//
// # Textures
//
// [TextureCache] owns every resident card image across three quality tiers
// ([LevelThumb], [LevelMedium], [LevelFull]) chosen by zoom. Loads are
// coalesced per key, capped by a global concurrency limit, and a failed slug
// is memoized and rendered as a placeholder without retrying.
//
// [Ebitengine]: https://ebitengine.org
package tableau
