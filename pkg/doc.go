// Package pkg provides the libraries behind tensionlab, an interactive
// two-cable statics diagram.
//
// # Overview
//
// A diagram has a pivot P0, two anchors P1 and P2 and a load point P3 hanging
// from both anchors by cables. An external force acts on the load. The
// libraries solve the equilibrium, place labels, persist the diagram and
// draw it. The pkg directory is organized into four areas:
//
//  1. Domain logic: [geom], [statics], [labels]
//  2. State and persistence: [state], [session], [storage]
//  3. Output: [render], [api]
//  4. Support: [config], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The data flow for one interaction:
//
//	URL query / storage blob / defaults
//	         ↓
//	    [state] package (Resolve: pick the starting snapshot)
//	         ↓
//	    [session] package (apply drags and control changes, save on change)
//	         ↓
//	    [state] package (Evaluate: [statics] solve + [labels] placement)
//	         ↓
//	    [render] package (SVG, PNG, DOT) or [api] JSON
//
// # Quick Start
//
// Solve and draw the default diagram:
//
//	s := state.Defaults()
//	v := state.Evaluate(s, geom.Frame{Width: 500, Height: 400})
//	for _, l := range v.Lines() {
//	    fmt.Println(l.Name, l.Value)
//	}
//	svg := render.SVG(render.Build(v))
//
// Persist a session in Redis:
//
//	b, _ := storage.NewRedisBackend(ctx, storage.RedisOptions{Addr: "localhost:6379"})
//	store, _ := session.NewBackendStore(b, nil, "client-id", session.DefaultTTL)
//	sess := session.Open(ctx, session.Options{ID: "client-id", Store: store})
//	sess.Control(ctx, state.Control{Kind: state.ControlMagnitude, Raw: "75"})
//
// # Coordinate Frames
//
// Everything in [state], [statics] and [labels] is in the world frame: origin
// at the canvas center, Y up, directions in degrees counter-clockwise from
// +X. [geom.Frame] converts to and from the canvas frame (origin top-left,
// Y down) used by [render] and by pointer input.
//
// # Testing
//
// Run tests:
//
//	go test ./...                                   # All tests
//	go test -short ./...                            # Skip Graphviz rendering
//	TENSIONLAB_REDIS_ADDR=localhost:6379 go test ./pkg/storage/
//	TENSIONLAB_MONGO_URI=mongodb://localhost:27017 go test ./pkg/storage/
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/geom
// [statics]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/statics
// [labels]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/labels
// [state]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/state
// [session]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/session
// [storage]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/storage
// [render]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/render
// [api]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/buildinfo
// [geom.Frame]: https://pkg.go.dev/github.com/matzehuels/tensionlab/pkg/geom#Frame
package pkg
