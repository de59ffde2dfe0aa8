// Package breakpoint resolves named responsive breakpoints into media
// conditions.
//
// # Registries
//
// Standard registry holds viewport widths, first entry must be 0 (the zero
// breakpoint, mobile first base). HiDPI registry holds pixel density ratios.
// Both are validated eagerly and immutable afterwards.
//
// # References
//
//   - "medium" or "medium up": (min-width: 40em)
//   - "medium down": (max-width: 63.99875em), just under the next breakpoint
//   - "medium only": both limits
//   - "640px down": literal limit
//   - "landscape", "portrait": orientation
//   - "retina": (-webkit-min-device-pixel-ratio: 2), (min-resolution: 192dpi)
//
// # Usage
//
//	std, err := breakpoint.NewRegistry([]breakpoint.Breakpoint{
//	    {Name: "small", Threshold: breakpoint.Px(0)},
//	    {Name: "medium", Threshold: breakpoint.Px(640)},
//	})
//	r, err := breakpoint.NewResolver(std, nil, breakpoint.WithLogger(log))
//	query, _ := r.Media(breakpoint.Named("medium").Down())
//
//	scope := breakpoint.NewScope()
//	r.Each(scope, breakpoint.EachOptions{}, func(b breakpoint.Block) error {
//	    // scope.Current() == b.Name here
//	    return nil
//	})
package breakpoint
