// Package colormix blends two named colors into a normalized RGBA value.
//
// A blend is described by a color spec, a "!"-delimited string:
//
//	red!30!blue      30% red, 70% blue, opaque
//	red!30!blue!50   the same mix at 50% alpha
//
// The proportion is the integer percentage of the first color. The optional
// fourth field is an integer alpha percentage. Neither is clamped: values
// outside 0-100 extrapolate rather than fail.
//
// # Basic Usage
//
//	c, err := colormix.Blend("red!50!blue", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(c) // [0.5 0 0.5 1]
//
// Passing true as the second argument applies the complementary transform,
// which reflects every RGB channel about the midpoint of the smallest and
// largest channel. Alpha is never affected.
//
// # Color Names
//
// Names are resolved by a [Resolver]. The package-level functions use the
// process-wide palette, which understands CSS/X11 names, hex and rgb()/hsl()
// notation, single-letter shorthands, Tableau colors, "C0".."C9" cycle
// references and grey levels such as "0.75". Use [New] with [WithResolver]
// to supply a different lookup.
//
// # Errors
//
// Failures are reported as [*SpecError] values naming the offending field.
// They unwrap to [ErrMalformedSpec], [ErrInvalidProportion], [ErrInvalidAlpha]
// or the resolver's own error, so errors.Is works across the chain.
package colormix
