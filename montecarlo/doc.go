// SPDX-License-Identifier: MIT

// Package montecarlo implements the integration protocol shared by the
// adaptive (vegas) and uniform (plain) integrators: sample batches, the
// numerically stable Accumulator, the inverse-variance Aggregate, and the
// Iteration Controller (Engine) with its state machine.
//
// 🚀 Protocol:
//
//	e, _ := vegas.New(dim, calls, vegas.DefaultOptions())
//	_ = e.Compile(f)                  // UNCOMPILED → COMPILED
//	_, _ = e.Run(ctx, 5)              // adapt the grid
//	_ = e.Freeze()                    // stop adapting
//	res, _ := e.Run(ctx, 5)           // unbiased estimate from the frozen grid
//	fmt.Println(res.Estimate, res.Error)
//
// ⚙️ One iteration:
//  1. The iteration's calls are split into steps of at most EventsLimit points.
//  2. Every step draws from its own stream rng.Derive(seed, iteration, step),
//     is mapped by the Kernel, evaluated and reduced to Moments + histogram.
//     Steps run on up to Workers goroutines.
//  3. Step results are merged in step order (Chan et al. pairwise update), so
//     the outcome does not depend on Workers.
//  4. Unless frozen, the Kernel adapts to the merged histogram.
//  5. The iteration result joins the Aggregate; a failed iteration leaves
//     every piece of state untouched.
//
// Concurrency:
//   - An Engine is owned by one goroutine. Run must not be called concurrently,
//     and state accessors must not be used while Run is in flight.
//   - Cancellation (ctx) is honoured only between iterations.
package montecarlo
