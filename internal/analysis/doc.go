// Package analysis inspects recorded scene runs.
//
//   - [PhasePortrait]: one state column against another
//   - [Crossings]: the states where a column crosses a threshold upwards
//   - [Apexes]: the top of every bounce in a height series
//   - [Restitution]: the bounce ratio implied by successive apexes
//
// All functions work on [sim.State] samples as stored by a run, so they
// apply equally to a fresh result and to one loaded from disk:
//
//	_, result, _ := st.LoadResult(runID)
//	ys := analysis.Column(result.States, sim.StateWidth*track+1)
//	e, ok := analysis.Restitution(analysis.Apexes(ys), slices.Min(ys))
package analysis
