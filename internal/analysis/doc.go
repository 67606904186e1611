// Package analysis characterises recorded gaits.
//
//   - [CycleFrequency]: cycles per second from the net rotation of a leg
//   - [DominantFrequency]: spectral peak of a leg's angle
//   - [StanceFraction]: share of samples spent in the stance sector
//   - [PhaseLag]: mean circular offset between two legs
//   - [PredictedCycle]: stance and swing durations implied by the parameters
//
// Angles are expected as logged by the control loop, wrapped into [0, 2π).
package analysis
