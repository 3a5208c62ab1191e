/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Snapping of a moving card rect against its neighbours. Pure and deterministic
// so drag previews and the committed position agree.

// SnapOptions controls which features snap and how close they must be.
type SnapOptions struct {
	// Threshold is the maximum distance in canvas units at which snapping occurs.
	Threshold float32
	Edges     bool
	Centers   bool
}

// Axis of a guide line.
type Axis uint8

const (
	Vertical   Axis = iota // constant X
	Horizontal             // constant Y
)

// Guide is an alignment line produced by a snap.
type Guide struct {
	Axis     Axis
	Position float32
	Center   bool
}

type snapCandidate struct {
	delta float32
	guide Guide
	found bool
}

func (c *snapCandidate) consider(from, to float32, threshold float32, center bool, axis Axis) {
	d := to - from
	if abs32(d) > threshold {
		return
	}
	if c.found && abs32(d) >= abs32(c.delta) {
		return
	}
	*c = snapCandidate{delta: d, guide: Guide{Axis: axis, Position: FloatRound(to, 3), Center: center}, found: true}
}

// Snap moves r onto the nearest edge or center of others on each axis
// independently. Axes without a candidate within the threshold are untouched.
func Snap(r Rect, others []Rect, opts SnapOptions) (Rect, []Guide) {
	if opts.Threshold <= 0 || (!opts.Edges && !opts.Centers) {
		return r, nil
	}
	var bx, by snapCandidate
	for _, o := range others {
		if opts.Edges {
			for _, mx := range [2]float32{r.X, r.X + r.W} {
				bx.consider(mx, o.X, opts.Threshold, false, Vertical)
				bx.consider(mx, o.X+o.W, opts.Threshold, false, Vertical)
			}
			for _, my := range [2]float32{r.Y, r.Y + r.H} {
				by.consider(my, o.Y, opts.Threshold, false, Horizontal)
				by.consider(my, o.Y+o.H, opts.Threshold, false, Horizontal)
			}
		}
		if opts.Centers {
			rc, oc := r.Center(), o.Center()
			bx.consider(rc.X, oc.X, opts.Threshold, true, Vertical)
			by.consider(rc.Y, oc.Y, opts.Threshold, true, Horizontal)
		}
	}
	var guides []Guide
	if bx.found {
		r.X = FloatRound(r.X+bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.found {
		r.Y = FloatRound(r.Y+by.delta, 3)
		guides = append(guides, by.guide)
	}
	return r, guides
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
