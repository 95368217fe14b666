// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"cmp"
	"slices"

	"github.com/gogpu/gg/scene"

	"github.com/gogpu/ggcompose/asset"
	"github.com/gogpu/ggcompose/fragment"
	"github.com/gogpu/ggcompose/internal/logging"
)

// Queue returns the prepared instances of rw in compositing order:
// ascending world Z, then extraction order. NaN depths sort first.
// The returned slice points into rw and is valid until the next Extract.
func Queue(rw *RenderWorld, dst []*ExtractedInstance) []*ExtractedInstance {
	dst = dst[:0]
	for i := range rw.Instances {
		if rw.Instances[i].Prepared {
			dst = append(dst, &rw.Instances[i])
		}
	}
	slices.SortStableFunc(dst, func(a, b *ExtractedInstance) int {
		return cmp.Compare(a.Z(), b.Z())
	})
	return dst
}

// Composite resets dst and replays every prepared fragment of rw into it,
// back to front, each under its own affine.
//
// queued counts prepared instances, appended those whose fragment resolved
// and missing those whose handle did not.
func Composite(rw *RenderWorld, fragments asset.Reader[*fragment.Fragment], dst *scene.Scene) (queued, appended, missing int) {
	q := Queue(rw, nil)
	return composite(q, fragments, dst)
}

func composite(q []*ExtractedInstance, fragments asset.Reader[*fragment.Fragment], dst *scene.Scene) (queued, appended, missing int) {
	dst.Reset()
	for _, in := range q {
		f, ok := fragments.Get(in.Fragment)
		if !ok || f == nil {
			missing++
			logging.Logger().Debug("pipeline: fragment not loaded",
				"entity", in.Entity.String(), "fragment", in.Fragment.String())
			continue
		}
		f.AppendTo(dst, in.Affine.Affine())
		appended++
	}
	return len(q), appended, missing
}
