package stroke

import (
	"image"

	"github.com/gogpu/pixpaint"
)

// openStaging mirrors the buffer into a staging texture when an
// accelerator is available.
func (r *Rasterizer) openStaging() {
	a := r.accel
	if !r.accelSet {
		a = pixpaint.CurrentAccelerator()
	}
	if a == nil {
		return
	}
	st, err := a.NewStagingTexture(r.buf.Width(), r.buf.Height(), r.buf.ColorSpace())
	if err != nil {
		r.logger.Warn("stroke: gpu staging unavailable, using CPU", "accelerator", a.Name(), "err", err)
		return
	}
	if err := st.UploadFromCPU(r.buf); err != nil {
		st.Close()
		r.logger.Warn("stroke: gpu upload failed, using CPU", "accelerator", a.Name(), "err", err)
		return
	}
	r.staging = st
}

// resyncStaging replaces the staging contents with the settled CPU buffer.
func (r *Rasterizer) resyncStaging() {
	if r.staging == nil {
		return
	}
	r.settle()
	r.preview = image.Rectangle{}
	if err := r.staging.UploadFromCPU(r.buf); err != nil {
		r.dropStaging(err)
	}
}

// dropStaging abandons GPU preview for the rest of the stroke.
func (r *Rasterizer) dropStaging(err error) {
	r.logger.Warn("stroke: gpu compositing failed, falling back to CPU", "err", err)
	r.closeStaging()
	r.settle()
}

func (r *Rasterizer) closeStaging() {
	if r.staging != nil {
		r.staging.Close()
		r.staging = nil
	}
}

// Staging returns the live staging texture, or nil when the stroke runs on
// the CPU alone.
func (r *Rasterizer) Staging() pixpaint.StagingTexture { return r.staging }
