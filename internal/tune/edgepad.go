package tune

import "image"

// EdgePad returns a copy of img in which fully transparent pixels take
// the average colour of their filled 4-neighbours, growing outward from
// the opaque areas until nothing reachable is left. Padded pixels become
// opaque. The source is not modified.
func EdgePad(img *image.NRGBA) *image.NRGBA {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(dst.Pix, img.Pix)

	filled := make([]bool, w*h)
	empty := 0
	for i := range filled {
		filled[i] = dst.Pix[i*4+3] > 0
		if !filled[i] {
			empty++
		}
	}
	if empty == 0 || empty == w*h {
		return dst
	}

	dx := [4]int{0, -1, 1, 0}
	dy := [4]int{-1, 0, 0, 1}

	type fill struct {
		idx     int
		r, g, b uint8
	}
	var batch []fill

	// Every round fills at least one pixel, so w*h rounds is a hard cap.
	for round := 0; round < w*h && empty > 0; round++ {
		batch = batch[:0]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				if filled[idx] {
					continue
				}
				var sr, sg, sb, n int
				for d := 0; d < 4; d++ {
					nx, ny := x+dx[d], y+dy[d]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					ni := ny*w + nx
					if !filled[ni] {
						continue
					}
					sr += int(dst.Pix[ni*4])
					sg += int(dst.Pix[ni*4+1])
					sb += int(dst.Pix[ni*4+2])
					n++
				}
				if n > 0 {
					batch = append(batch, fill{idx, uint8(sr / n), uint8(sg / n), uint8(sb / n)})
				}
			}
		}
		if len(batch) == 0 {
			break
		}
		for _, f := range batch {
			i := f.idx * 4
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = f.r, f.g, f.b, 255
			filled[f.idx] = true
		}
		empty -= len(batch)
	}
	return dst
}
