/*
Package resize scales encoded photos down to fit a display area.

A [Resizer] takes the encoded bytes of one image and a bounding box and
returns a [Result]. If the image already fits, the source bytes come back
untouched together with the decoder's format name (the fast path). Otherwise
the image is scaled with its aspect ratio preserved so that it fills the box
along one axis, and the result is raw interleaved RGBA8 pixels with Format
set to [FormatRGBA].

Target dimensions are

	scale = min(maxWidth/width, maxHeight/height)
	dst   = max(1, round(dim * scale))

Two backends implement the contract:

  - [Native] decodes with imaging and the golang.org/x/image decoders and
    resamples with a golang.org/x/image/draw kernel (Lanczos3 by default).
  - [Vips] delegates decoding and resampling to libvips through govips.

Both resample in premultiplied alpha so transparent regions do not bleed a
dark fringe into their neighbours. Both are safe for concurrent use.

Failures are reported as *Error values whose Kind distinguishes undecodable
input ([ErrDecode]) from failures of the scaling step itself ([ErrResize]).
*/
package resize
