package transform

import (
	"errors"
	"io"

	"git.gammaspectra.live/P2Pool/threefish/blockcipher"
)

var errClosed = errors.New("transform: stream closed")

const readBufferSize = 32 * 1024

// Writer pushes everything written to it through a CipherTransform into w.
type Writer struct {
	w   io.Writer
	t   *CipherTransform
	buf []byte
	err error
}

// NewWriter returns a Writer that owns t. Close must be called to emit the
// final block; it does not close w.
func NewWriter(w io.Writer, t *CipherTransform) *Writer {
	return &Writer{w: w, t: t}
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	out, err := w.t.Update(w.buf[:0], p)
	if err == nil {
		err = w.emit(out)
	}
	if err != nil {
		w.fail(err)
		return 0, err
	}
	return len(p), nil
}

func (w *Writer) emit(out []byte) error {
	w.buf = out
	defer blockcipher.Wipe(out)
	if len(out) == 0 {
		return nil
	}
	_, err := w.w.Write(out)
	return err
}

func (w *Writer) fail(err error) {
	w.err = err
	w.t.Dispose()
}

// Close finalizes the transform, writes the remaining output and disposes the transform.
func (w *Writer) Close() error {
	if w.err != nil {
		if w.err == errClosed {
			return nil
		}
		return w.err
	}
	out, err := w.t.Final(w.buf[:0])
	if err == nil {
		err = w.emit(out)
	}
	w.t.Dispose()
	if err != nil {
		w.err = err
		return err
	}
	w.err = errClosed
	return nil
}

// Reader returns the output of a CipherTransform fed from r.
type Reader struct {
	r       io.Reader
	t       *CipherTransform
	in      []byte
	out     []byte
	pending []byte
	err     error
}

// NewReader returns a Reader that owns t. The transform is finalized when r
// reaches io.EOF.
func NewReader(r io.Reader, t *CipherTransform) *Reader {
	return &Reader{r: r, t: t, in: make([]byte, readBufferSize)}
}

func (r *Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.fill()
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *Reader) fill() {
	blockcipher.Wipe(r.out)

	n, readErr := r.r.Read(r.in)
	out, err := r.t.Update(r.out[:0], r.in[:n])
	blockcipher.Wipe(r.in[:n])
	if err == nil && errors.Is(readErr, io.EOF) {
		out, err = r.t.Final(out)
		r.t.Dispose()
		readErr = io.EOF
	}
	if err != nil {
		blockcipher.Wipe(out)
		r.t.Dispose()
		r.err = err
		return
	}

	r.out, r.pending = out, out
	if readErr != nil {
		r.err = readErr
	}
}

// Close disposes the transform without finalizing it.
func (r *Reader) Close() error {
	r.t.Dispose()
	blockcipher.Wipe(r.out)
	r.pending = nil
	if r.err == nil {
		r.err = errClosed
	}
	return nil
}
