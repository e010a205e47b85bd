// Package media uploads question images and videos to an asset host.
package media

import (
	"context"
	"io"
	"math"
)

// File is one upload.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProgressFunc receives the rounded percentage of bytes sent.
type ProgressFunc func(percent int)

// Uploader stores a file and returns the public URL to reference it by.
type Uploader interface {
	Upload(ctx context.Context, f File, progress ProgressFunc) (string, error)
}

// progressReader reports read progress against a known size. Unknown sizes report nothing
// until the final 100.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, last: -1, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.fn != nil && p.total > 0 {
		pct := int(math.Round(100 * float64(p.read) / float64(p.total)))
		if pct > 100 {
			pct = 100
		}
		if pct != p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}

func (p *progressReader) done() {
	if p.fn != nil && p.last != 100 {
		p.last = 100
		p.fn(100)
	}
}
